package models

// Pagination describes list paging metadata returned in response envelopes.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPagination derives page counts from totals.
func NewPagination(page, pageSize, totalItems int) *Pagination {
	if pageSize <= 0 {
		pageSize = 20
	}
	totalPages := totalItems / pageSize
	if totalItems%pageSize != 0 {
		totalPages++
	}
	return &Pagination{Page: page, PageSize: pageSize, TotalItems: totalItems, TotalPages: totalPages}
}
