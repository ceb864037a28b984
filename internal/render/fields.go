package render

// Field categories group keys in the template editor's field picker.
const (
	CategoryStudent    = "Student"
	CategoryClass      = "Class"
	CategoryAttendance = "Attendance"
	CategoryOther      = "Other"
)

// Field is one resolvable placeholder key offered to template authors.
type Field struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// FieldCatalog is the closed vocabulary of data-field keys. Every key
// listed here resolves; keys outside it echo back literally.
var FieldCatalog = []Field{
	{Key: "student.name", Label: "Student Name", Category: CategoryStudent},
	{Key: "student.first_name", Label: "First Name", Category: CategoryStudent},
	{Key: "student.last_name", Label: "Last Name", Category: CategoryStudent},
	{Key: "student.admission_no", Label: "Admission Number", Category: CategoryStudent},
	{Key: "student.gender", Label: "Gender", Category: CategoryStudent},
	{Key: "student.date_of_birth", Label: "Date of Birth", Category: CategoryStudent},
	{Key: "student.guardian", Label: "Guardian Name", Category: CategoryStudent},

	{Key: "class.name", Label: "Class Name", Category: CategoryClass},
	{Key: "class.teacher", Label: "Class Teacher", Category: CategoryClass},
	{Key: "class.size", Label: "Class Size", Category: CategoryClass},

	{Key: "attendance.present", Label: "Days Present", Category: CategoryAttendance},
	{Key: "attendance.absent", Label: "Days Absent", Category: CategoryAttendance},
	{Key: "attendance.late", Label: "Days Late", Category: CategoryAttendance},
	{Key: "attendance.excused", Label: "Days Excused", Category: CategoryAttendance},
	{Key: "attendance.school_days", Label: "School Days", Category: CategoryAttendance},
	{Key: "attendance.percent", Label: "Attendance Rate", Category: CategoryAttendance},

	{Key: "term", Label: "Term", Category: CategoryOther},
	{Key: "academic_year", Label: "Academic Year", Category: CategoryOther},
	{Key: "next_term_date", Label: "Next Term Begins", Category: CategoryOther},
	{Key: "position", Label: "Position in Class", Category: CategoryOther},
	{Key: "comment.teacher", Label: "Teacher's Comment", Category: CategoryOther},
	{Key: "comment.principal", Label: "Principal's Comment", Category: CategoryOther},
}

// FieldLabel returns the picker label for a key, or the key itself
// when it is not in the catalog.
func FieldLabel(key string) string {
	for _, f := range FieldCatalog {
		if f.Key == key {
			return f.Label
		}
	}
	return key
}
