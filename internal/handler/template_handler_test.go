package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtech-innovations/report-card-api/internal/middleware"
	"github.com/jtech-innovations/report-card-api/internal/models"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
)

type templateServiceMock struct {
	tpl     *models.ReportTemplate
	getErr  error
	saveErr error
	saved   *models.ReportTemplate
	savedBy string
}

func (m *templateServiceMock) Get(ctx context.Context, schoolCode string) (*models.ReportTemplate, error) {
	return m.tpl, m.getErr
}

func (m *templateServiceMock) Save(ctx context.Context, tpl *models.ReportTemplate, updatedBy string) (*models.ReportTemplate, error) {
	m.saved = tpl
	m.savedBy = updatedBy
	return tpl, m.saveErr
}

func TestTemplateHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &templateServiceMock{
		tpl: &models.ReportTemplate{SchoolCode: "MHPS", SchoolName: "Morning Star Preparatory", PaperSize: models.PaperLetter},
	}
	handler := NewTemplateHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/report-templates/MHPS", nil)
	c.Params = gin.Params{{Key: "school_code", Value: "MHPS"}}

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Morning Star Preparatory")
}

func TestTemplateHandlerGetUnknownSchool(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTemplateHandler(&templateServiceMock{
		getErr: appErrors.Clone(appErrors.ErrNotFound, "school NOPE is not registered"),
	})

	c, w := newGinContext(http.MethodGet, "/report-templates/NOPE", nil)
	c.Params = gin.Params{{Key: "school_code", Value: "NOPE"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTemplateHandlerSaveUsesRouteSchoolCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &templateServiceMock{}
	handler := NewTemplateHandler(mockSvc)

	payload, _ := json.Marshal(models.ReportTemplate{
		SchoolCode: "SPOOFED",
		SchoolName: "Morning Star Preparatory",
		PaperSize:  models.PaperLetter,
		DesignMode: models.DesignModeBlocks,
	})
	c, w := newGinContext(http.MethodPut, "/report-templates/MHPS", payload)
	c.Params = gin.Params{{Key: "school_code", Value: "MHPS"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "super-1", Role: models.RoleSuperuser})

	handler.Save(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.saved)
	assert.Equal(t, "MHPS", mockSvc.saved.SchoolCode, "the route school code wins over the body")
	assert.Equal(t, "super-1", mockSvc.savedBy)
}

func TestTemplateHandlerSaveRejectsInvalid(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTemplateHandler(&templateServiceMock{
		saveErr: appErrors.Clone(appErrors.ErrInvalidWeights, "assessment weights sum to 90, expected 100"),
	})

	payload, _ := json.Marshal(models.ReportTemplate{PaperSize: models.PaperLetter, DesignMode: models.DesignModeBlocks})
	c, w := newGinContext(http.MethodPut, "/report-templates/MHPS", payload)
	c.Params = gin.Params{{Key: "school_code", Value: "MHPS"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "super-1", Role: models.RoleSuperuser})

	handler.Save(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_WEIGHTS")
}

func TestTemplateHandlerFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTemplateHandler(&templateServiceMock{})

	c, w := newGinContext(http.MethodGet, "/report-templates/fields", nil)

	handler.Fields(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "student.name")
	assert.Contains(t, w.Body.String(), "attendance.percent")
}
