package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/interfaces/http/dto"
)

// DateTag validates YYYY-MM-DD calendar dates
const DateTag = "yyyymmdd"

var setupOnce sync.Once

// SetupValidator configures gin's validator: JSON field names in errors and
// the yyyymmdd tag. Safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation(DateTag, validateDate)
	})
}

func validateDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.Parse(marketplace.DateLayout, s)
	return err == nil
}

// ValidationResponse converts a binding error into a 400 response.
// Date format failures keep the domain's INVALID_DATE_RANGE code.
func ValidationResponse(err error, requestID string) dto.Response {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidInput, "Invalid request body", requestID)
	}

	details := make([]dto.ValidationDetail, 0, len(verrs))
	dateFailure := false
	for _, e := range verrs {
		if e.Tag() == DateTag {
			dateFailure = true
		}
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: validationMessage(e),
		})
	}

	resp := dto.NewValidationErrorResponse("Request validation failed", requestID, details)
	if dateFailure {
		resp.Error.Code = marketplace.ErrInvalidDateRange.Code
		resp.Error.Message = "Dates must use the YYYY-MM-DD format"
	}
	return resp
}

// HandleValidationError aborts the request with a validation response.
// A body cut off by BodyLimit is reported as REQUEST_TOO_LARGE instead.
func HandleValidationError(c *gin.Context, err error) {
	if isBodyTooLarge(err) {
		abortTooLarge(c)
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationResponse(err, GetRequestID(c)))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "url":
		return "Invalid URL format"
	case "alphanum":
		return "Must be alphanumeric"
	case DateTag:
		return "Must be a date in YYYY-MM-DD format"
	default:
		return "Invalid value"
	}
}
