package web

import (
	"errors"
	"strings"

	"go-jobmatch-web/internal/delivery/http/middleware"
	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/pkg/apperror"
	"go-jobmatch-web/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindError turns a binding failure into a validation error with per-field messages.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return &middleware.ValidationError{
			AppError: apperror.Validation(strings.Join(validation.FormatValidationErrors(err), ". ")),
			Fields:   validation.FieldErrors(err),
		}
	}
	return apperror.BadRequest("Invalid request data")
}

func paramID(c *gin.Context, name string) (domain.ID, error) {
	id := domain.ID(strings.TrimSpace(c.Param(name)))
	if id.IsZero() {
		return "", apperror.BadRequest("Invalid " + name)
	}
	return id, nil
}

func requestID(c *gin.Context) string {
	return c.GetString(string(domain.KeyRequestID))
}
