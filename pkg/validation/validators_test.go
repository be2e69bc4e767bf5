package validation_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobmatch-web/pkg/validation"
)

type applicationForm struct {
	ApplicantName  string `validate:"required,valid_name"`
	ApplicantPhone string `validate:"required,valid_phone"`
	ApplicantEmail string `validate:"required,email"`
	EducationLevel string `validate:"required,education_level"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	validation.RegisterValidators(v)
	return v
}

func TestValidators(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name    string
		form    applicationForm
		wantErr bool
	}{
		{
			name: "valid",
			form: applicationForm{"Ada O'Neil", "+1 (555) 010-0199", "ada@example.com", "bachelor"},
		},
		{
			name:    "digits in name",
			form:    applicationForm{"Ada 2", "5550100199", "ada@example.com", "master"},
			wantErr: true,
		},
		{
			name:    "short phone",
			form:    applicationForm{"Ada", "12345", "ada@example.com", "phd"},
			wantErr: true,
		},
		{
			name:    "unknown education level",
			form:    applicationForm{"Ada", "5550100199", "ada@example.com", "bootcamp"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.form)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	err := newValidator().Struct(applicationForm{ApplicantEmail: "nope", EducationLevel: "x"})
	require.Error(t, err)

	messages := validation.FormatValidationErrors(err)
	assert.Contains(t, messages, "Name is required")
	assert.Contains(t, messages, "Phone number is required")
	assert.Contains(t, messages, "Please enter a valid email")
	assert.Contains(t, messages, "Please select a valid education level")

	fields := validation.FieldErrors(err)
	assert.Equal(t, "Name is required", fields["applicantName"])
	assert.Equal(t, "Please enter a valid email", fields["applicantEmail"])
}
