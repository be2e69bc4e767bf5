package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to the labels shown on forms
var FieldLabels = map[string]string{
	// Application form
	"ApplicantName":  "Name",
	"ApplicantPhone": "Phone number",
	"ApplicantEmail": "Email",
	"EducationLevel": "Education level",
	"CoverLetter":    "Cover letter",

	// Job form
	"Title":               "Job title",
	"Description":         "Description",
	"Location":            "Location",
	"Type":                "Job type",
	"ExperienceLevel":     "Experience level",
	"SalaryMin":           "Minimum salary",
	"SalaryMax":           "Maximum salary",
	"HourlyRate":          "Hourly rate",
	"ApplicationDeadline": "Application deadline",

	// Auth
	"Email":     "Email",
	"Password":  "Password",
	"FirstName": "First name",
	"LastName":  "Last name",
	"UserType":  "Account type",

	// Tasks
	"Text":     "Task",
	"Priority": "Priority",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// FieldErrors keys each message by the field's form name so a form can show it inline.
func FieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	out := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		out[formName(e.Field())] = formatSingleError(e)
	}
	return out
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return "Please enter a valid email"
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "gte":
		return fmt.Sprintf("%s must not be negative", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(param), ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", label)
	case "valid_name":
		return fmt.Sprintf("%s may only contain letters, spaces and . ' - ,", label)
	case "valid_phone":
		return fmt.Sprintf("%s is not a valid phone number (7-15 digits, optional +)", label)
	case "no_emoji":
		return fmt.Sprintf("%s must not contain emoji or special symbols", label)
	case "education_level", "job_type", "experience_level":
		return fmt.Sprintf("Please select a valid %s", strings.ToLower(label))
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", label, strings.ToLower(getFieldLabel(param)))
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}

// formName lower-cases the first letter of a Go field name.
func formName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
