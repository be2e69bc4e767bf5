package validation

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"go-jobmatch-web/internal/domain"
)

// Regex patterns
var (
	// Allow letters, spaces, and common punctuation found in personal names: . ' - ,
	nameRegex = regexp.MustCompile(`^[\p{L} .',-]+$`)

	// E164-like phone after separators are removed: optional +, 7-15 digits
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("education_level", EducationLevel)
	_ = v.RegisterValidation("job_type", JobType)
	_ = v.RegisterValidation("experience_level", ExperienceLevel)
}

// ValidName validates that a string contains only valid name characters
func ValidName(fl validator.FieldLevel) bool {
	val := strings.TrimSpace(fl.Field().String())
	if val == "" {
		return true // Optional, use required if needed
	}
	return nameRegex.MatchString(val)
}

// ValidPhone validates a phone number once spaces, dashes, dots and parentheses are removed
func ValidPhone(fl validator.FieldLevel) bool {
	val := strings.TrimSpace(fl.Field().String())
	if val == "" {
		return true
	}
	return phoneRegex.MatchString(phoneSeparators.Replace(val))
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

func EducationLevel(fl validator.FieldLevel) bool {
	return oneOf(fl, domain.EducationLevels)
}

func JobType(fl validator.FieldLevel) bool {
	return oneOf(fl, domain.JobTypes)
}

func ExperienceLevel(fl validator.FieldLevel) bool {
	return oneOf(fl, domain.ExperienceLevels)
}

func oneOf(fl validator.FieldLevel, allowed []string) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return slices.Contains(allowed, val)
}
