package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/researchhive/hive-api/pkg/util"
)

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt ignores input past 72 bytes
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		p := fl.Field().String()
		return utf8.RuneCountInString(strings.TrimSpace(p)) >= minPasswordLength && len(p) <= maxPasswordBytes
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// fieldMessages maps "Struct.Field" (or "Field.tag") to client facing text.
var fieldMessages = map[string]string{
	"Password":        "Password must be at least 8 characters",
	"MobileNumber":    "Invalid Mobile Number",
	"Name":            "Name cannot be empty",
	"Email":           "Email cannot be empty",
	"Email.email":     "Email is invalid",
	"Role":            "Role cannot be empty",
	"Role.oneof":      "Role must be one of Reviewer, Researcher, Both",
	"Gender":          "Gender must be one of Male, Female, Other",
	"Age":             "Age must be a valid number",
	"Expertise":       "Expertise cannot be empty",
	"PaperID":         "Paper id is required",
	"Comment":         "Comment is required",
	"Comment.max":     "Comment must be at most 500 characters",
	"Rating":          "Rating must be between 1 and 5",
	"ProfilePic":      "Profile pic is required",
	"Identifier":      "Invalid credentials",
	"OngoingProjects": "Ongoing projects cannot contain empty entries",
	"Institutions":    "Institutions cannot contain empty entries",
	"Interests":       "Interests cannot contain empty entries",
}

// validateInput runs struct validation and converts the first failure into a
// ValidationError.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewInternalError(err)
	}
	fe := fieldErrs[0]
	if msg, ok := fieldMessages[fe.StructField()+"."+fe.Tag()]; ok {
		return apperrors.NewValidationError(msg)
	}
	if msg, ok := fieldMessages[fe.StructField()]; ok {
		return apperrors.NewValidationError(msg)
	}
	return apperrors.NewValidationError(fmt.Sprintf("%s is invalid", fe.Field()))
}
