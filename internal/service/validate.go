package service

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// fieldMessages echoes the storefront's form copy; the contract returns the
// FIRST failing rule's message with a 400.
var fieldMessages = map[string]string{
	"SignupInput.FullName":        "Full name must be at least 3 characters long",
	"SignupInput.Email":           "Invalid email address",
	"SignupInput.Image":           "Image must be a valid URL",
	"SignupInput.Password":        "Password must be at least 6 characters long",
	"ProfileUpdateInput.FullName": "Full name must be at least 2 characters long",
	"ProfileUpdateInput.Image":    "Image must be a valid URL",
	"ProductInput.Title":          "Title must be at least 3 characters long",
	"ProductInput.Price":          "Price must be positive",
	"ProductInput.Description":    "Description must be at least 10 characters long",
	"ProductInput.Category":       "Category is required",
	"ProductInput.Image":          "Image must be a valid URL",
	// Nested struct fields namespace under the FIELD name, not the type.
	"Rating.Rate":  "Rating must be between 0 and 5",
	"Rating.Count": "Rating count must not be negative",
}

// firstValidationMessage turns a validator error into the message for the
// first failed field.
func firstValidationMessage(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		ns := fe.StructNamespace()
		// Nested fields keep only the two trailing segments (struct.field).
		if parts := strings.Split(ns, "."); len(parts) > 2 {
			ns = strings.Join(parts[len(parts)-2:], ".")
		}
		if msg, ok := fieldMessages[ns]; ok {
			return msg
		}
		return fe.Field() + " is invalid"
	}
	return "invalid payload"
}

// checkPasswordComplexity enforces the signup password rules beyond length.
func checkPasswordComplexity(pw string) string {
	var upper, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(`!@#$%^&*(),.?":{}|<>`, r):
			special = true
		}
	}
	switch {
	case !upper:
		return "Password must contain at least one uppercase letter"
	case !digit:
		return "Password must contain at least one number"
	case !special:
		return "Password must contain at least one special character"
	}
	return ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
