// Package validation checks and cleans untrusted contact form input.
package validation

import (
	"errors"
	"strings"

	"github.com/coteroyale/storefront/internal/models"
	"github.com/go-playground/validator/v10"
)

// Result is the outcome of ValidateContact. Exactly one of Data or Errors is set.
type Result struct {
	Success bool
	Data    *models.ContactSubmission
	Errors  []string
}

type contactInput struct {
	Name    string `validate:"required,max=100"`
	Email   string `validate:"required,max=254,email"`
	Message string `validate:"required,min=10,max=1000"`
}

var validate = validator.New()

// fieldMessages maps field+tag of a failed rule to the message shown to the visitor.
var fieldMessages = map[string]map[string]string{
	"Name": {
		"required": "Name is required",
		"max":      "Name must be less than 100 characters",
	},
	"Email": {
		"required": "Email is required",
		"max":      "Email must be less than 254 characters",
		"email":    "Please enter a valid email address",
	},
	"Message": {
		"required": "Message is required",
		"min":      "Message must be at least 10 characters long",
		"max":      "Message must be less than 1000 characters",
	},
}

const (
	msgBlankName        = "Name cannot be empty or contain only whitespace"
	msgNotMeaningful    = "Message must contain meaningful content"
	msgInvalidInput     = "Invalid input data"
	msgSuspiciousName   = "Name contains suspicious content"
	msgSuspiciousMsg    = "Message contains suspicious content"
	msgDomainNotAllowed = "Email domain is not allowed"
	msgSpam             = "Message appears to be spam"
)

// ValidateContact validates a decoded JSON body. Schema failures are returned on their own;
// content checks only run on well-formed input and all of their failures are reported.
func ValidateContact(raw any) Result {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Result{Errors: []string{msgInvalidInput}}
	}

	in, errs := normalize(obj)
	errs = append(errs, schemaErrors(in, errs)...)
	if len(errs) > 0 {
		return Result{Errors: errs}
	}

	var security []string
	if ContainsSuspiciousContent(in.Name) {
		security = append(security, msgSuspiciousName)
	}
	if ContainsSuspiciousContent(in.Message) {
		security = append(security, msgSuspiciousMsg)
	}
	if !IsAllowedEmailDomain(in.Email) {
		security = append(security, msgDomainNotAllowed)
	}
	if IsSpamLike(in.Message) {
		security = append(security, msgSpam)
	}
	if len(security) > 0 {
		return Result{Errors: security}
	}

	return Result{
		Success: true,
		Data: &models.ContactSubmission{
			Name:    SanitizeText(in.Name),
			Email:   in.Email,
			Message: SanitizeText(in.Message),
		},
	}
}

// normalize pulls the three fields out of obj, trimming strings and lowercasing the email.
// Fields of the wrong type are reported and left empty.
func normalize(obj map[string]any) (contactInput, []string) {
	var (
		in   contactInput
		errs []string
	)
	field := func(key, label string) string {
		v, present := obj[key]
		if !present || v == nil {
			return ""
		}
		s, ok := v.(string)
		if !ok {
			errs = append(errs, wrongTypeMessage(label))
			return ""
		}
		return s
	}

	rawName := field("name", "Name")
	in.Name = strings.TrimSpace(rawName)
	in.Email = strings.ToLower(strings.TrimSpace(field("email", "Email")))
	in.Message = strings.TrimSpace(field("message", "Message"))

	if rawName != "" && in.Name == "" {
		errs = append(errs, msgBlankName)
	}
	return in, errs
}

func wrongTypeMessage(label string) string {
	return label + " must be a string"
}

// schemaErrors runs the struct rules. prior holds errors already reported by normalize,
// so a whitespace-only name or a field of the wrong type is not reported twice.
func schemaErrors(in contactInput, prior []string) []string {
	var out []string

	err := validate.Struct(in)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Name" && fe.Tag() == "required" && hasMessage(prior, msgBlankName) {
				continue
			}
			if hasMessage(prior, wrongTypeMessage(fe.Field())) {
				continue
			}
			msg, ok := fieldMessages[fe.Field()][fe.Tag()]
			if !ok {
				msg = fe.Field() + " is invalid"
			}
			out = append(out, msg)
		}
	}

	if in.Message != "" && !fieldFailed(verrs, "Message") && len([]rune(collapseSpaces(in.Message))) < 10 {
		out = append(out, msgNotMeaningful)
	}
	return out
}

func fieldFailed(verrs validator.ValidationErrors, field string) bool {
	for _, fe := range verrs {
		if fe.Field() == field {
			return true
		}
	}
	return false
}

func hasMessage(msgs []string, m string) bool {
	for _, s := range msgs {
		if s == m {
			return true
		}
	}
	return false
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
