package apperror

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldIssue describes one rejected input field.
type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every field issue found in one input.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+" "+issue.Reason)
	}
	return strings.Join(parts, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator, configured to report json field names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateStruct runs struct tags and maps failures to a validation *Error.
func ValidateStruct(v any) error {
	if err := Validator().Struct(v); err != nil {
		return MapValidationError(err)
	}
	return nil
}

func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return Wrap(err, KindValidation, CodeInvalidInput, "invalid input", http.StatusBadRequest)
	}
	issues := make([]FieldIssue, 0, len(errs))
	for _, fe := range errs {
		issues = append(issues, FieldIssue{Field: fe.Field(), Reason: reasonFor(fe)})
	}
	first := issues[0]
	return Wrap(&ValidationError{Issues: issues}, KindValidation, CodeInvalidInput, humanField(first.Field)+" "+first.Reason, http.StatusBadRequest)
}

// Invalid builds a validation error for a single field outside struct tags.
func Invalid(field, reason string) error {
	return Wrap(&ValidationError{Issues: []FieldIssue{{Field: field, Reason: reason}}}, KindValidation, CodeInvalidInput, humanField(field)+" "+reason, http.StatusBadRequest)
}

// Issues extracts field issues from a validation error, if any.
func Issues(err error) []FieldIssue {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Issues
	}
	return nil
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "uuid", "uuid4":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}

// humanField turns companyEmail or company_email into "Company Email".
func humanField(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r == '_' {
			b.WriteRune(' ')
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return cases.Title(language.English).String(b.String())
}
