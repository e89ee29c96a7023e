package quotation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError lists the fields that block a quotation from being issued.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "quotation invalid"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "quotation invalid: " + strings.Join(parts, "; ")
}

type issueInput struct {
	ClientName   string      `json:"clientName" validate:"required"`
	ClientEmail  string      `json:"clientEmail" validate:"required,email"`
	BusinessSize string      `json:"businessSize" validate:"required,oneof=individual xs s m l xl"`
	Items        []issueItem `json:"items" validate:"min=1,dive"`
}

type issueItem struct {
	Family  string `json:"typefaceFamily" validate:"required"`
	Variant string `json:"typefaceVariant" validate:"required"`
}

var messages = map[string]map[string]string{
	"clientName":      {"required": "Client name is required"},
	"clientEmail":     {"required": "Email is required", "email": "Please enter a valid email address"},
	"businessSize":    {"required": "Business size is required", "oneof": "Business size is not recognised"},
	"items":           {"min": "At least one typeface is required"},
	"licenseType":     {"required": "License type is required"},
	"typefaceFamily":  {"required": "Typeface family is required"},
	"typefaceVariant": {"required": "Typeface variant is required"},
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
	})
	return validate
}

// Validate checks that q carries everything needed to issue the document.
func Validate(q Quotation) error {
	in := issueInput{
		ClientName:   strings.TrimSpace(q.Client.Name),
		ClientEmail:  strings.TrimSpace(q.Client.Email),
		BusinessSize: string(q.BusinessSize),
		Items:        make([]issueItem, 0, len(q.Items)),
	}
	for _, it := range q.Items {
		in.Items = append(in.Items, issueItem{
			Family:  strings.TrimSpace(it.Family),
			Variant: strings.TrimSpace(it.Variant),
		})
	}
	return validateStruct(in)
}

// ValidateRequest validates a decoded request payload using its validate tags.
func ValidateRequest(v any) error {
	return validateStruct(v)
}

func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	if byTag, ok := messages[fe.Field()]; ok {
		if msg, ok := byTag[fe.Tag()]; ok {
			return msg
		}
	}
	if fe.Param() != "" {
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
	return "failed " + fe.Tag()
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
