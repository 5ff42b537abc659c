package models

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/caseerr"
	"github.com/sprucehealth/casedata/libs/errors"
)

var patientKeyRE = regexp.MustCompile(`^[0-9]+#[^#]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("patientkey", func(fl validator.FieldLevel) bool {
		return ValidPatientKey(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	// A whitespace-only caseId would be read back as a request for every case.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// ValidPatientKey reports whether s has the tenantId#rawPatientId shape.
func ValidPatientKey(s string) bool {
	return patientKeyRE.MatchString(s)
}

// Validate checks a record before it is written. Every violated field is
// reported in declaration order in a single ValidationError.
func Validate(r *CaseRecord) error {
	if r == nil {
		return caseerr.New(caseerr.ValidationError, "record: is required")
	}
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Trace(caseerr.Wrap(caseerr.ValidationError, err, "record could not be validated"))
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fe.Field() + ": " + violation(fe)
	}
	return caseerr.New(caseerr.ValidationError, strings.Join(msgs, "; "))
}

func violation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "patientkey":
		return "must have the form tenantId#patientId with a numeric tenantId"
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}
