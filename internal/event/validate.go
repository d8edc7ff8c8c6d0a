package event

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json names so errors read like the table columns
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// InvalidRecordError reports a scraped record that is missing or has malformed required fields
type InvalidRecordError struct {
	URL    string
	Fields []string // e.g. "date(datetime)"
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid record %q: %s", e.URL, strings.Join(e.Fields, ", "))
}

// Validate checks the required fields of a record before it enters a reconciliation pass.
func Validate(r Record) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating record: %w", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
	}
	return &InvalidRecordError{URL: r.URL, Fields: fields}
}
