package services

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest checks struct tags and reports the first failure as
// domain.ErrInvalidInput.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.InvalidInput("%s is %s", fieldName(fe.StructField()), fe.Tag())
	}
	return domain.InvalidInput("%v", err)
}

// requireField reports an empty value as domain.ErrInvalidInput.
func requireField(name, value string) error {
	if err := validate.Var(value, "required"); err != nil {
		return domain.InvalidInput("%s is required", name)
	}
	return nil
}

// fieldName renders a Go field name the way the HTTP API spells it.
func fieldName(field string) string {
	if field == "" {
		return field
	}
	if strings.HasSuffix(field, "ID") {
		field = strings.TrimSuffix(field, "ID") + "Id"
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// requireResourceID rejects ids that would change the upstream request path.
func requireResourceID(name, value string) error {
	if err := requireField(name, value); err != nil {
		return err
	}
	if strings.ContainsAny(value, "/?#\\") || strings.Contains(value, "..") {
		return domain.InvalidInput("%s is malformed", name)
	}
	return nil
}
