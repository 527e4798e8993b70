package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance for request DTOs.
var validate = validator.New()

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
// Clients sending fields outside a request's contract get an error rather
// than silent acceptance.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// ValidateRequest runs struct-tag validation on a decoded request DTO and
// returns a client-presentable message for the first failing field.
func ValidateRequest(dst interface{}) error {
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("field %q failed validation on %q", fe.Field(), fe.Tag())
		}
		return err
	}
	return nil
}
