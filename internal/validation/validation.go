// Package validation checks user payloads before they reach the service layer.
//
// The rules are deliberately shallow: presence, a two-part email shape, a
// minimum password length and a YYYY-MM-DD shape for birthdays. No calendar
// check is done, so "2024-13-40" passes.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/users-api/internal/apperror"
	"github.com/sakif/users-api/internal/model"
)

const (
	MsgMissingFields    = "Missing required fields: firstName, lastName, email, password, and birthday are required"
	MsgInvalidEmail     = "Invalid email format"
	MsgPasswordTooShort = "Password must be at least 8 characters long"
	MsgInvalidBirthday  = "Birthday must be in YYYY-MM-DD format"

	// passwordRule counts runes, not bytes.
	passwordRule = "min=8"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	birthdayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Validator wraps a configured go-playground validator. It is safe for
// concurrent use.
type Validator struct {
	v *validator.Validate
}

// New registers the "emailshape" and "dateshape" tags and returns a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("dateshape", func(fl validator.FieldLevel) bool {
		return birthdayPattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Create checks a create payload: every field present and non-empty, then
// email, password and birthday in that order.
func (val *Validator) Create(in model.UserInput) error {
	for _, p := range []*string{in.FirstName, in.LastName, in.Email, in.Password, in.Birthday} {
		if val.v.Var(model.Value(p), "required") != nil {
			return apperror.ValidationFailed("", MsgMissingFields)
		}
	}
	if val.v.Var(*in.Email, "emailshape") != nil {
		return apperror.ValidationFailed("email", MsgInvalidEmail)
	}
	if val.v.Var(*in.Password, passwordRule) != nil {
		return apperror.ValidationFailed("password", MsgPasswordTooShort)
	}
	if val.v.Var(*in.Birthday, "dateshape") != nil {
		return apperror.ValidationFailed("birthday", MsgInvalidBirthday)
	}
	return nil
}

// Update checks a partial payload. Email and birthday are checked only when
// non-empty; password is checked whenever the key is present, so an explicit
// "" is rejected while an absent password is not.
func (val *Validator) Update(in model.UserInput) error {
	if model.Value(in.Email) != "" && val.v.Var(*in.Email, "emailshape") != nil {
		return apperror.ValidationFailed("email", MsgInvalidEmail)
	}
	if in.Password != nil && val.v.Var(*in.Password, passwordRule) != nil {
		return apperror.ValidationFailed("password", MsgPasswordTooShort)
	}
	if model.Value(in.Birthday) != "" && val.v.Var(*in.Birthday, "dateshape") != nil {
		return apperror.ValidationFailed("birthday", MsgInvalidBirthday)
	}
	return nil
}
