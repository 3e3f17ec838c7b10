package session

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// LoginPayload carries backend login credentials.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p LoginPayload) Validate() error {
	return invalidPayload(validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	))
}

// RegisterEmployeePayload is the body for POST /api/auth/register-employee.
type RegisterEmployeePayload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

func (p RegisterEmployeePayload) Validate() error {
	return invalidPayload(validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(6, 0)),
	))
}

// RegisterHRPayload is the body for POST /api/auth/register-hr.
type RegisterHRPayload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName"`
	CompanyLogo string `json:"companyLogo,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

func (p RegisterHRPayload) Validate() error {
	return invalidPayload(validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(6, 0)),
		validation.Field(&p.CompanyName, validation.Required),
	))
}

// ProfilePatch is the partial-update body for PUT /api/auth/profile. Zero
// fields are omitted from the request; the server returns the full record.
type ProfilePatch struct {
	Name         string `json:"name,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	CompanyName  string `json:"companyName,omitempty"`
	CompanyLogo  string `json:"companyLogo,omitempty"`
}

func (p ProfilePatch) Validate() error {
	return invalidPayload(validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Length(1, 120)),
	))
}

// invalidPayload converts ozzo field errors into the ErrValidation shape so
// callers can branch on kind without string matching.
func invalidPayload(err error) error {
	if err == nil {
		return nil
	}

	fields := map[string]string{}
	if verrs, ok := err.(validation.Errors); ok {
		for name, ferr := range verrs {
			fields[name] = ferr.Error()
		}
	}

	clone := ErrValidation.Clone()
	if clone == nil {
		return err
	}

	clone.Source = err
	return clone.WithMetadata(map[string]any{
		"fields": fields,
	})
}
