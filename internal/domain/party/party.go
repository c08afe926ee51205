// Package party holds the name and reachability fields that leads and
// contacts share.
package party

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
)

const MaxNameLength = 220

var validate = validator.New()

// Details are optional and stored as NULL when blank.
type Details struct {
	Email   *string `json:"email" validate:"omitempty,email,max=220"`
	Phone   *string `json:"phone" validate:"omitempty,max=64"`
	Company *string `json:"company" validate:"omitempty,max=220"`
}

// Normalize trims every field and turns blanks into nil.
func (d *Details) Normalize() {
	d.Email = Clean(d.Email)
	d.Phone = Clean(d.Phone)
	d.Company = Clean(d.Company)
}

func (d Details) Validate() error {
	if err := validate.Struct(d); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperr.Validation("%s", err.Error())
		}
		fe := verrs[0]
		if fe.Param() != "" {
			return apperr.Validation("%s failed %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param())
		}
		return apperr.Validation("%s failed %s", strings.ToLower(fe.Field()), fe.Tag())
	}
	return nil
}

// Patch carries a partial update of Details. A nil field is left alone; a
// blank one clears the stored value.
type Patch struct {
	Email   *string
	Phone   *string
	Company *string
}

func (p Patch) Validate() error {
	return p.preview().Validate()
}

// Apply writes the patch over d.
func (p Patch) Apply(d *Details) {
	if p.Email != nil {
		d.Email = Clean(p.Email)
	}
	if p.Phone != nil {
		d.Phone = Clean(p.Phone)
	}
	if p.Company != nil {
		d.Company = Clean(p.Company)
	}
}

func (p Patch) preview() Details {
	d := Details{}
	p.Apply(&d)
	return d
}

// Name trims and checks a display name.
func Name(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", apperr.Validation("name is required")
	}
	if n := len([]rune(name)); n > MaxNameLength {
		return "", apperr.Validation("name exceeds %d characters", MaxNameLength)
	}
	return name, nil
}

func Clean(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
