package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient represents a clinic patient
type Patient struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	FirstName  string     `json:"first_name" db:"first_name"`
	LastName   string     `json:"last_name" db:"last_name"`
	NationalID string     `json:"national_id" db:"national_id"`
	BirthDate  *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	Gender     string     `json:"gender" db:"gender"`
	Phone      *string    `json:"phone,omitempty" db:"phone"`
	Email      *string    `json:"email,omitempty" db:"email"`
	Address    *string    `json:"address,omitempty" db:"address"`
	InsurerID  *uuid.UUID `json:"insurer_id,omitempty" db:"insurer_id"`
	Active     bool       `json:"active" db:"active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

type PatientRequest struct {
	FirstName  string     `json:"first_name" validate:"required,max=100"`
	LastName   string     `json:"last_name" validate:"required,max=100"`
	NationalID string     `json:"national_id" validate:"required,max=20"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	Gender     string     `json:"gender" validate:"required,oneof=M F O"`
	Phone      *string    `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email      *string    `json:"email,omitempty" validate:"omitempty,email"`
	Address    *string    `json:"address,omitempty" validate:"omitempty,max=255"`
	InsurerID  *uuid.UUID `json:"insurer_id,omitempty"`
	Active     *bool      `json:"active,omitempty"`
}

// FullName returns "first last".
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Apply copies the request fields onto the patient. A missing Active flag
// keeps the current value.
func (p *Patient) Apply(req *PatientRequest) {
	p.FirstName = strings.TrimSpace(req.FirstName)
	p.LastName = strings.TrimSpace(req.LastName)
	p.NationalID = strings.TrimSpace(req.NationalID)
	p.BirthDate = req.BirthDate
	p.Gender = req.Gender
	p.Phone = req.Phone
	p.Email = req.Email
	p.Address = req.Address
	p.InsurerID = req.InsurerID
	if req.Active != nil {
		p.Active = *req.Active
	}
}
