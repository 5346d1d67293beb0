package domain

import "time"

// PersonType distinguishes individual from corporate clients.
type PersonType string

const (
	PersonIndividual PersonType = "PF"
	PersonCorporate  PersonType = "PJ"
)

// Client is a party the firm represents. Corporate clients carry a CNPJ,
// individuals a CPF; both are optional at intake and validated when present.
type Client struct {
	ID         string
	PersonType PersonType `validate:"required,oneof=PF PJ"`
	Name       string     `validate:"required,max=150"`
	Email      string     `validate:"omitempty,email"`
	Phone      string     `validate:"max=20"`

	CNPJ              string `validate:"omitempty,len=18"`
	StateRegistration string
	CPF               string `validate:"omitempty,len=14"`

	Zip      string
	Street   string
	Number   string
	District string
	City     string
	State    string `validate:"omitempty,len=2"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
