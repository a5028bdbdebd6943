package entity

import (
	"strings"
	"time"
)

// Tipos de cliente.
const (
	ClientTypeIndividual = "individual"
	ClientTypeCompany    = "company"
)

// Customer representa un alumno o empresa facturable (propiedad de un usuario).
type Customer struct {
	ID            string
	UserID        string
	ClientType    string // individual, company
	FirstName     string
	LastName      string
	CompanyName   string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	City          string
	PostalCode    string
	Country       string
	VATNumber     string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayName devuelve la razón social o "nombre apellido" para particulares.
func (c *Customer) DisplayName() string {
	if c == nil {
		return ""
	}
	if c.ClientType == ClientTypeCompany {
		return c.CompanyName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
