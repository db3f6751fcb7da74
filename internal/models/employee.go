package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxNameLength  = 100
	MaxEmailLength = 100
)

// Employee represents an employee entity.
type Employee struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Cellphone string    `json:"cellphone"`
}

// NewEmployee returns an employee that has not been persisted yet.
func NewEmployee(firstName, lastName, email, cellphone string) Employee {
	return Employee{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Cellphone: cellphone,
	}
}

// HasID reports whether the storage layer has assigned an identifier.
func (e Employee) HasID() bool {
	return e.ID != uuid.Nil
}

// Same reports whether e and other are the same entity.
// Employees without an identifier are never the same as anything, including each other.
func (e Employee) Same(other Employee) bool {
	return e.HasID() && other.HasID() && e.ID == other.ID
}

// Validate checks the field invariants of an employee record.
func (e Employee) Validate() error {
	if err := checkField("firstName", e.FirstName, MaxNameLength); err != nil {
		return err
	}
	if err := checkField("lastName", e.LastName, MaxNameLength); err != nil {
		return err
	}
	if err := checkField("email", e.Email, MaxEmailLength); err != nil {
		return err
	}
	if strings.TrimSpace(e.Cellphone) == "" {
		return Invalid("cellphone must not be empty")
	}

	return nil
}

func checkField(name, value string, limit int) error {
	if strings.TrimSpace(value) == "" {
		return Invalid(name + " must not be empty")
	}
	if utf8.RuneCountInString(value) > limit {
		return Invalid(fmt.Sprintf("%s must be at most %d characters", name, limit))
	}

	return nil
}
