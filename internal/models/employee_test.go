package models_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmployee(t *testing.T) {
	t.Parallel()

	employee := models.NewEmployee("John", "Doe", "john@example.com", "14 999999999")

	assert.False(t, employee.HasID())
	assert.Equal(t, "John", employee.FirstName)
	assert.Equal(t, "Doe", employee.LastName)
	assert.Equal(t, "john@example.com", employee.Email)
	assert.Equal(t, "14 999999999", employee.Cellphone)
}

func TestEmployeeSame(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	tests := []struct {
		name  string
		left  models.Employee
		right models.Employee
		want  bool
	}{
		{
			name:  "same id different fields",
			left:  models.Employee{ID: id, FirstName: "A"},
			right: models.Employee{ID: id, FirstName: "B"},
			want:  true,
		},
		{
			name:  "different ids same fields",
			left:  models.Employee{ID: uuid.New(), Email: "a@b.com"},
			right: models.Employee{ID: uuid.New(), Email: "a@b.com"},
			want:  false,
		},
		{
			name:  "both without id",
			left:  models.NewEmployee("A", "B", "a@b.com", "1"),
			right: models.NewEmployee("A", "B", "a@b.com", "1"),
			want:  false,
		},
		{
			name:  "one without id",
			left:  models.Employee{ID: id},
			right: models.Employee{},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.left.Same(tt.right))
			assert.Equal(t, tt.want, tt.right.Same(tt.left))
		})
	}
}

func TestEmployeeValidate(t *testing.T) {
	t.Parallel()

	valid := models.NewEmployee("A", "B", "a@b.com", "1")
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(e *models.Employee)
		wantMsg string
	}{
		{"empty first name", func(e *models.Employee) { e.FirstName = " " }, "firstName must not be empty"},
		{"empty last name", func(e *models.Employee) { e.LastName = "" }, "lastName must not be empty"},
		{"empty email", func(e *models.Employee) { e.Email = "" }, "email must not be empty"},
		{"empty cellphone", func(e *models.Employee) { e.Cellphone = "" }, "cellphone must not be empty"},
		{
			"long first name",
			func(e *models.Employee) { e.FirstName = strings.Repeat("a", models.MaxNameLength+1) },
			"firstName must be at most 100 characters",
		},
		{
			"long email",
			func(e *models.Employee) { e.Email = strings.Repeat("a", models.MaxEmailLength) + "@b.com" },
			"email must be at most 100 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			employee := valid
			tt.mutate(&employee)

			err := employee.Validate()
			require.Error(t, err)
			require.ErrorIs(t, err, models.ErrInvalid)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestEmployeeValidate_CountsRunes(t *testing.T) {
	t.Parallel()

	employee := models.NewEmployee(strings.Repeat("é", models.MaxNameLength), "B", "a@b.com", "1")

	require.NoError(t, employee.Validate())
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	conflict := models.Conflict("Email unavailable!")
	require.ErrorIs(t, conflict, models.ErrConflict)
	require.NotErrorIs(t, conflict, models.ErrNotFound)
	assert.Equal(t, "Email unavailable!", conflict.Error())

	cause := errors.New("unique violation")
	wrapped := conflict.WithCause(cause)
	require.ErrorIs(t, wrapped, cause)
	require.ErrorIs(t, wrapped, models.ErrConflict)
	assert.Nil(t, conflict.Cause, "WithCause must not modify the receiver")
	assert.Same(t, conflict, conflict.WithCause(nil))

	var domainErr *models.Error
	outer := errors.Join(errors.New("context"), models.NotFound("gone"))
	require.ErrorAs(t, outer, &domainErr)
	assert.Equal(t, "gone", domainErr.Message)
	require.ErrorIs(t, outer, models.ErrNotFound)
}
