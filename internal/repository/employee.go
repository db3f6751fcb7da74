package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const employeeColumns = `id::text, first_name, last_name, email, cellphone`

// sortColumns maps sortable employee fields to their table columns.
var sortColumns = map[string]string{
	"id":        "id",
	"firstName": "first_name",
	"lastName":  "last_name",
	"email":     "email",
	"cellphone": "cellphone",
}

// FindByID retrieves an employee from the database by their ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (models.Employee, error) {
	defer r.observe("find_employee_by_id", time.Now())

	query := `SELECT ` + employeeColumns + ` FROM tb_employee WHERE id = $1`

	employee, err := scanEmployee(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}

	return employee, nil
}

// FindByEmail retrieves the employee that owns the given email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (models.Employee, error) {
	defer r.observe("find_employee_by_email", time.Now())

	query := `SELECT ` + employeeColumns + ` FROM tb_employee WHERE email = $1`

	employee, err := scanEmployee(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to get employee by email: %w", err)
	}

	return employee, nil
}

// FindByFullName retrieves the first employee with the given first and last name.
func (r *Repository) FindByFullName(ctx context.Context, firstName, lastName string) (models.Employee, error) {
	defer r.observe("find_employee_by_full_name", time.Now())

	query := `SELECT ` + employeeColumns + ` FROM tb_employee
		WHERE first_name = $1 AND last_name = $2
		ORDER BY created_at, id LIMIT 1`

	employee, err := scanEmployee(r.db.QueryRow(ctx, query, firstName, lastName))
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to get employee by full name: %w", err)
	}

	return employee, nil
}

// FindPage returns one page of employees ordered as requested.
// A page past the last record yields an empty, non-nil slice.
func (r *Repository) FindPage(ctx context.Context, page models.PageRequest) ([]models.Employee, error) {
	defer r.observe("find_employee_page", time.Now())

	orderBy, err := orderClause(page.Sort)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + employeeColumns + ` FROM tb_employee ORDER BY ` + orderBy + ` LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to query employee page: %w", err)
	}

	employees, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Employee, error) {
		return scanEmployee(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read employee page: %w", err)
	}

	return employees, nil
}

// Insert saves a new employee. The database assigns the identifier.
func (r *Repository) Insert(ctx context.Context, employee models.Employee) (models.Employee, error) {
	defer r.observe("insert_employee", time.Now())

	query := `
		INSERT INTO tb_employee (first_name, last_name, email, cellphone)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + employeeColumns + `;
	`

	saved, err := scanEmployee(r.db.QueryRow(ctx, query,
		employee.FirstName, employee.LastName, employee.Email, employee.Cellphone))
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to save employee: %w", classifyWriteError(err))
	}

	return saved, nil
}

// UpdateAndFlush overwrites every mutable field of an existing employee and returns the stored row.
func (r *Repository) UpdateAndFlush(ctx context.Context, employee models.Employee) (models.Employee, error) {
	defer r.observe("update_employee", time.Now())

	query := `
		UPDATE tb_employee
		SET first_name = $2, last_name = $3, email = $4, cellphone = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING ` + employeeColumns + `;
	`

	updated, err := scanEmployee(r.db.QueryRow(ctx, query,
		employee.ID, employee.FirstName, employee.LastName, employee.Email, employee.Cellphone))
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to update employee data: %w", classifyWriteError(err))
	}

	return updated, nil
}

// Delete removes the given employee.
func (r *Repository) Delete(ctx context.Context, employee models.Employee) error {
	defer r.observe("delete_employee", time.Now())

	tag, err := r.db.Exec(ctx, `DELETE FROM tb_employee WHERE id = $1`, employee.ID)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete employee '%s': %w", employee.ID, ErrEmployeeNotFound)
	}

	return nil
}

// DeleteAll removes every employee.
func (r *Repository) DeleteAll(ctx context.Context) error {
	defer r.observe("delete_all_employees", time.Now())

	if _, err := r.db.Exec(ctx, `DELETE FROM tb_employee`); err != nil {
		return fmt.Errorf("failed to delete employees: %w", err)
	}

	return nil
}

func scanEmployee(row pgx.Row) (models.Employee, error) {
	var (
		result models.Employee
		rawID  string
	)

	err := row.Scan(&rawID, &result.FirstName, &result.LastName, &result.Email, &result.Cellphone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Employee{}, ErrEmployeeNotFound
		}
		return models.Employee{}, err
	}

	result.ID, err = uuid.Parse(rawID)
	if err != nil {
		return models.Employee{}, fmt.Errorf("malformed employee id '%s': %w", rawID, err)
	}

	return result, nil
}

// classifyWriteError turns a unique violation into ErrEmailTaken while keeping the driver error.
// Email is the only unique column besides the primary key, which callers never write.
func classifyWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %w", ErrEmailTaken, err)
	}
	return err
}

func orderClause(sorts []models.Sort) (string, error) {
	if len(sorts) == 0 {
		return "created_at, id", nil
	}

	parts := make([]string, 0, len(sorts))
	for _, srt := range sorts {
		column, ok := sortColumns[srt.Field]
		if !ok {
			return "", fmt.Errorf("unsupported sort field '%s'", srt.Field)
		}
		direction := "ASC"
		if srt.Direction == models.Desc {
			direction = "DESC"
		}
		parts = append(parts, column+" "+direction)
	}

	return strings.Join(parts, ", "), nil
}
