package repository

import (
	"context"
	"errors"
	"time"

	"github.com/UnknownOlympus/themis/internal/metrics"
	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrEmployeeNotFound is returned when no employee record matches a lookup, update or delete.
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrEmailTaken is returned when the storage engine rejects a duplicate email.
	ErrEmailTaken = errors.New("email already used")
	// ErrNoImportRecorded is returned when the directory import has never completed.
	ErrNoImportRecorded = errors.New("no directory import recorded")
)

type Repository struct {
	db      Database
	metrics *metrics.Metrics
}

// EmployeeRepoIface represents the interface for interacting with employee data in the repository.
type EmployeeRepoIface interface {
	FindByID(ctx context.Context, id uuid.UUID) (models.Employee, error)
	FindByEmail(ctx context.Context, email string) (models.Employee, error)
	FindByFullName(ctx context.Context, firstName, lastName string) (models.Employee, error)
	FindPage(ctx context.Context, page models.PageRequest) ([]models.Employee, error)
	Insert(ctx context.Context, employee models.Employee) (models.Employee, error)
	UpdateAndFlush(ctx context.Context, employee models.Employee) (models.Employee, error)
	Delete(ctx context.Context, employee models.Employee) error
	DeleteAll(ctx context.Context) error
}

func NewEmployeeRepository(db Database, metrics *metrics.Metrics) EmployeeRepoIface {
	return &Repository{db: db, metrics: metrics}
}

// ImportStatusRepoIface keeps track of the last completed staff directory import.
type ImportStatusRepoIface interface {
	SaveLastImport(ctx context.Context, at time.Time) error
	GetLastImport(ctx context.Context) (time.Time, error)
}

func NewImportStatusRepository(db Database, metrics *metrics.Metrics) ImportStatusRepoIface {
	return &Repository{db: db, metrics: metrics}
}

func (r *Repository) observe(queryType string, startTime time.Time) {
	r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(startTime).Seconds())
}
