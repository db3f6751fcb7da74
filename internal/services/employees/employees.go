package employees

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/themis/internal/lib/logger/sl"
	"github.com/UnknownOlympus/themis/internal/metrics"
	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/UnknownOlympus/themis/internal/repository"
	"github.com/google/uuid"
)

const msgEmailUnavailable = "Email unavailable!"

// Policy holds the behaviour switches of the registry.
type Policy struct {
	// RevalidateEmailOnUpdate makes Update check email uniqueness the same way Create does.
	RevalidateEmailOnUpdate bool
}

// Staff implements the lifecycle of employee records on top of a storage gateway.
type Staff struct {
	log     *slog.Logger
	repo    repository.EmployeeRepoIface
	metrics *metrics.Metrics
	policy  Policy
}

// NewStaff creates the employee service. The policy controls optional uniqueness checks.
func NewStaff(log *slog.Logger, repo repository.EmployeeRepoIface, metrics *metrics.Metrics, policy Policy) *Staff {
	return &Staff{log: log, repo: repo, metrics: metrics, policy: policy}
}

func (s *Staff) initLogger(opn string) *slog.Logger {
	return s.log.With(
		slog.String("op", opn),
		slog.String("division", "employee"),
	)
}

// EmailIsAvailable reports whether no stored employee uses the given email.
// A taken email is reported as a Conflict failure rather than false.
func (s *Staff) EmailIsAvailable(ctx context.Context, email string) (bool, error) {
	const opn = "Employee.EmailIsAvailable"
	log := s.initLogger(opn)

	available, err := s.emailIsAvailable(ctx, email)
	s.record(opn, err)
	if err != nil {
		s.logFailure(ctx, log, "email availability check failed", err)
		return false, err
	}

	return available, nil
}

// Create stores a new employee and returns it with the identifier assigned by storage.
func (s *Staff) Create(ctx context.Context, employee models.Employee) (models.Employee, error) {
	const opn = "Employee.Create"
	log := s.initLogger(opn)

	created, err := s.create(ctx, employee)
	s.record(opn, err)
	if err != nil {
		s.logFailure(ctx, log, "failed to create employee", err)
		return models.Employee{}, err
	}

	log.InfoContext(ctx, "employee created", "id", created.ID)
	return created, nil
}

func (s *Staff) create(ctx context.Context, employee models.Employee) (models.Employee, error) {
	if err := employee.Validate(); err != nil {
		return models.Employee{}, err
	}
	employee.ID = uuid.Nil

	if _, err := s.emailIsAvailable(ctx, employee.Email); err != nil {
		return models.Employee{}, err
	}

	created, err := s.repo.Insert(ctx, employee)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			s.metrics.EmailConflicts.Inc()
			return models.Employee{}, models.Conflict(msgEmailUnavailable).WithCause(err)
		}
		return models.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return created, nil
}

// Update overwrites the mutable fields of an existing employee.
func (s *Staff) Update(ctx context.Context, employee models.Employee) (models.Employee, error) {
	const opn = "Employee.Update"
	log := s.initLogger(opn)

	updated, err := s.update(ctx, employee)
	s.record(opn, err)
	if err != nil {
		s.logFailure(ctx, log, "failed to update employee", err)
		return models.Employee{}, err
	}

	log.InfoContext(ctx, "employee updated", "id", updated.ID)
	return updated, nil
}

func (s *Staff) update(ctx context.Context, employee models.Employee) (models.Employee, error) {
	if err := employee.Validate(); err != nil {
		return models.Employee{}, err
	}
	if !employee.HasID() {
		return models.Employee{}, models.Invalid("id must be set to update an employee")
	}

	if s.policy.RevalidateEmailOnUpdate {
		owner, err := s.repo.FindByEmail(ctx, employee.Email)
		switch {
		case errors.Is(err, repository.ErrEmployeeNotFound):
		case err != nil:
			return models.Employee{}, fmt.Errorf("failed to check email availability: %w", err)
		case !owner.Same(employee):
			s.metrics.EmailConflicts.Inc()
			return models.Employee{}, models.Conflict(msgEmailUnavailable)
		}
	}

	updated, err := s.repo.UpdateAndFlush(ctx, employee)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmployeeNotFound):
			return models.Employee{}, notFoundByID(employee.ID).WithCause(err)
		case s.policy.RevalidateEmailOnUpdate && errors.Is(err, repository.ErrEmailTaken):
			s.metrics.EmailConflicts.Inc()
			return models.Employee{}, models.Conflict(msgEmailUnavailable).WithCause(err)
		}
		return models.Employee{}, fmt.Errorf("failed to update employee: %w", err)
	}

	return updated, nil
}

// FindByID returns the employee with the given identifier.
func (s *Staff) FindByID(ctx context.Context, id uuid.UUID) (models.Employee, error) {
	const opn = "Employee.FindByID"
	log := s.initLogger(opn)

	employee, err := s.findByID(ctx, id)
	s.record(opn, err)
	if err != nil {
		s.logFailure(ctx, log, "failed to find employee", err)
		return models.Employee{}, err
	}

	return employee, nil
}

func (s *Staff) findByID(ctx context.Context, id uuid.UUID) (models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return models.Employee{}, notFoundByID(id).WithCause(err)
		}
		return models.Employee{}, fmt.Errorf("failed to find employee: %w", err)
	}

	return employee, nil
}

// FindByFullName returns the first employee with the given first and last name.
func (s *Staff) FindByFullName(ctx context.Context, firstName, lastName string) (models.Employee, error) {
	const opn = "Employee.FindByFullName"
	log := s.initLogger(opn)

	employee, err := s.repo.FindByFullName(ctx, firstName, lastName)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			err = models.NotFound(
				fmt.Sprintf("Employee not found. Name: %s %s", firstName, lastName)).WithCause(err)
		} else {
			err = fmt.Errorf("failed to find employee by name: %w", err)
		}
	}
	s.record(opn, err)
	if err != nil {
		s.logFailure(ctx, log, "failed to find employee by name", err)
		return models.Employee{}, err
	}

	return employee, nil
}

// FindAllPaged returns one page of employees. A page past the end is empty, never nil.
func (s *Staff) FindAllPaged(ctx context.Context, page models.PageRequest) ([]models.Employee, error) {
	const opn = "Employee.FindAllPaged"
	log := s.initLogger(opn)

	employees, err := s.findAllPaged(ctx, page)
	s.record(opn, err)
	if err != nil {
		s.logFailure(ctx, log, "failed to read employee page", err)
		return nil, err
	}

	log.DebugContext(ctx, "employee page read", "page", page.Page, "size", page.Size, "count", len(employees))
	return employees, nil
}

func (s *Staff) findAllPaged(ctx context.Context, page models.PageRequest) ([]models.Employee, error) {
	if page.Page < 0 {
		return nil, models.Invalid("page index must not be negative")
	}
	if page.Size < 1 {
		return nil, models.Invalid("page size must be at least 1")
	}
	for _, srt := range page.Sort {
		if _, ok := models.SortableFields[srt.Field]; !ok {
			return nil, models.Invalid(fmt.Sprintf("unsupported sort field: '%s'", srt.Field))
		}
	}

	if page.OutOfRange() {
		return []models.Employee{}, nil
	}

	employees, err := s.repo.FindPage(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to read employee page: %w", err)
	}
	if employees == nil {
		employees = []models.Employee{}
	}

	return employees, nil
}

// Delete removes the employee with the given identifier.
func (s *Staff) Delete(ctx context.Context, id uuid.UUID) error {
	const opn = "Employee.Delete"
	log := s.initLogger(opn)

	err := s.delete(ctx, id)
	s.record(opn, err)
	if err != nil {
		s.logFailure(ctx, log, "failed to delete employee", err)
		return err
	}

	log.InfoContext(ctx, "employee deleted", "id", id)
	return nil
}

func (s *Staff) delete(ctx context.Context, id uuid.UUID) error {
	employee, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, employee); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return notFoundByID(id).WithCause(err)
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	return nil
}

func (s *Staff) emailIsAvailable(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("failed to check email availability: %w", err)
	}

	s.metrics.EmailConflicts.Inc()
	return false, models.Conflict(msgEmailUnavailable)
}

func (s *Staff) record(opn string, err error) {
	s.metrics.Operations.WithLabelValues(opn, outcome(err)).Inc()
}

// logFailure logs domain failures as warnings and everything else as errors.
func (s *Staff) logFailure(ctx context.Context, log *slog.Logger, msg string, err error) {
	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		log.WarnContext(ctx, msg, sl.Err(err))
		return
	}
	log.ErrorContext(ctx, msg, sl.Err(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrConflict):
		return "conflict"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInvalid):
		return "invalid"
	default:
		return "error"
	}
}

func notFoundByID(id uuid.UUID) *models.Error {
	return models.NotFound(fmt.Sprintf("Employee not found. Id: %s", id))
}
