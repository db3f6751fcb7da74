package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps employees in process memory. Insertion order is kept so unsorted
// pages are stable, mirroring the created_at ordering of the Postgres gateway.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]models.Employee
	order   []uuid.UUID
}

func NewMemoryEmployeeRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[uuid.UUID]models.Employee)}
}

// Ping reports the store as always reachable.
func (m *MemoryRepository) Ping(_ context.Context) error {
	return nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	employee, ok := m.records[id]
	if !ok {
		return models.Employee{}, ErrEmployeeNotFound
	}

	return employee, nil
}

func (m *MemoryRepository) FindByEmail(_ context.Context, email string) (models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		if m.records[id].Email == email {
			return m.records[id], nil
		}
	}

	return models.Employee{}, ErrEmployeeNotFound
}

func (m *MemoryRepository) FindByFullName(_ context.Context, firstName, lastName string) (models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		employee := m.records[id]
		if employee.FirstName == firstName && employee.LastName == lastName {
			return employee, nil
		}
	}

	return models.Employee{}, ErrEmployeeNotFound
}

func (m *MemoryRepository) FindPage(_ context.Context, page models.PageRequest) ([]models.Employee, error) {
	for _, srt := range page.Sort {
		if _, ok := sortColumns[srt.Field]; !ok {
			return nil, fmt.Errorf("unsupported sort field '%s'", srt.Field)
		}
	}

	m.mu.RLock()
	all := make([]models.Employee, 0, len(m.order))
	for _, id := range m.order {
		all = append(all, m.records[id])
	}
	m.mu.RUnlock()

	if len(page.Sort) > 0 {
		slices.SortStableFunc(all, func(a, b models.Employee) int {
			for _, srt := range page.Sort {
				c := cmp.Compare(sortKey(a, srt.Field), sortKey(b, srt.Field))
				if srt.Direction == models.Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	start := page.Offset()
	if page.Size <= 0 || start < 0 || start >= len(all) {
		return []models.Employee{}, nil
	}
	end := min(start+page.Size, len(all))

	return all[start:end], nil
}

func (m *MemoryRepository) Insert(_ context.Context, employee models.Employee) (models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emailTakenLocked(employee.Email, uuid.Nil) {
		return models.Employee{}, fmt.Errorf("failed to save employee: %w", ErrEmailTaken)
	}

	employee.ID = uuid.New()
	m.records[employee.ID] = employee
	m.order = append(m.order, employee.ID)

	return employee, nil
}

func (m *MemoryRepository) UpdateAndFlush(_ context.Context, employee models.Employee) (models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[employee.ID]; !ok {
		return models.Employee{}, fmt.Errorf("failed to update employee data: %w", ErrEmployeeNotFound)
	}
	if m.emailTakenLocked(employee.Email, employee.ID) {
		return models.Employee{}, fmt.Errorf("failed to update employee data: %w", ErrEmailTaken)
	}

	m.records[employee.ID] = employee

	return employee, nil
}

func (m *MemoryRepository) Delete(_ context.Context, employee models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[employee.ID]; !ok {
		return fmt.Errorf("failed to delete employee '%s': %w", employee.ID, ErrEmployeeNotFound)
	}

	delete(m.records, employee.ID)
	m.order = slices.DeleteFunc(m.order, func(id uuid.UUID) bool { return id == employee.ID })

	return nil
}

func (m *MemoryRepository) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[uuid.UUID]models.Employee)
	m.order = nil

	return nil
}

// emailTakenLocked must be called with mu held.
func (m *MemoryRepository) emailTakenLocked(email string, owner uuid.UUID) bool {
	for id, employee := range m.records {
		if id != owner && employee.Email == email {
			return true
		}
	}
	return false
}

func sortKey(employee models.Employee, field string) string {
	switch field {
	case "id":
		return employee.ID.String()
	case "firstName":
		return employee.FirstName
	case "lastName":
		return employee.LastName
	case "email":
		return employee.Email
	case "cellphone":
		return employee.Cellphone
	default:
		return ""
	}
}
