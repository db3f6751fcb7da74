package server_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/UnknownOlympus/themis/internal/server"
	mocks "github.com/UnknownOlympus/themis/mock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newHandlerMux(t *testing.T) (*http.ServeMux, *mocks.EmployeeService) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	service := mocks.NewEmployeeService(t)
	handler := server.NewEmployeeHandler(logger, service, newTranslator(server.DefaultStatusPolicy()),
		server.Paging{DefaultSize: 20, MaxSize: 100})

	mux := http.NewServeMux()
	handler.Register(mux)
	return mux, service
}

func serve(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestCreateEmployeeHandler(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		mux, service := newHandlerMux(t)
		id := uuid.MustParse("7f1c2a8e-4a0e-4a43-9d2b-0e6f7f9c1a11")
		service.On("Create", mock.Anything, models.NewEmployee("Ada", "Lovelace", "ada@example.com", "555")).
			Return(models.Employee{ID: id, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
				Cellphone: "555"}, nil).Once()

		rec := serve(mux, http.MethodPost, "/api/v1/employees",
			`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","cellphone":"555"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/api/v1/employees/"+id.String(), rec.Header().Get("Location"))
		assert.JSONEq(t, `{"id":"7f1c2a8e-4a0e-4a43-9d2b-0e6f7f9c1a11","firstName":"Ada","lastName":"Lovelace",
			"email":"ada@example.com","cellphone":"555"}`, rec.Body.String())
	})

	t.Run("conflict", func(t *testing.T) {
		t.Parallel()
		mux, service := newHandlerMux(t)
		service.On("Create", mock.Anything, mock.Anything).
			Return(models.Employee{}, models.Conflict("Email unavailable!")).Once()

		rec := serve(mux, http.MethodPost, "/api/v1/employees",
			`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","cellphone":"555"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"title":"Bad Request","message":"Email unavailable!","status":400,
			"occurredAt":"2025-05-06T07:08:09Z"}`, rec.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		mux, _ := newHandlerMux(t)

		rec := serve(mux, http.MethodPost, "/api/v1/employees", `{"firstName":`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "malformed employee payload")
	})
}

func TestListEmployeesHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    string
		expected models.PageRequest
	}{
		{name: "defaults", query: "", expected: models.PageRequest{Page: 0, Size: 20}},
		{name: "explicit", query: "?page=2&size=5", expected: models.PageRequest{Page: 2, Size: 5}},
		{name: "size capped", query: "?size=1000", expected: models.PageRequest{Page: 0, Size: 100}},
		{name: "garbage falls back", query: "?page=-3&size=abc", expected: models.PageRequest{Page: 0, Size: 20}},
		{
			name:  "repeated sort",
			query: "?sort=lastName,desc&sort=firstName",
			expected: models.PageRequest{Page: 0, Size: 20, Sort: []models.Sort{
				{Field: "lastName", Direction: models.Desc},
				{Field: "firstName", Direction: models.Asc},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mux, service := newHandlerMux(t)
			service.On("FindAllPaged", mock.Anything, tt.expected).Return([]models.Employee{}, nil).Once()

			rec := serve(mux, http.MethodGet, "/api/v1/employees"+tt.query, "")

			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `[]`, rec.Body.String())
		})
	}
}

func TestListEmployeesHandler_UnknownSortField(t *testing.T) {
	t.Parallel()
	mux, _ := newHandlerMux(t)

	rec := serve(mux, http.MethodGet, "/api/v1/employees?sort=salary,asc", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported sort field: 'salary'")
}

func TestFindEmployeeHandler(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		mux, service := newHandlerMux(t)
		id := uuid.New()
		service.On("FindByID", mock.Anything, id).
			Return(models.Employee{}, models.NotFound("Employee not found. Id: "+id.String())).Once()

		rec := serve(mux, http.MethodGet, "/api/v1/employees/"+id.String(), "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Employee not found. Id: "+id.String())
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()
		mux, _ := newHandlerMux(t)

		rec := serve(mux, http.MethodGet, "/api/v1/employees/42", "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "malformed employee id: '42'")
	})

	t.Run("storage fault", func(t *testing.T) {
		t.Parallel()
		mux, service := newHandlerMux(t)
		service.On("FindByID", mock.Anything, mock.Anything).Return(models.Employee{}, assert.AnError).Once()

		rec := serve(mux, http.MethodGet, "/api/v1/employees/"+uuid.NewString(), "")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `"title":"Internal Server Error"`)
		assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	})
}

func TestSearchEmployeeHandler(t *testing.T) {
	t.Parallel()

	mux, service := newHandlerMux(t)
	service.On("FindByFullName", mock.Anything, "Ada", "Lovelace").
		Return(models.NewEmployee("Ada", "Lovelace", "ada@example.com", "555"), nil).Once()

	rec := serve(mux, http.MethodGet, "/api/v1/employees/search?firstName=Ada&lastName=Lovelace", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ada@example.com"`)

	rec = serve(mux, http.MethodGet, "/api/v1/employees/search?firstName=Ada", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateEmployeeHandler(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	body := `{"id":"` + id.String() + `","firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","cellphone":"1"}`
	expected := models.Employee{ID: id, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Cellphone: "1"}

	t.Run("no content", func(t *testing.T) {
		t.Parallel()
		mux, service := newHandlerMux(t)
		service.On("Update", mock.Anything, expected).Return(expected, nil).Once()

		rec := serve(mux, http.MethodPut, "/api/v1/employees", body)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		mux, service := newHandlerMux(t)
		service.On("Update", mock.Anything, expected).
			Return(models.Employee{}, models.NotFound("Employee not found. Id: "+id.String())).Once()

		rec := serve(mux, http.MethodPut, "/api/v1/employees", body)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteEmployeeHandler(t *testing.T) {
	t.Parallel()

	mux, service := newHandlerMux(t)
	id := uuid.New()
	service.On("Delete", mock.Anything, id).Return(nil).Once()
	service.On("Delete", mock.Anything, mock.Anything).
		Return(models.NotFound("Employee not found")).Once()

	rec := serve(mux, http.MethodDelete, "/api/v1/employees/"+id.String(), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(mux, http.MethodDelete, "/api/v1/employees/"+uuid.NewString(), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
