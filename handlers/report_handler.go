package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"hikvision-integration/config/middleware"
	"hikvision-integration/models"
	"hikvision-integration/pkg/worktime"
	"hikvision-integration/repository"
)

// CompanyLookup finds a configured company by id.
type CompanyLookup interface {
	ByID(id string) (*models.Company, error)
}

// StoreProvider resolves the attendance store a company is configured for.
type StoreProvider interface {
	For(company *models.Company) (repository.AttendanceStore, error)
}

type ReportHandler struct {
	companies CompanyLookup
	stores    StoreProvider
}

func NewReportHandler(companies CompanyLookup, stores StoreProvider) *ReportHandler {
	return &ReportHandler{companies: companies, stores: stores}
}

// GetEvents godoc
// @Summary List attendance records
// @Description Attendance records of one company, sorted by date then employee. Dates are DD.MM.YYYY.
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param company query string true "Company ID"
// @Param from query string false "First day, DD.MM.YYYY"
// @Param to query string false "Last day, DD.MM.YYYY"
// @Param employee query string false "Employee ID"
// @Success 200 {object} models.EventsResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.UnauthorizedErrorResponse
// @Failure 403 {object} models.ForbiddenErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/events [get]
func (h *ReportHandler) GetEvents(c *fiber.Ctx) error {
	company, store, ok := h.companyStore(c)
	if !ok {
		return nil
	}

	var err error
	filter := repository.RecordFilter{EmployeeID: strings.TrimSpace(c.Query("employee"))}
	if filter.From, err = dateQuery(c, "from"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid from date", Details: err.Error()})
	}
	if filter.To, err = dateQuery(c, "to"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid to date", Details: err.Error()})
	}

	records, err := store.Records(c.UserContext(), company, filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to read attendance records", Details: err.Error()})
	}

	rows := models.RecordsToRows(records, company.Location())
	if rows == nil {
		rows = []models.RecordRow{}
	}
	return c.Status(fiber.StatusOK).JSON(models.EventsResponse{Company: company.Name, Total: len(rows), Events: rows})
}

// GetEmployees godoc
// @Summary List employees
// @Description The employee directory kept next to a company's attendance records.
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param company query string true "Company ID"
// @Success 200 {object} models.EmployeesResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.UnauthorizedErrorResponse
// @Failure 403 {object} models.ForbiddenErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/users [get]
func (h *ReportHandler) GetEmployees(c *fiber.Ctx) error {
	company, store, ok := h.companyStore(c)
	if !ok {
		return nil
	}

	employees, err := store.Employees(c.UserContext(), company)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to read employees", Details: err.Error()})
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	return c.Status(fiber.StatusOK).JSON(models.EmployeesResponse{Company: company.Name, Total: len(employees), Employees: employees})
}

// companyStore resolves the company query parameter. When it reports false
// the error response has already been written.
func (h *ReportHandler) companyStore(c *fiber.Ctx) (*models.Company, repository.AttendanceStore, bool) {
	id := strings.TrimSpace(c.Query("company"))
	if id == "" {
		_ = c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "company query parameter is required"})
		return nil, nil, false
	}
	company, store, status, err := resolveCompany(h.companies, h.stores, id, middleware.ClaimsFrom(c))
	if err != nil {
		_ = c.Status(status).JSON(models.ErrorResponse{Error: err.Error()})
		return nil, nil, false
	}
	return company, store, true
}

// resolveCompany checks access and returns the company with its store, or
// the HTTP status that explains why not.
func resolveCompany(companies CompanyLookup, stores StoreProvider, id string, claims *models.Claims) (*models.Company, repository.AttendanceStore, int, error) {
	company, err := companies.ByID(id)
	if err != nil {
		return nil, nil, fiber.StatusNotFound, err
	}
	if claims != nil && !claims.CanAccess(company.ID) {
		return nil, nil, fiber.StatusForbidden, errors.New("no access to this company")
	}
	if stores == nil {
		return company, nil, 0, nil
	}
	store, err := stores.For(company)
	if err != nil {
		return nil, nil, fiber.StatusServiceUnavailable, err
	}
	return company, store, 0, nil
}

func dateQuery(c *fiber.Ctx, key string) (worktime.Date, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return worktime.Date{}, nil
	}
	return worktime.ParseDate(v)
}
