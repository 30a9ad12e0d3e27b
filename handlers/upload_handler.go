package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"hikvision-integration/config/middleware"
	"hikvision-integration/models"
	util "hikvision-integration/pkg/utils"
	"hikvision-integration/repository"
)

// ScheduleSaver stores uploaded schedule and shift tables.
type ScheduleSaver interface {
	Save(ctx context.Context, company *models.Company, schedules, shifts []map[string]any) error
}

type UploadHandler struct {
	companies CompanyLookup
	stores    StoreProvider
	schedules ScheduleSaver
	log       *slog.Logger
}

func NewUploadHandler(companies CompanyLookup, stores StoreProvider, schedules ScheduleSaver, log *slog.Logger) *UploadHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UploadHandler{companies: companies, stores: stores, schedules: schedules, log: log}
}

// UpdateSchedules godoc
// @Summary Upload schedules and shifts
// @Description Replaces the company's schedule and shift workbooks with the uploaded rows (admin only).
// @Tags Uploads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ScheduleUploadPayload true "Schedules and shifts"
// @Success 200 {object} models.UploadSuccessResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 401 {object} models.UnauthorizedErrorResponse
// @Failure 403 {object} models.ForbiddenErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /data-update [post]
func (h *UploadHandler) UpdateSchedules(c *fiber.Ctx) error {
	var payload models.ScheduleUploadPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid request body", Details: err.Error()})
	}
	if errs := util.ValidateStruct(&payload); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse{Error: "Validation failed", Errors: errs})
	}

	company, _, status, err := resolveCompany(h.companies, nil, string(payload.CompanyID), middleware.ClaimsFrom(c))
	if err != nil {
		return c.Status(status).JSON(models.ErrorResponse{Error: err.Error()})
	}

	if err := h.schedules.Save(c.UserContext(), company, payload.Schedules, payload.Shifts); err != nil {
		h.log.Error("schedule upload failed", "company", company.Name, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to save schedules", Details: err.Error()})
	}

	h.log.Info("schedules uploaded", "company", company.Name, "schedules", len(payload.Schedules), "shifts", len(payload.Shifts))
	return c.Status(fiber.StatusOK).JSON(models.UploadSuccessResponse{Success: true, Message: "schedules and shifts saved"})
}

// ReplaceEvents godoc
// @Summary Upload attendance records
// @Description Replaces all of the company's attendance records with the uploaded rows (admin only).
// @Tags Uploads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.EventsUploadPayload true "Attendance records"
// @Success 200 {object} models.UploadSuccessResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 401 {object} models.UnauthorizedErrorResponse
// @Failure 403 {object} models.ForbiddenErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /events-only-update [post]
func (h *UploadHandler) ReplaceEvents(c *fiber.Ctx) error {
	var payload models.EventsUploadPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid request body", Details: err.Error()})
	}
	if errs := util.ValidateStruct(&payload); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse{Error: "Validation failed", Errors: errs})
	}

	company, store, status, err := resolveCompany(h.companies, h.stores, string(payload.CompanyID), middleware.ClaimsFrom(c))
	if err != nil {
		return c.Status(status).JSON(models.ErrorResponse{Error: err.Error()})
	}

	records, err := models.RowsToRecords(payload.Events, company.Location())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid event row", Details: err.Error()})
	}
	if err := repository.CheckUniqueRecords(records); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "duplicate event row", Details: err.Error()})
	}
	if err := store.ReplaceRecords(c.UserContext(), company, records); err != nil {
		h.log.Error("events upload failed", "company", company.Name, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to save events", Details: err.Error()})
	}

	h.log.Info("events replaced", "company", company.Name, "records", len(records))
	return c.Status(fiber.StatusOK).JSON(models.UploadSuccessResponse{Success: true, Message: "events saved"})
}
