package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hikvision-integration/models"
	"hikvision-integration/repository"
	"hikvision-integration/service/workday"
)

const (
	AckSkip      = "skip"
	AckDuplicate = "duplicate"
	AckProcessed = "processed"
)

// EventProcessor runs one access event through the workday engine.
type EventProcessor interface {
	HandleAccessEvent(ctx context.Context, ev models.AccessEvent) workday.EventResult
}

type HikvisionHandler struct {
	engine EventProcessor
	dedup  repository.Deduplicator
	log    *slog.Logger
}

// NewHikvisionHandler wires the webhook. dedup may be nil.
func NewHikvisionHandler(engine EventProcessor, dedup repository.Deduplicator, log *slog.Logger) *HikvisionHandler {
	if log == nil {
		log = slog.Default()
	}
	return &HikvisionHandler{engine: engine, dedup: dedup, log: log}
}

// HandleEvent godoc
// @Summary Camera access event
// @Description Receives a HikVision access-controller event and opens or closes the employee's workday. Always answers 200 so the camera does not retry.
// @Tags Webhook
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param event_log formData string true "Event document as a JSON string"
// @Success 200 {object} models.EventAck "Event acknowledged"
// @Router /handle-event [post]
func (h *HikvisionHandler) HandleEvent(c *fiber.Ctx) error {
	ack := models.EventAck{RequestID: uuid.NewString()}
	log := h.log.With("request_id", ack.RequestID)

	raw := eventLogFrom(c)
	if raw == "" {
		log.Debug("request without event_log")
		ack.Status, ack.Message = AckSkip, "no event_log"
		return c.Status(fiber.StatusOK).JSON(ack)
	}

	ev, err := models.ParseEventLog(raw)
	if err != nil {
		log.Warn("malformed event", "error", err)
		ack.Status, ack.Message = AckSkip, err.Error()
		return c.Status(fiber.StatusOK).JSON(ack)
	}

	ctx := c.UserContext()
	if h.dedup != nil {
		fresh, err := h.dedup.Claim(ctx, ev.DedupKey())
		switch {
		case err != nil:
			log.Warn("duplicate check unavailable", "error", err)
		case !fresh:
			log.Info("duplicate event dropped", "device", ev.DeviceAddress, "employee_id", ev.EmployeeID, "date_time", ev.DateTime)
			ack.Status = AckDuplicate
			return c.Status(fiber.StatusOK).JSON(ack)
		}
	}

	res := h.engine.HandleAccessEvent(ctx, ev)
	ack.Status = AckProcessed
	ack.Company = res.Company
	ack.Result = string(res.Status)
	ack.Message = res.Reason
	if res.Transition != nil && res.Transition.Success {
		ack.Message = res.Transition.Message
	}
	return c.Status(fiber.StatusOK).JSON(ack)
}

// eventLogFrom reads event_log from a form or a JSON body. In JSON bodies the
// value may be the usual embedded string or the event object itself.
func eventLogFrom(c *fiber.Ctx) string {
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		return strings.TrimSpace(c.FormValue("event_log"))
	}
	var body struct {
		EventLog json.RawMessage `json:"event_log"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return ""
	}
	v := bytes.TrimSpace(body.EventLog)
	if len(v) == 0 || string(v) == "null" {
		return ""
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return string(v)
}
