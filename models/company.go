package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hikvision-integration/pkg/worktime"
)

const (
	StorageJSON  = "json"
	StorageExcel = "excel"
	StorageMongo = "mongo"

	DefaultTimezone    = "Asia/Bishkek"
	DefaultClosingTime = "18:00"
)

// Company is one tenant: a camera at a fixed address plus its backend settings.
// Keys follow the companies.json format used by existing deployments.
type Company struct {
	ID                  string            `json:"id" yaml:"id" validate:"required"`
	Name                string            `json:"name" yaml:"name" validate:"required,excludesall=/\\"`
	IPAddress           string            `json:"ipAddress" yaml:"ipAddress" validate:"required,ip|hostname"`
	UserWithBitrix      bool              `json:"userWithBitrix" yaml:"userWithBitrix"`
	B24WebhookURL       string            `json:"b24WebhookUrl" yaml:"b24WebhookUrl" validate:"required_if=UserWithBitrix true,omitempty,url"`
	AutoWorkdayClosing  bool              `json:"autoWorkdayClosing" yaml:"autoWorkdayClosing"`
	ClosingScheduleTime string            `json:"closingScheduleTime" yaml:"closingScheduleTime" validate:"required_if=AutoWorkdayClosing true,omitempty,schedule"`
	SetClosingTime      string            `json:"setClosingTime" yaml:"setClosingTime" validate:"omitempty,hhmm"`
	MessageToTelegram   bool              `json:"messageToTelegram" yaml:"messageToTelegram"`
	TelegramBotToken    string            `json:"telegramBotToken" yaml:"telegramBotToken" validate:"required_if=MessageToTelegram true"`
	FieldTelegramID     string            `json:"fieldTelegramID" yaml:"fieldTelegramID"`
	FaceAuthEventCode   string            `json:"authViaFaceEventCode" yaml:"authViaFaceEventCode" validate:"required,numeric"`
	Storage             string            `json:"storage" yaml:"storage" validate:"omitempty,oneof=json excel mongo"`
	Timezone            string            `json:"timezone" yaml:"timezone" validate:"omitempty,timezone"`
	SupportContact      string            `json:"supportContact" yaml:"supportContact"`
	Recipients          map[string]string `json:"recipients" yaml:"recipients"`

	loc      *time.Location
	cutoff   worktime.Clock
	faceCode int
}

// Normalize fills defaults and parses the derived settings. It must run once
// before the company is handed to any component.
func (c *Company) Normalize() error {
	c.ID = strings.TrimSpace(c.ID)
	c.IPAddress = strings.TrimSpace(c.IPAddress)
	if c.Storage == "" {
		c.Storage = StorageJSON
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.SetClosingTime == "" {
		c.SetClosingTime = DefaultClosingTime
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("company %s: timezone: %w", c.Name, err)
	}
	cutoff, err := worktime.ParseClock(c.SetClosingTime)
	if err != nil {
		return fmt.Errorf("company %s: closing time: %w", c.Name, err)
	}
	code, err := strconv.Atoi(strings.TrimSpace(c.FaceAuthEventCode))
	if err != nil {
		return fmt.Errorf("company %s: face auth event code: %w", c.Name, err)
	}
	c.loc, c.cutoff, c.faceCode = loc, cutoff, code
	return nil
}

// Location is the company's local timezone; UTC until Normalize has run.
func (c *Company) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

func (c *Company) Cutoff() worktime.Clock {
	return c.cutoff
}

func (c *Company) FaceAuthCode() int {
	return c.faceCode
}

// Recipient looks up a locally configured chat id for the employee.
func (c *Company) Recipient(employeeID string) string {
	if c.Recipients == nil {
		return ""
	}
	return c.Recipients[employeeID]
}
