package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"hikvision-integration/models"
)

const (
	SchedulesSheet = "Schedules"
	ShiftsSheet    = "Shifts"
)

// ScheduleRepository writes the schedule and shift workbooks the dashboard
// uploads. Each upload replaces the previous workbook.
type ScheduleRepository struct {
	root string
}

func NewScheduleRepository(root string) *ScheduleRepository {
	return &ScheduleRepository{root: root}
}

func (r *ScheduleRepository) SchedulePath(company *models.Company) string {
	return filepath.Join(CompanyDir(r.root, company), company.Name+"Schedule.xlsx")
}

func (r *ScheduleRepository) ShiftPath(company *models.Company) string {
	return filepath.Join(CompanyDir(r.root, company), company.Name+"Shift.xlsx")
}

// Save writes both workbooks. A nil shifts slice produces an empty Shifts sheet.
func (r *ScheduleRepository) Save(ctx context.Context, company *models.Company, schedules, shifts []map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeObjectSheet(r.SchedulePath(company), SchedulesSheet, schedules); err != nil {
		return fmt.Errorf("write schedules of %s: %w", company.Name, err)
	}
	if err := writeObjectSheet(r.ShiftPath(company), ShiftsSheet, shifts); err != nil {
		return fmt.Errorf("write shifts of %s: %w", company.Name, err)
	}
	return nil
}

// objectHeader collects the keys of all objects. Keys first seen in an earlier
// object come first; keys within one object are sorted.
func objectHeader(objects []map[string]any) []string {
	seen := make(map[string]bool)
	var header []string
	for _, obj := range objects {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
			header = append(header, k)
		}
	}
	return header
}

func cellOf(v any) any {
	switch v := v.(type) {
	case nil:
		return ""
	case string, bool, float64, int, int64:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

func writeObjectSheet(path, sheet string, objects []map[string]any) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := objectHeader(objects)
	if len(header) > 0 {
		row := make([]any, len(header))
		for i, h := range header {
			row[i] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
			return err
		}
	}
	for i, obj := range objects {
		row := make([]any, len(header))
		for j, h := range header {
			row[j] = cellOf(obj[h])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return writeFileAtomic(path, func(out *os.File) error {
		_, err := f.WriteTo(out)
		return err
	})
}
