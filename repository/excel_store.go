package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"hikvision-integration/models"
)

const (
	EventsSheet    = "Events"
	EmployeesSheet = "Users"
)

var employeeColumns = []string{"id", "name"}

// excelCodec keeps each company in one workbook <root>/<name>/<name>.xlsx with
// an Events sheet and a Users sheet. Columns are located by header name.
type excelCodec struct {
	root string
}

// NewExcelStore returns a store writing workbooks under root.
func NewExcelStore(root string) AttendanceStore {
	return newFileStore(excelCodec{root: root})
}

func (c excelCodec) unit(company *models.Company) string {
	return c.path(company)
}

func (c excelCodec) path(company *models.Company) string {
	return filepath.Join(CompanyDir(c.root, company), company.Name+".xlsx")
}

// sheets returns both sheets as raw rows, header included. Missing workbooks
// and missing sheets come back empty.
func (c excelCodec) sheets(company *models.Company) (events, users [][]string, err error) {
	f, err := excelize.OpenFile(c.path(company))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	read := func(sheet string) ([][]string, error) {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
			return nil, nil
		}
		return f.GetRows(sheet)
	}
	if events, err = read(EventsSheet); err != nil {
		return nil, nil, fmt.Errorf("read %s sheet: %w", EventsSheet, err)
	}
	if users, err = read(EmployeesSheet); err != nil {
		return nil, nil, fmt.Errorf("read %s sheet: %w", EmployeesSheet, err)
	}
	return events, users, nil
}

func (c excelCodec) readRecords(company *models.Company) ([]models.RecordRow, error) {
	events, _, err := c.sheets(company)
	if err != nil {
		return nil, err
	}
	return decodeRecordRows(events), nil
}

func (c excelCodec) readEmployees(company *models.Company) ([]models.Employee, error) {
	_, users, err := c.sheets(company)
	if err != nil {
		return nil, err
	}
	return decodeEmployeeRows(users), nil
}

func (c excelCodec) writeRecords(company *models.Company, rows []models.RecordRow) error {
	_, users, err := c.sheets(company)
	if err != nil {
		return err
	}
	return c.save(company, encodeRecordRows(rows), users)
}

func (c excelCodec) writeEmployees(company *models.Company, employees []models.Employee) error {
	events, _, err := c.sheets(company)
	if err != nil {
		return err
	}
	return c.save(company, events, encodeEmployeeRows(employees))
}

// save rebuilds the workbook from both sheets and swaps it into place.
func (c excelCodec) save(company *models.Company, events, users [][]string) error {
	if len(events) == 0 {
		events = [][]string{models.RecordColumns}
	}
	if len(users) == 0 {
		users = [][]string{employeeColumns}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", EventsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(EmployeesSheet); err != nil {
		return err
	}
	if err := writeSheetRows(f, EventsSheet, events); err != nil {
		return err
	}
	if err := writeSheetRows(f, EmployeesSheet, users); err != nil {
		return err
	}
	return writeFileAtomic(c.path(company), func(out *os.File) error {
		_, err := f.WriteTo(out)
		return err
	})
}

func writeSheetRows(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// columnIndex maps lower-cased header names to column positions.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func cellValue(row []string, idx map[string]int, name string) string {
	i, ok := idx[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func decodeRecordRows(rows [][]string) []models.RecordRow {
	if len(rows) < 2 {
		return nil
	}
	idx := columnIndex(rows[0])
	out := make([]models.RecordRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		id := cellValue(row, idx, "id")
		if id == "" {
			continue
		}
		pause, _ := strconv.Atoi(cellValue(row, idx, "pause"))
		out = append(out, models.RecordRow{
			ID:            id,
			UserName:      cellValue(row, idx, "userName"),
			EventDate:     cellValue(row, idx, "eventDate"),
			StartWorkTime: cellValue(row, idx, "startWorkTime"),
			EndWorkTime:   cellValue(row, idx, "endWorkTime"),
			Status:        cellValue(row, idx, "status"),
			Pause:         pause,
			Duration:      cellValue(row, idx, "duration"),
		})
	}
	return out
}

func encodeRecordRows(rows []models.RecordRow) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, models.RecordColumns)
	for _, r := range rows {
		out = append(out, []string{
			r.ID, r.UserName, r.EventDate, r.StartWorkTime, r.EndWorkTime,
			r.Status, strconv.Itoa(r.Pause), r.Duration,
		})
	}
	return out
}

func decodeEmployeeRows(rows [][]string) []models.Employee {
	if len(rows) < 2 {
		return nil
	}
	idx := columnIndex(rows[0])
	out := make([]models.Employee, 0, len(rows)-1)
	for _, row := range rows[1:] {
		id := cellValue(row, idx, "id")
		if id == "" {
			continue
		}
		out = append(out, models.Employee{ID: id, Name: cellValue(row, idx, "name")})
	}
	return out
}

func encodeEmployeeRows(employees []models.Employee) [][]string {
	out := make([][]string, 0, len(employees)+1)
	out = append(out, employeeColumns)
	for _, e := range employees {
		out = append(out, []string{e.ID, e.Name})
	}
	return out
}
