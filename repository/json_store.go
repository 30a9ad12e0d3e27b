package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"hikvision-integration/models"
)

const (
	EventsFileName    = "events.json"
	EmployeesFileName = "users.json"
)

// jsonCodec keeps each company in <root>/<company name>/{events,users}.json,
// pretty-printed with two-space indentation.
type jsonCodec struct {
	root string
}

// NewJSONStore returns a store writing JSON documents under root.
func NewJSONStore(root string) AttendanceStore {
	return newFileStore(jsonCodec{root: root})
}

func (c jsonCodec) unit(company *models.Company) string {
	return CompanyDir(c.root, company)
}

func (c jsonCodec) readRecords(company *models.Company) ([]models.RecordRow, error) {
	var rows []models.RecordRow
	if err := readJSONFile(filepath.Join(c.unit(company), EventsFileName), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c jsonCodec) writeRecords(company *models.Company, rows []models.RecordRow) error {
	if rows == nil {
		rows = []models.RecordRow{}
	}
	return writeJSONFile(filepath.Join(c.unit(company), EventsFileName), rows)
}

func (c jsonCodec) readEmployees(company *models.Company) ([]models.Employee, error) {
	var employees []models.Employee
	if err := readJSONFile(filepath.Join(c.unit(company), EmployeesFileName), &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

func (c jsonCodec) writeEmployees(company *models.Company, employees []models.Employee) error {
	if employees == nil {
		employees = []models.Employee{}
	}
	return writeJSONFile(filepath.Join(c.unit(company), EmployeesFileName), employees)
}

// readJSONFile leaves v untouched when the file is missing or blank.
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}
