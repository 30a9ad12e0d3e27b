package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"hikvision-integration/models"
)

// tableCodec reads and writes the two tables of a file-backed store. Codecs
// are not safe for concurrent use on the same company; fileStore serializes
// them.
type tableCodec interface {
	// unit names the file set guarded by one lock.
	unit(company *models.Company) string
	readRecords(company *models.Company) ([]models.RecordRow, error)
	writeRecords(company *models.Company, rows []models.RecordRow) error
	readEmployees(company *models.Company) ([]models.Employee, error)
	writeEmployees(company *models.Company, employees []models.Employee) error
}

// fileStore implements AttendanceStore over a tableCodec. Read-modify-write
// cycles on one company's files are serialized inside the process; other
// processes writing the same files race last-write-wins.
type fileStore struct {
	codec tableCodec
	log   *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newFileStore(codec tableCodec) *fileStore {
	return &fileStore{codec: codec, log: slog.Default(), locks: make(map[string]*sync.Mutex)}
}

func (s *fileStore) lock(company *models.Company) func() {
	key := s.codec.unit(company)
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// recordSet is a company's stored records. Rows that do not parse are kept
// verbatim in bad and written back untouched, so one broken row neither
// blocks the company nor gets lost on the next save.
type recordSet struct {
	records []models.AttendanceRecord
	bad     []models.RecordRow
}

func (s *fileStore) loadRecords(company *models.Company) (recordSet, error) {
	rows, err := s.codec.readRecords(company)
	if err != nil {
		return recordSet{}, fmt.Errorf("read records of %s: %w", company.Name, err)
	}
	set := recordSet{records: make([]models.AttendanceRecord, 0, len(rows))}
	for _, row := range rows {
		rec, err := row.ToRecord(company.Location())
		if err != nil {
			s.log.Warn("skipping unreadable record row", "company", company.Name, "error", err)
			set.bad = append(set.bad, row)
			continue
		}
		set.records = append(set.records, rec)
	}
	return set, nil
}

func (s *fileStore) saveRecords(company *models.Company, set recordSet) error {
	rows := append(models.RecordsToRows(set.records, company.Location()), set.bad...)
	if err := s.codec.writeRecords(company, rows); err != nil {
		return fmt.Errorf("write records of %s: %w", company.Name, err)
	}
	return nil
}

func (s *fileStore) ApplyEvent(ctx context.Context, company *models.Company, entry models.AttendanceEntry) (bool, error) {
	outcome, err := s.Apply(ctx, company, entry, models.ActionToggle)
	if err != nil {
		return false, err
	}
	return outcome != models.OutcomeUnchanged, nil
}

func (s *fileStore) Apply(ctx context.Context, company *models.Company, entry models.AttendanceEntry, action models.WorkdayAction) (models.ApplyOutcome, error) {
	if err := validateEntry(entry); err != nil {
		return models.OutcomeUnchanged, err
	}
	if err := ctx.Err(); err != nil {
		return models.OutcomeUnchanged, err
	}
	entry.At = entry.At.In(company.Location())

	unlock := s.lock(company)
	defer unlock()

	set, err := s.loadRecords(company)
	if err != nil {
		return models.OutcomeUnchanged, err
	}
	var outcome models.ApplyOutcome
	set.records, outcome = applyAction(set.records, entry, action)
	if outcome == models.OutcomeUnchanged {
		return outcome, nil
	}
	if err := s.saveRecords(company, set); err != nil {
		return models.OutcomeUnchanged, err
	}

	// Records are already on disk; a directory failure is reported but not undone.
	employees, err := s.codec.readEmployees(company)
	if err != nil {
		return outcome, fmt.Errorf("read employees of %s: %w", company.Name, err)
	}
	employees, added := upsertEmployee(employees, entry.EmployeeID, entry.EmployeeName)
	if added {
		if err := s.codec.writeEmployees(company, employees); err != nil {
			return outcome, fmt.Errorf("write employees of %s: %w", company.Name, err)
		}
	}
	return outcome, nil
}

func (s *fileStore) SweepAutoClose(ctx context.Context, company *models.Company, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	unlock := s.lock(company)
	defer unlock()

	set, err := s.loadRecords(company)
	if err != nil {
		return 0, err
	}
	closed := sweepRecords(set.records, now.In(company.Location()), company.Cutoff())
	if closed == 0 {
		return 0, nil
	}
	if err := s.saveRecords(company, set); err != nil {
		return 0, err
	}
	return closed, nil
}

func (s *fileStore) Records(ctx context.Context, company *models.Company, filter RecordFilter) ([]models.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := s.lock(company)
	defer unlock()

	set, err := s.loadRecords(company)
	if err != nil {
		return nil, err
	}
	return filterRecords(set.records, filter), nil
}

func (s *fileStore) Employees(ctx context.Context, company *models.Company) ([]models.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := s.lock(company)
	defer unlock()

	employees, err := s.codec.readEmployees(company)
	if err != nil {
		return nil, fmt.Errorf("read employees of %s: %w", company.Name, err)
	}
	return employees, nil
}

func (s *fileStore) ReplaceRecords(ctx context.Context, company *models.Company, records []models.AttendanceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := CheckUniqueRecords(records); err != nil {
		return err
	}
	unlock := s.lock(company)
	defer unlock()
	return s.saveRecords(company, recordSet{records: records})
}

func (s *fileStore) UpsertEmployees(ctx context.Context, company *models.Company, employees []models.Employee) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	unlock := s.lock(company)
	defer unlock()

	dir, err := s.codec.readEmployees(company)
	if err != nil {
		return 0, fmt.Errorf("read employees of %s: %w", company.Name, err)
	}
	added := 0
	for _, e := range employees {
		var ok bool
		if dir, ok = upsertEmployee(dir, e.ID, e.Name); ok {
			added++
		}
	}
	if added == 0 {
		return 0, nil
	}
	if err := s.codec.writeEmployees(company, dir); err != nil {
		return 0, fmt.Errorf("write employees of %s: %w", company.Name, err)
	}
	return added, nil
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place, so readers never see a half-written file.
func writeFileAtomic(path string, write func(f *os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// CompanyDir is where a company's files live under the data root.
func CompanyDir(root string, company *models.Company) string {
	return filepath.Join(root, company.Name)
}
