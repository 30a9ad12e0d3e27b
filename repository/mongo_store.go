package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hikvision-integration/models"
	"hikvision-integration/pkg/worktime"
)

const (
	AttendanceCollection = "attendance_records"
	EmployeeCollection   = "employees"
)

// attendanceDoc is the bson shape of a record. Date keeps the DD.MM.YYYY form
// so documents read the same as the file stores.
type attendanceDoc struct {
	CompanyID    string     `bson:"company_id"`
	EmployeeID   string     `bson:"employee_id"`
	EmployeeName string     `bson:"employee_name"`
	Date         string     `bson:"date"`
	Start        time.Time  `bson:"start"`
	End          *time.Time `bson:"end,omitempty"`
	Status       string     `bson:"status"`
	PauseMinutes int        `bson:"pause"`
	Duration     string     `bson:"duration"`
}

type employeeDoc struct {
	CompanyID string `bson:"company_id"`
	ID        string `bson:"employee_id"`
	Name      string `bson:"name"`
}

func toAttendanceDoc(companyID string, r models.AttendanceRecord) attendanceDoc {
	doc := attendanceDoc{
		CompanyID:    companyID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		Date:         r.Date.String(),
		Start:        r.Start,
		Status:       string(r.Status),
		PauseMinutes: r.PauseMinutes,
		Duration:     r.Duration,
	}
	if !r.End.IsZero() {
		end := r.End
		doc.End = &end
	}
	return doc
}

func (d attendanceDoc) record(loc *time.Location) (models.AttendanceRecord, error) {
	date, err := worktime.ParseDate(d.Date)
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("record %s: %w", d.EmployeeID, err)
	}
	rec := models.AttendanceRecord{
		EmployeeID:   d.EmployeeID,
		EmployeeName: d.EmployeeName,
		Date:         date,
		PauseMinutes: d.PauseMinutes,
		Duration:     d.Duration,
		Status:       models.RecordOpen,
	}
	if !d.Start.IsZero() {
		rec.Start = d.Start.In(loc)
	}
	if d.End != nil && !d.End.IsZero() {
		rec.End = d.End.In(loc)
		rec.Status = models.RecordClosed
	}
	return rec, nil
}

func recordKey(companyID, employeeID string, date worktime.Date) bson.M {
	return bson.M{"company_id": companyID, "employee_id": employeeID, "date": date.String()}
}

// recordsQuery turns a filter into a Mongo query. Dates are stored as text,
// so range bounds are applied after decoding.
func recordsQuery(companyID string, filter RecordFilter) bson.M {
	q := bson.M{"company_id": companyID}
	if filter.EmployeeID != "" {
		q["employee_id"] = filter.EmployeeID
	}
	return q
}

// MongoStore keeps records and the directory in two collections, scoped by
// company id.
type MongoStore struct {
	records   *mongo.Collection
	employees *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		records:   db.Collection(AttendanceCollection),
		employees: db.Collection(EmployeeCollection),
	}
}

// EnsureIndexes creates the uniqueness constraints the store relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.records.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "employee_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create index %s: %w", AttendanceCollection, err)
	}
	_, err = s.employees.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "employee_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create index %s: %w", EmployeeCollection, err)
	}
	return nil
}

func (s *MongoStore) findRecord(ctx context.Context, company *models.Company, employeeID string, date worktime.Date) (*models.AttendanceRecord, error) {
	var doc attendanceDoc
	err := s.records.FindOne(ctx, recordKey(company.ID, employeeID, date)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec, err := doc.record(company.Location())
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *MongoStore) saveRecord(ctx context.Context, company *models.Company, rec models.AttendanceRecord) error {
	_, err := s.records.ReplaceOne(ctx,
		recordKey(company.ID, rec.EmployeeID, rec.Date),
		toAttendanceDoc(company.ID, rec),
		options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) ApplyEvent(ctx context.Context, company *models.Company, entry models.AttendanceEntry) (bool, error) {
	outcome, err := s.Apply(ctx, company, entry, models.ActionToggle)
	if err != nil {
		return false, err
	}
	return outcome != models.OutcomeUnchanged, nil
}

func (s *MongoStore) Apply(ctx context.Context, company *models.Company, entry models.AttendanceEntry, action models.WorkdayAction) (models.ApplyOutcome, error) {
	if err := validateEntry(entry); err != nil {
		return models.OutcomeUnchanged, err
	}
	entry.At = entry.At.In(company.Location())

	existing, err := s.findRecord(ctx, company, entry.EmployeeID, worktime.DateOf(entry.At))
	if err != nil {
		return models.OutcomeUnchanged, fmt.Errorf("find record of %s: %w", entry.EmployeeID, err)
	}
	var set []models.AttendanceRecord
	if existing != nil {
		set = append(set, *existing)
	}
	set, outcome := applyAction(set, entry, action)
	if outcome == models.OutcomeUnchanged {
		return outcome, nil
	}
	if err := s.saveRecord(ctx, company, set[0]); err != nil {
		return models.OutcomeUnchanged, fmt.Errorf("save record of %s: %w", entry.EmployeeID, err)
	}
	if _, err := s.upsertEmployee(ctx, company, models.Employee{ID: entry.EmployeeID, Name: entry.EmployeeName}); err != nil {
		return outcome, fmt.Errorf("upsert employee %s: %w", entry.EmployeeID, err)
	}
	return outcome, nil
}

func (s *MongoStore) upsertEmployee(ctx context.Context, company *models.Company, e models.Employee) (bool, error) {
	res, err := s.employees.UpdateOne(ctx,
		bson.M{"company_id": company.ID, "employee_id": e.ID},
		bson.M{"$setOnInsert": employeeDoc{CompanyID: company.ID, ID: e.ID, Name: e.Name}},
		options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (s *MongoStore) SweepAutoClose(ctx context.Context, company *models.Company, now time.Time) (int, error) {
	open, err := s.decodeRecords(ctx, company, bson.M{"company_id": company.ID, "end": nil})
	if err != nil {
		return 0, err
	}
	now = now.In(company.Location())
	closed := 0
	for _, rec := range open {
		if !rec.AutoClose(now, company.Cutoff()) {
			continue
		}
		if err := s.saveRecord(ctx, company, rec); err != nil {
			return closed, fmt.Errorf("close record %s %s: %w", rec.EmployeeID, rec.Date, err)
		}
		closed++
	}
	return closed, nil
}

func (s *MongoStore) decodeRecords(ctx context.Context, company *models.Company, query bson.M) ([]models.AttendanceRecord, error) {
	cursor, err := s.records.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []attendanceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	out := make([]models.AttendanceRecord, 0, len(docs))
	for _, d := range docs {
		rec, err := d.record(company.Location())
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *MongoStore) Records(ctx context.Context, company *models.Company, filter RecordFilter) ([]models.AttendanceRecord, error) {
	records, err := s.decodeRecords(ctx, company, recordsQuery(company.ID, filter))
	if err != nil {
		return nil, err
	}
	return filterRecords(records, filter), nil
}

func (s *MongoStore) Employees(ctx context.Context, company *models.Company) ([]models.Employee, error) {
	cursor, err := s.employees.Find(ctx, bson.M{"company_id": company.ID},
		options.Find().SetSort(bson.D{{Key: "employee_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find employees: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []employeeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Employee, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.Employee{ID: d.ID, Name: d.Name})
	}
	return out, nil
}

// ReplaceRecords validates the whole set before deleting anything; the unique
// index would otherwise fail the insert after the old records are gone.
func (s *MongoStore) ReplaceRecords(ctx context.Context, company *models.Company, records []models.AttendanceRecord) error {
	if err := CheckUniqueRecords(records); err != nil {
		return err
	}
	if _, err := s.records.DeleteMany(ctx, bson.M{"company_id": company.ID}); err != nil {
		return fmt.Errorf("delete records of %s: %w", company.Name, err)
	}
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(records))
	for _, r := range records {
		docs = append(docs, toAttendanceDoc(company.ID, r))
	}
	if _, err := s.records.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert records of %s: %w", company.Name, err)
	}
	return nil
}

func (s *MongoStore) UpsertEmployees(ctx context.Context, company *models.Company, employees []models.Employee) (int, error) {
	added := 0
	for _, e := range employees {
		ok, err := s.upsertEmployee(ctx, company, e)
		if err != nil {
			return added, fmt.Errorf("upsert employee %s: %w", e.ID, err)
		}
		if ok {
			added++
		}
	}
	return added, nil
}
