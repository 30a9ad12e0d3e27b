package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hikvision-integration/models"
	"hikvision-integration/pkg/worktime"
)

func testCompany(t *testing.T, name, storage string) *models.Company {
	t.Helper()
	c := &models.Company{
		ID:                "1",
		Name:              name,
		IPAddress:         "10.0.0.5",
		FaceAuthEventCode: "75",
		Storage:           storage,
		SetClosingTime:    "18:00",
	}
	require.NoError(t, c.Normalize())
	return c
}

func ts(t *testing.T, c *models.Company, s string) time.Time {
	t.Helper()
	v, err := worktime.ParseTimestamp(s, c.Location())
	require.NoError(t, err)
	return v
}

func entry(t *testing.T, c *models.Company, id, name, at string) models.AttendanceEntry {
	return models.AttendanceEntry{EmployeeID: id, EmployeeName: name, At: ts(t, c, at)}
}

type storeCase struct {
	name    string
	storage string
	build   func(root string) AttendanceStore
}

var fileStoreCases = []storeCase{
	{name: "json", storage: models.StorageJSON, build: NewJSONStore},
	{name: "excel", storage: models.StorageExcel, build: NewExcelStore},
}

func TestFileStoreToggleSequence(t *testing.T) {
	for _, tc := range fileStoreCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := tc.build(t.TempDir())
			c := testCompany(t, "Jarvis", tc.storage)

			want := []models.ApplyOutcome{
				models.OutcomeCreated, models.OutcomeClosed, models.OutcomeResumed, models.OutcomeClosed,
			}
			times := []string{"05.03.2025 09:00:00", "05.03.2025 12:00:00", "05.03.2025 12:30:00", "05.03.2025 18:00:00"}
			for i, at := range times {
				got, err := store.Apply(ctx, c, entry(t, c, "42", "Jane", at), models.ActionToggle)
				require.NoError(t, err)
				assert.Equal(t, want[i], got, "event %d", i)
			}

			records, err := store.Records(ctx, c, RecordFilter{})
			require.NoError(t, err)
			require.Len(t, records, 1)
			rec := records[0]
			assert.Equal(t, models.RecordClosed, rec.Status)
			assert.Equal(t, 30, rec.PauseMinutes)
			assert.Equal(t, "9ч 0м", rec.Duration)
			assert.Equal(t, "05.03.2025 18:00:00", worktime.FormatTimestamp(rec.End, c.Location()))

			employees, err := store.Employees(ctx, c)
			require.NoError(t, err)
			assert.Equal(t, []models.Employee{{ID: "42", Name: "Jane"}}, employees)
		})
	}
}

func TestFileStoreExplicitActions(t *testing.T) {
	for _, tc := range fileStoreCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			root := t.TempDir()
			store := tc.build(root)
			c := testCompany(t, "Jarvis", tc.storage)

			got, err := store.Apply(ctx, c, entry(t, c, "42", "Jane", "05.03.2025 09:00:00"), models.ActionClose)
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeUnchanged, got)
			_, statErr := os.Stat(filepath.Join(root, "Jarvis"))
			assert.True(t, os.IsNotExist(statErr), "close without a record must not write")

			got, err = store.Apply(ctx, c, entry(t, c, "42", "Jane", "05.03.2025 09:00:00"), models.ActionOpen)
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeCreated, got)

			got, err = store.Apply(ctx, c, entry(t, c, "42", "Jane", "05.03.2025 09:05:00"), models.ActionOpen)
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeUnchanged, got)

			got, err = store.Apply(ctx, c, entry(t, c, "42", "Jane", "05.03.2025 13:00:00"), models.ActionClose)
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeClosed, got)

			got, err = store.Apply(ctx, c, entry(t, c, "42", "Jane", "05.03.2025 13:10:00"), models.ActionClose)
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeUnchanged, got)

			got, err = store.Apply(ctx, c, entry(t, c, "42", "Jane", "05.03.2025 14:00:00"), models.ActionOpen)
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeResumed, got)

			records, err := store.Records(ctx, c, RecordFilter{})
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.True(t, records[0].IsOpen())
			assert.Equal(t, 60, records[0].PauseMinutes)
		})
	}
}

func TestFileStoreOneRecordPerEmployeeDay(t *testing.T) {
	for _, tc := range fileStoreCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := tc.build(t.TempDir())
			c := testCompany(t, "Jarvis", tc.storage)

			for i := 0; i < 7; i++ {
				at := fmt.Sprintf("05.03.2025 %02d:00:00", 9+i)
				_, err := store.ApplyEvent(ctx, c, entry(t, c, "42", "Jane", at))
				require.NoError(t, err)
			}
			_, err := store.ApplyEvent(ctx, c, entry(t, c, "42", "Jane", "06.03.2025 09:00:00"))
			require.NoError(t, err)

			records, err := store.Records(ctx, c, RecordFilter{})
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "05.03.2025", records[0].Date.String())
			assert.Equal(t, "06.03.2025", records[1].Date.String())
			// seven toggles: open, close, resume, close, resume, close, resume
			assert.True(t, records[0].IsOpen())
			assert.Equal(t, 3*60, records[0].PauseMinutes)
			assert.True(t, records[1].IsOpen())
		})
	}
}

func TestFileStoreUsesCompanyDay(t *testing.T) {
	ctx := context.Background()
	store := NewJSONStore(t.TempDir())
	c := testCompany(t, "Jarvis", models.StorageJSON)

	// 20:30 UTC on the 4th is 02:30 on the 5th in Bishkek.
	at := time.Date(2025, 3, 4, 20, 30, 0, 0, time.UTC)
	_, err := store.ApplyEvent(ctx, c, models.AttendanceEntry{EmployeeID: "42", EmployeeName: "Jane", At: at})
	require.NoError(t, err)

	records, err := store.Records(ctx, c, RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "05.03.2025", records[0].Date.String())
	assert.Equal(t, "05.03.2025 02:30:00", worktime.FormatTimestamp(records[0].Start, c.Location()))
}

func TestFileStoreRejectsMissingEmployeeData(t *testing.T) {
	for _, tc := range fileStoreCases {
		t.Run(tc.name, func(t *testing.T) {
			store := tc.build(t.TempDir())
			c := testCompany(t, "Jarvis", tc.storage)

			ok, err := store.ApplyEvent(context.Background(), c, entry(t, c, "42", "", "05.03.2025 09:00:00"))
			assert.ErrorIs(t, err, ErrMissingEmployeeData)
			assert.False(t, ok)

			_, err = store.ApplyEvent(context.Background(), c, entry(t, c, " ", "Jane", "05.03.2025 09:00:00"))
			assert.ErrorIs(t, err, ErrMissingEmployeeData)
		})
	}
}

func TestFileStoreSweepAutoClose(t *testing.T) {
	for _, tc := range fileStoreCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := tc.build(t.TempDir())
			c := testCompany(t, "Jarvis", tc.storage)

			for _, e := range []models.AttendanceEntry{
				entry(t, c, "1", "Old", "04.03.2025 09:00:00"),
				entry(t, c, "2", "Today", "05.03.2025 08:00:00"),
				entry(t, c, "3", "Closed", "05.03.2025 08:30:00"),
				entry(t, c, "3", "Closed", "05.03.2025 10:30:00"),
			} {
				_, err := store.ApplyEvent(ctx, c, e)
				require.NoError(t, err)
			}

			closed, err := store.SweepAutoClose(ctx, c, ts(t, c, "05.03.2025 12:00:00"))
			require.NoError(t, err)
			assert.Equal(t, 1, closed, "only the earlier day is due before the cutoff")

			closed, err = store.SweepAutoClose(ctx, c, ts(t, c, "05.03.2025 18:30:00"))
			require.NoError(t, err)
			assert.Equal(t, 1, closed)

			before, err := store.Records(ctx, c, RecordFilter{})
			require.NoError(t, err)
			closed, err = store.SweepAutoClose(ctx, c, ts(t, c, "05.03.2025 19:00:00"))
			require.NoError(t, err)
			assert.Equal(t, 0, closed)
			after, err := store.Records(ctx, c, RecordFilter{})
			require.NoError(t, err)
			assert.Equal(t, before, after)

			byID := map[string]models.AttendanceRecord{}
			for _, r := range after {
				byID[r.EmployeeID] = r
			}
			assert.Equal(t, "04.03.2025 18:00:00", worktime.FormatTimestamp(byID["1"].End, c.Location()))
			assert.Equal(t, "9ч 0м", byID["1"].Duration)
			assert.Equal(t, "05.03.2025 18:00:00", worktime.FormatTimestamp(byID["2"].End, c.Location()))
			assert.Equal(t, "10ч 0м", byID["2"].Duration)
			assert.Equal(t, "05.03.2025 10:30:00", worktime.FormatTimestamp(byID["3"].End, c.Location()))
		})
	}
}

func TestFileStoreRecordsFilter(t *testing.T) {
	ctx := context.Background()
	store := NewJSONStore(t.TempDir())
	c := testCompany(t, "Jarvis", models.StorageJSON)
	for _, e := range []models.AttendanceEntry{
		entry(t, c, "1", "A", "03.03.2025 09:00:00"),
		entry(t, c, "2", "B", "04.03.2025 09:00:00"),
		entry(t, c, "1", "A", "05.03.2025 09:00:00"),
	} {
		_, err := store.ApplyEvent(ctx, c, e)
		require.NoError(t, err)
	}

	from, _ := worktime.ParseDate("04.03.2025")
	got, err := store.Records(ctx, c, RecordFilter{From: from})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = store.Records(ctx, c, RecordFilter{EmployeeID: "1", To: from})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "03.03.2025", got[0].Date.String())
}

func TestFileStoreReplaceAndUpsert(t *testing.T) {
	for _, tc := range fileStoreCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := tc.build(t.TempDir())
			c := testCompany(t, "Jarvis", tc.storage)

			_, err := store.ApplyEvent(ctx, c, entry(t, c, "42", "Jane", "05.03.2025 09:00:00"))
			require.NoError(t, err)

			bob := models.NewAttendanceRecord("7", "Bob", ts(t, c, "01.03.2025 08:00:00"))
			bob.Close(ts(t, c, "01.03.2025 12:00:00"))
			bob.Resume(ts(t, c, "01.03.2025 13:00:00"))
			bob.Close(ts(t, c, "01.03.2025 17:30:00"))
			ann := models.NewAttendanceRecord("8", "Ann", ts(t, c, "02.03.2025 09:15:00"))
			replacement := []models.AttendanceRecord{bob, ann}

			require.NoError(t, store.ReplaceRecords(ctx, c, replacement))
			got, err := store.Records(ctx, c, RecordFilter{})
			require.NoError(t, err)
			assert.Equal(t, replacement, got)
			assert.Equal(t, 60, got[0].PauseMinutes)
			assert.Equal(t, "9ч 30м", got[0].Duration)

			added, err := store.UpsertEmployees(ctx, c, []models.Employee{{ID: "42", Name: "Renamed"}, {ID: "7", Name: "Bob"}})
			require.NoError(t, err)
			assert.Equal(t, 1, added)
			employees, err := store.Employees(ctx, c)
			require.NoError(t, err)
			assert.Equal(t, []models.Employee{{ID: "42", Name: "Jane"}, {ID: "7", Name: "Bob"}}, employees)

			// records survive a directory-only write on the shared workbook
			got, err = store.Records(ctx, c, RecordFilter{})
			require.NoError(t, err)
			assert.Equal(t, replacement, got)
		})
	}
}

func TestFileStoreReplaceRejectsDuplicateDay(t *testing.T) {
	for _, tc := range fileStoreCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := tc.build(t.TempDir())
			c := testCompany(t, "Jarvis", tc.storage)

			_, err := store.ApplyEvent(ctx, c, entry(t, c, "42", "Jane", "05.03.2025 08:00:00"))
			require.NoError(t, err)

			morning := models.NewAttendanceRecord("42", "Jane", ts(t, c, "05.03.2025 08:00:00"))
			morning.Close(ts(t, c, "05.03.2025 12:00:00"))
			afternoon := models.NewAttendanceRecord("42", "Jane", ts(t, c, "05.03.2025 13:00:00"))
			err = store.ReplaceRecords(ctx, c, []models.AttendanceRecord{morning, afternoon})
			assert.ErrorIs(t, err, ErrDuplicateRecord)

			outcome, err := store.Apply(ctx, c, entry(t, c, "42", "Jane", "05.03.2025 17:00:00"), models.ActionToggle)
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeClosed, outcome)

			records, err := store.Records(ctx, c, RecordFilter{})
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, models.RecordClosed, records[0].Status)
			assert.Equal(t, "9ч 0м", records[0].Duration)
		})
	}
}

func TestFileStoreKeepsUnreadableRows(t *testing.T) {
	codecs := map[string]func(root string) tableCodec{
		"json":  func(root string) tableCodec { return jsonCodec{root: root} },
		"excel": func(root string) tableCodec { return excelCodec{root: root} },
	}
	for name, newCodec := range codecs {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			codec := newCodec(t.TempDir())
			store := newFileStore(codec)
			c := testCompany(t, "Jarvis", models.StorageJSON)

			broken := models.RecordRow{ID: "9", UserName: "Old", EventDate: "yesterday", StartWorkTime: "?"}
			require.NoError(t, codec.writeRecords(c, []models.RecordRow{
				{ID: "42", UserName: "Jane", EventDate: "05.03.2025", StartWorkTime: "05.03.2025 09:00:00", Status: "OPEN"},
				broken,
			}))

			outcome, err := store.Apply(ctx, c, entry(t, c, "42", "Jane", "05.03.2025 17:00:00"), models.ActionToggle)
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeClosed, outcome)

			records, err := store.Records(ctx, c, RecordFilter{})
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "42", records[0].EmployeeID)

			closed, err := store.SweepAutoClose(ctx, c, ts(t, c, "06.03.2025 09:00:00"))
			require.NoError(t, err)
			assert.Equal(t, 0, closed)

			rows, err := codec.readRecords(c)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, broken, rows[1], "unreadable row is written back as is")
		})
	}
}

func TestFileStoreConcurrentWriters(t *testing.T) {
	for _, tc := range fileStoreCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := tc.build(t.TempDir())
			c := testCompany(t, "Jarvis", tc.storage)

			const n = 12
			at := ts(t, c, "05.03.2025 09:00:00")
			var wg sync.WaitGroup
			errs := make(chan error, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := store.ApplyEvent(ctx, c, models.AttendanceEntry{
						EmployeeID:   fmt.Sprintf("e%02d", i),
						EmployeeName: fmt.Sprintf("Employee %d", i),
						At:           at,
					})
					errs <- err
				}(i)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			records, err := store.Records(ctx, c, RecordFilter{})
			require.NoError(t, err)
			assert.Len(t, records, n)
			employees, err := store.Employees(ctx, c)
			require.NoError(t, err)
			assert.Len(t, employees, n)
		})
	}
}

func TestFileStoreCompaniesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewJSONStore(t.TempDir())
	a := testCompany(t, "Alpha", models.StorageJSON)
	b := testCompany(t, "Beta", models.StorageJSON)

	_, err := store.ApplyEvent(ctx, a, entry(t, a, "42", "Jane", "05.03.2025 09:00:00"))
	require.NoError(t, err)

	got, err := store.Records(ctx, b, RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestJSONStoreReadsLegacyFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	c := testCompany(t, "Jarvis", models.StorageJSON)
	legacy := `[
  {
    "id": "42",
    "userName": "Jane",
    "eventDate": "05.03.2025",
    "startWorkTime": "05.03.2025 09:00:00",
    "endWorkTime": "",
    "status": "Открыто",
    "pause": 0,
    "duration": ""
  }
]`
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Jarvis"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Jarvis", EventsFileName), []byte(legacy), 0o644))

	store := NewJSONStore(root)
	outcome, err := store.Apply(ctx, c, entry(t, c, "42", "Jane", "05.03.2025 17:00:00"), models.ActionToggle)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeClosed, outcome)

	data, err := os.ReadFile(filepath.Join(root, "Jarvis", EventsFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status": "CLOSED"`)
	assert.Contains(t, string(data), `"duration": "8ч 0м"`)
}

func TestJSONStoreCorruptFile(t *testing.T) {
	root := t.TempDir()
	c := testCompany(t, "Jarvis", models.StorageJSON)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Jarvis"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Jarvis", EventsFileName), []byte("{not json"), 0o644))

	_, err := NewJSONStore(root).ApplyEvent(context.Background(), c, entry(t, c, "42", "Jane", "05.03.2025 09:00:00"))
	assert.Error(t, err)
}

func TestJSONStoreOnDiskFormat(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewJSONStore(root)
	c := testCompany(t, "Jarvis", models.StorageJSON)

	for _, e := range []models.AttendanceEntry{
		entry(t, c, "42", "Jane", "05.03.2025 08:58:12"),
		entry(t, c, "7", "Bob", "05.03.2025 09:10:00"),
		entry(t, c, "42", "Jane", "05.03.2025 12:00:00"),
		entry(t, c, "42", "Jane", "05.03.2025 13:00:30"),
		entry(t, c, "7", "Bob", "05.03.2025 18:05:00"),
	} {
		_, err := store.ApplyEvent(ctx, c, e)
		require.NoError(t, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	events, err := os.ReadFile(filepath.Join(root, "Jarvis", EventsFileName))
	require.NoError(t, err)
	g.Assert(t, "events_json", events)

	users, err := os.ReadFile(filepath.Join(root, "Jarvis", EmployeesFileName))
	require.NoError(t, err)
	g.Assert(t, "users_json", users)
}

func TestExcelStoreWorkbookLayout(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewExcelStore(root)
	c := testCompany(t, "Jarvis", models.StorageExcel)

	_, err := store.ApplyEvent(ctx, c, entry(t, c, "42", "Jane", "05.03.2025 09:00:00"))
	require.NoError(t, err)

	f, err := excelize.OpenFile(filepath.Join(root, "Jarvis", "Jarvis.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{EventsSheet, EmployeesSheet}, f.GetSheetList())
	rows, err := f.GetRows(EventsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.RecordColumns, rows[0])
	assert.Equal(t, "42", rows[1][0])
	assert.Equal(t, "OPEN", rows[1][5])

	users, err := f.GetRows(EmployeesSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "name"}, {"42", "Jane"}}, users)
}

func TestExcelStoreReadsColumnsByHeader(t *testing.T) {
	rows := [][]string{
		{"status", "id", "eventDate", "userName", "startWorkTime", "endWorkTime", "pause", "duration"},
		{"Завершено", "9", "01.03.2025", "Ann", "01.03.2025 09:00:00", "01.03.2025 10:00:00", "5", "1ч 0м"},
		{"", "", "", "", "", "", "", ""},
	}
	got := decodeRecordRows(rows)
	require.Len(t, got, 1)
	assert.Equal(t, models.RecordRow{
		ID: "9", UserName: "Ann", EventDate: "01.03.2025",
		StartWorkTime: "01.03.2025 09:00:00", EndWorkTime: "01.03.2025 10:00:00",
		Status: "Завершено", Pause: 5, Duration: "1ч 0м",
	}, got[0])
}
