package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hikvision-integration/config"
	"hikvision-integration/handlers"
	"hikvision-integration/models"
	"hikvision-integration/repository"
	"hikvision-integration/router"
	"hikvision-integration/service/workday"
)

const eventLog = `{"ipAddress":"10.0.0.5","dateTime":"2025-03-05T08:58:12+06:00","AccessControllerEvent":{"subEventType":75,"employeeNoString":"42","name":"Jane"}}`

type staticTokens map[string]*models.Claims

func (s staticTokens) ValidateToken(token string) (*models.Claims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, assert.AnError
}

type testServer struct {
	app       *fiber.App
	company   *models.Company
	stores    *repository.Stores
	schedules *repository.ScheduleRepository
	dataDir   string
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	company := &models.Company{ID: "1", Name: "Jarvis", IPAddress: "10.0.0.5", FaceAuthEventCode: "75"}
	require.NoError(t, company.Normalize())
	other := &models.Company{ID: "2", Name: "Other", IPAddress: "10.0.0.6", FaceAuthEventCode: "75"}
	require.NoError(t, other.Normalize())

	registry, err := config.NewRegistry([]*models.Company{company, other})
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	dataDir := t.TempDir()
	stores := repository.NewStores(dataDir, nil)
	backends, err := workday.NewBackends(registry.All(), workday.Deps{Stores: stores, Logger: log})
	require.NoError(t, err)

	s := &testServer{
		app:       fiber.New(),
		company:   company,
		stores:    stores,
		schedules: repository.NewScheduleRepository(dataDir),
		dataDir:   dataDir,
	}
	router.SetupRoutes(s.app, router.Deps{
		Engine:    workday.NewEngine(registry, backends, nil, log),
		Dedup:     repository.NewMemoryDeduplicator(repository.DefaultDedupTTL),
		Companies: registry,
		Stores:    stores,
		Schedules: s.schedules,
		Tokens: staticTokens{
			"admin":  {Subject: "ops", Role: models.RoleAdmin},
			"viewer": {Subject: "dash", Role: "viewer"},
			"other":  {Subject: "dash2", Role: "viewer", CompanyID: "2"},
		},
		DataDir: dataDir,
		Logger:  log,
	})
	return s
}

func (s *testServer) do(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func (s *testServer) get(t *testing.T, path, token string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(t, req)
}

func (s *testServer) postJSON(t *testing.T, path, token string, body any) (int, []byte) {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(t, req)
}

func (s *testServer) postForm(t *testing.T, values url.Values) models.EventAck {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/handle-event", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	code, body := s.do(t, req)
	require.Equal(t, http.StatusOK, code)
	var ack models.EventAck
	require.NoError(t, json.Unmarshal(body, &ack))
	return ack
}

func (s *testServer) records(t *testing.T) []models.AttendanceRecord {
	t.Helper()
	store, err := s.stores.For(s.company)
	require.NoError(t, err)
	recs, err := store.Records(t.Context(), s.company, repository.RecordFilter{})
	require.NoError(t, err)
	return recs
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	code, body := s.get(t, "/", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"status":"running"`)
}

func TestWebhookSkipsWithoutEventLog(t *testing.T) {
	s := newServer(t)
	ack := s.postForm(t, url.Values{"other": {"x"}})
	assert.Equal(t, handlers.AckSkip, ack.Status)
	assert.NotEmpty(t, ack.RequestID)
	assert.Empty(t, s.records(t))
}

func TestWebhookMalformedEvent(t *testing.T) {
	s := newServer(t)
	ack := s.postForm(t, url.Values{"event_log": {"{not json"}})
	assert.Equal(t, handlers.AckSkip, ack.Status)
	assert.Contains(t, ack.Message, "malformed")

	ack = s.postForm(t, url.Values{"event_log": {`{"ipAddress":"10.0.0.5","dateTime":"x"}`}})
	assert.Equal(t, handlers.AckSkip, ack.Status)
	assert.Empty(t, s.records(t))
}

func TestWebhookOpensWorkdayAndDropsDuplicates(t *testing.T) {
	s := newServer(t)

	ack := s.postForm(t, url.Values{"event_log": {eventLog}})
	assert.Equal(t, handlers.AckProcessed, ack.Status)
	assert.Equal(t, string(workday.EventApplied), ack.Result)
	assert.Equal(t, "Jarvis", ack.Company)

	ack = s.postForm(t, url.Values{"event_log": {eventLog}})
	assert.Equal(t, handlers.AckDuplicate, ack.Status)

	recs := s.records(t)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].IsOpen(), "a re-delivered event must not close the day")
}

func TestWebhookMultipart(t *testing.T) {
	s := newServer(t)
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("event_log", eventLog))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/handle-event", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	code, body := s.do(t, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"status":"processed"`)
	assert.Len(t, s.records(t), 1)
}

func TestWebhookJSONBodies(t *testing.T) {
	s := newServer(t)

	code, body := s.postJSON(t, "/handle-event", "", map[string]string{"event_log": eventLog})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"result":"applied"`)

	second := strings.Replace(eventLog, "08:58:12", "18:00:00", 1)
	code, body = s.postJSON(t, "/handle-event", "", `{"event_log": `+second+`}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"result":"applied"`)

	recs := s.records(t)
	require.Len(t, recs, 1)
	assert.False(t, recs[0].IsOpen())
	assert.Equal(t, "9ч 1м", recs[0].Duration)
}

func TestWebhookUnknownDevice(t *testing.T) {
	s := newServer(t)
	ack := s.postForm(t, url.Values{"event_log": {strings.Replace(eventLog, "10.0.0.5", "172.16.0.1", 1)}})
	assert.Equal(t, handlers.AckProcessed, ack.Status)
	assert.Equal(t, string(workday.EventUnknownDevice), ack.Result)
	assert.Empty(t, s.records(t))
}

func TestReportEndpoints(t *testing.T) {
	s := newServer(t)
	s.postForm(t, url.Values{"event_log": {eventLog}})

	code, _ := s.get(t, "/api/events?company=1", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := s.get(t, "/api/events?company=1", "viewer")
	require.Equal(t, http.StatusOK, code)
	var events models.EventsResponse
	require.NoError(t, json.Unmarshal(body, &events))
	assert.Equal(t, 1, events.Total)
	assert.Equal(t, "05.03.2025 08:58:12", events.Events[0].StartWorkTime)
	assert.Equal(t, "OPEN", events.Events[0].Status)

	code, body = s.get(t, "/api/events?company=1&from=06.03.2025", "viewer")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"total":0`)
	assert.Contains(t, string(body), `"events":[]`)

	code, body = s.get(t, "/api/users?company=1", "viewer")
	require.Equal(t, http.StatusOK, code)
	var employees models.EmployeesResponse
	require.NoError(t, json.Unmarshal(body, &employees))
	assert.Equal(t, []models.Employee{{ID: "42", Name: "Jane"}}, employees.Employees)

	for path, want := range map[string]int{
		"/api/events":                        http.StatusBadRequest,
		"/api/events?company=9":              http.StatusNotFound,
		"/api/events?company=1&from=2025-03": http.StatusBadRequest,
	} {
		code, _ := s.get(t, path, "viewer")
		assert.Equal(t, want, code, path)
	}

	code, _ = s.get(t, "/api/events?company=1", "other")
	assert.Equal(t, http.StatusForbidden, code)
}

func TestScheduleUpload(t *testing.T) {
	s := newServer(t)
	payload := map[string]any{
		"companyId": 1,
		"schedules": []map[string]any{{"employeeId": "42", "day": "05.03.2025", "hours": 8}},
		"shifts":    []map[string]any{{"name": "morning", "start": "09:00"}},
	}

	code, _ := s.postJSON(t, "/data-update", "viewer", payload)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := s.postJSON(t, "/data-update", "admin", payload)
	require.Equal(t, http.StatusOK, code, string(body))
	_, err := os.Stat(s.schedules.SchedulePath(s.company))
	assert.NoError(t, err)
	_, err = os.Stat(s.schedules.ShiftPath(s.company))
	assert.NoError(t, err)

	code, _ = s.postJSON(t, "/data-update", "admin", `{"companyId":"1","schedules":{"a":1}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.postJSON(t, "/data-update", "admin", `{"schedules":[]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.postJSON(t, "/data-update", "admin", `{"companyId":"9","schedules":[]}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestEventsUpload(t *testing.T) {
	s := newServer(t)
	s.postForm(t, url.Values{"event_log": {eventLog}})

	rows := []models.RecordRow{
		{ID: "7", UserName: "Bob", EventDate: "04.03.2025", StartWorkTime: "04.03.2025 09:00:00", EndWorkTime: "04.03.2025 18:00:00", Status: "Завершено", Duration: "9ч 0м"},
		{ID: "8", UserName: "Ann", EventDate: "04.03.2025", StartWorkTime: "04.03.2025 10:00:00"},
	}
	code, body := s.postJSON(t, "/events-only-update", "admin", map[string]any{"companyId": "1", "events": rows})
	require.Equal(t, http.StatusOK, code, string(body))

	recs := s.records(t)
	require.Len(t, recs, 2, "upload replaces existing records")
	assert.Equal(t, "7", recs[0].EmployeeID)
	assert.Equal(t, models.RecordClosed, recs[0].Status)
	assert.True(t, recs[1].IsOpen())

	bad := []models.RecordRow{{ID: "9", EventDate: "yesterday"}}
	code, _ = s.postJSON(t, "/events-only-update", "admin", map[string]any{"companyId": "1", "events": bad})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Len(t, s.records(t), 2)

	twice := []models.RecordRow{
		{ID: "42", UserName: "Jane", EventDate: "05.03.2025", StartWorkTime: "05.03.2025 08:00:00", EndWorkTime: "05.03.2025 12:00:00"},
		{ID: "42", UserName: "Jane", EventDate: "05.03.2025", StartWorkTime: "05.03.2025 13:00:00"},
	}
	code, body = s.postJSON(t, "/events-only-update", "admin", map[string]any{"companyId": "1", "events": twice})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(body), "duplicate event row")
	assert.Len(t, s.records(t), 2, "rejected upload leaves records alone")
}

func TestDataFileDownload(t *testing.T) {
	s := newServer(t)
	s.postForm(t, url.Values{"event_log": {eventLog}})

	code, body := s.get(t, "/data/1/"+repository.EventsFileName, "viewer")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"userName": "Jane"`)

	code, _ = s.get(t, "/data/1/missing.json", "viewer")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.get(t, "/data/1/.hidden", "viewer")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.get(t, "/data/1/..%2F..%2Fetc%2Fpasswd", "viewer")
	assert.NotEqual(t, http.StatusOK, code)
	code, _ = s.get(t, "/data/9/events.json", "viewer")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.get(t, "/data/1/events.json", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}
