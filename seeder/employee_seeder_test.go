package seeder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hikvision-integration/models"
	"hikvision-integration/pkg/bitrix"
	"hikvision-integration/repository"
)

type fakeDirectory struct {
	users   []bitrix.User
	err     error
	webhook string
}

func (f *fakeDirectory) ActiveUsers(_ context.Context, webhook string) ([]bitrix.User, error) {
	f.webhook = webhook
	return f.users, f.err
}

func testCompany(t *testing.T) *models.Company {
	t.Helper()
	c := &models.Company{
		ID:                "1",
		Name:              "Jarvis",
		IPAddress:         "10.0.0.5",
		UserWithBitrix:    true,
		B24WebhookURL:     "https://portal.example/rest/1/secret/",
		FaceAuthEventCode: "75",
	}
	require.NoError(t, c.Normalize())
	return c
}

func TestSeedEmployees(t *testing.T) {
	company := testCompany(t)
	store := repository.NewJSONStore(t.TempDir())
	src := &fakeDirectory{users: []bitrix.User{
		{ID: "42", Name: "Aibek", LastName: "Asanov"},
		{ID: "43", Name: "Dana"},
		{ID: "", Name: "Ghost"},
		{ID: "44"},
	}}

	res, err := SeedEmployees(context.Background(), src, store, company, nil)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Fetched: 4, Skipped: 2, Added: 2}, res)
	assert.Equal(t, company.B24WebhookURL, src.webhook)

	employees, err := store.Employees(context.Background(), company)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.Employee{
		{ID: "42", Name: "Aibek Asanov"},
		{ID: "43", Name: "Dana"},
	}, employees)

	// A second run adds nothing.
	res, err = SeedEmployees(context.Background(), src, store, company, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
}

func TestSeedEmployeesErrors(t *testing.T) {
	store := repository.NewJSONStore(t.TempDir())

	t.Run("no webhook", func(t *testing.T) {
		company := testCompany(t)
		company.B24WebhookURL = ""
		_, err := SeedEmployees(context.Background(), &fakeDirectory{}, store, company, nil)
		require.Error(t, err)
	})

	t.Run("directory failure", func(t *testing.T) {
		boom := errors.New("portal down")
		_, err := SeedEmployees(context.Background(), &fakeDirectory{err: boom}, store, testCompany(t), nil)
		require.ErrorIs(t, err, boom)
	})
}
