package paseto

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hikvision-integration/models"
)

func testKey() []byte {
	return bytes.Repeat([]byte{7}, 32)
}

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewMaker(testKey())
	require.NoError(t, err)

	token, err := m.GenerateToken(models.Claims{Subject: "dashboard", Role: models.RoleAdmin, CompanyID: "3"}, time.Hour)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, &models.Claims{Subject: "dashboard", Role: models.RoleAdmin, CompanyID: "3"}, claims)
}

func TestTokenFromOtherKeyRejected(t *testing.T) {
	m, _ := NewMaker(testKey())
	other, _ := NewMaker(bytes.Repeat([]byte{9}, 32))

	token, err := other.GenerateToken(models.Claims{Subject: "x"}, time.Hour)
	require.NoError(t, err)
	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	m, _ := NewMaker(testKey())
	token, err := m.GenerateToken(models.Claims{Subject: "x"}, time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestMakerRequirements(t *testing.T) {
	_, err := NewMaker([]byte("short"))
	assert.Error(t, err)

	m, _ := NewMaker(testKey())
	_, err = m.GenerateToken(models.Claims{}, time.Hour)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestClaimsCanAccess(t *testing.T) {
	var none *models.Claims
	assert.False(t, none.CanAccess("1"))
	assert.True(t, (&models.Claims{Role: models.RoleAdmin, CompanyID: "2"}).CanAccess("1"))
	assert.True(t, (&models.Claims{CompanyID: "1"}).CanAccess("1"))
	assert.False(t, (&models.Claims{CompanyID: "2"}).CanAccess("1"))
	assert.True(t, (&models.Claims{}).CanAccess("1"))
}
