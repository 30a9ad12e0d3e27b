package paseto

import (
	"errors"
	"fmt"
	"time"

	"github.com/o1egl/paseto"

	"hikvision-integration/models"
)

const DefaultTokenTTL = 24 * time.Hour

var ErrMissingSubject = errors.New("token has no subject")

// Maker issues and checks PASETO v2 local tokens for the reporting API.
type Maker struct {
	v2  *paseto.V2
	key []byte
}

func NewMaker(symmetricKey []byte) (*Maker, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("PASETO v2 local requires a 32-byte key, got %d", len(symmetricKey))
	}
	return &Maker{v2: paseto.NewV2(), key: symmetricKey}, nil
}

func (m *Maker) GenerateToken(claims models.Claims, ttl time.Duration) (string, error) {
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()

	token := paseto.JSONToken{
		Subject:    claims.Subject,
		IssuedAt:   now,
		Expiration: now.Add(ttl),
		NotBefore:  now,
	}
	token.Set("role", claims.Role)
	if claims.CompanyID != "" {
		token.Set("company_id", claims.CompanyID)
	}

	return m.v2.Encrypt(m.key, token, "")
}

func (m *Maker) ValidateToken(tokenString string) (*models.Claims, error) {
	var token paseto.JSONToken
	var footer string

	if err := m.v2.Decrypt(tokenString, m.key, &token, &footer); err != nil {
		return nil, fmt.Errorf("failed to decrypt paseto token: %w", err)
	}
	if err := token.Validate(); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if token.Subject == "" {
		return nil, ErrMissingSubject
	}

	return &models.Claims{
		Subject:   token.Subject,
		Role:      token.Get("role"),
		CompanyID: token.Get("company_id"),
	}, nil
}
