package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

const (
	tokenIssuer   = "grimoire-server"
	tokenAudience = "grimoire-web"

	csrfTokenSize = 32 // 256 bits of entropy

	// PASETO v4.local keys are 256 bits.
	keyLength = 32
)

// TokenService seals session references into PASETO v4.local cookie values.
// The cookie only names the session; the sessions table stays authoritative.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	now          func() time.Time
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{symmetricKey: symmetricKey, now: time.Now}, nil
}

// SealSession returns the cookie value for a session.
func (s *TokenService) SealSession(sessionID string, userID int64, expiresAt time.Time) string {
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expiresAt)
	token.SetJti(sessionID)

	//nolint:errcheck // Token.Set only errors on unmarshalable values
	_ = token.Set("user_id", userID)

	return token.V4Encrypt(s.symmetricKey, nil)
}

// OpenSession decrypts and validates a cookie value.
// Tampered, foreign or expired tokens return an error.
func (s *TokenService) OpenSession(value string) (*SessionClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.symmetricKey, value, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	var claims SessionClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("invalid session token: missing session id")
	}

	return &claims, nil
}

// NewCSRFToken returns a random URL-safe token.
func NewCSRFToken() (string, error) {
	b := make([]byte, csrfTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// CSRFMatch compares a submitted token with the expected one in constant time.
// An empty expected or submitted token never matches.
func CSRFMatch(expected, submitted string) bool {
	if expected == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}
