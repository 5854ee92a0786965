package auth

import "time"

// SessionClaims are sealed inside the session cookie.
// v4.local tokens are encrypted, so the claims are unreadable without the key.
type SessionClaims struct {
	SessionID string `json:"jti"`
	UserID    int64  `json:"user_id"`

	Issuer     string    `json:"iss"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
}
