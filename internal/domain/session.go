package domain

import "time"

// Session is a server-side login session. The cookie carries a sealed token naming ID;
// CSRFToken must accompany every state-changing request made with this session.
type Session struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	CSRFToken  string    `json:"-"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

// IsExpired reports whether the session has passed its expiry at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
