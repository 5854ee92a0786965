package api

// Cookie names.
const (
	SessionCookieName = "grimoire_session"
	// CSRFCookieName holds the double-submit token for forms posted before login.
	CSRFCookieName = "grimoire_csrf"
)

// CSRF token locations, checked in this order.
const (
	CSRFHeader       = "X-CSRF-Token"
	CSRFHeaderLegacy = "X-CSRFToken"
	CSRFFormField    = "csrf_token"
)

// Request limits.
const (
	// MaxFormSize caps urlencoded and multipart bodies (1 MB).
	MaxFormSize = 1 << 20
	// MaxJSONBodySize caps JSON bodies inspected for a CSRF token (1 MB).
	MaxJSONBodySize = 1 << 20
)

// Cache-Control header values.
const (
	CacheNoStore = "no-store"
)
