package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/grimoireapp/grimoire-server/internal/auth"
	domainerrors "github.com/grimoireapp/grimoire-server/internal/errors"
	"github.com/grimoireapp/grimoire-server/internal/http/response"
	"github.com/grimoireapp/grimoire-server/internal/id"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// requestID tags each request with an id, reusing a sane incoming header.
// The id is stored under chi's key so middleware.GetReqID finds it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" || len(reqID) > 64 {
			reqID = id.MustGenerate(id.RequestPrefix)
		}
		w.Header().Set(RequestIDHeader, reqID)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs each request through the server logger and records its latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.RequestDuration.
			WithLabelValues(route, strconv.Itoa(status/100)+"xx").
			Observe(elapsed.Seconds())

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		}

		switch {
		case status >= http.StatusInternalServerError:
			s.logger.Error("request", attrs...)
		case status >= http.StatusBadRequest:
			s.logger.Warn("request", attrs...)
		default:
			s.logger.Debug("request", attrs...)
		}
	})
}

// loadSession resolves the session cookie, if any, and stores the session and user in
// context. Requests without a valid session continue anonymously; the guards decide.
func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, user, err := s.services.Session.Resolve(r.Context(), cookie.Value)
		if err != nil {
			if !domainerrors.Is(err, domainerrors.ErrUnauthorized) {
				s.logger.Error("Failed to resolve session", "error", err)
			}
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session, user)))
	})
}

// csrfProtect rejects state-changing requests whose token does not match the session's,
// or for anonymous requests the double-submit cookie.
func (s *Server) csrfProtect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			next.ServeHTTP(w, r)
			return
		}

		expected := ""
		if session := sessionFrom(r.Context()); session != nil {
			expected = session.CSRFToken
		} else if cookie, err := r.Cookie(CSRFCookieName); err == nil {
			expected = cookie.Value
		}

		submitted, err := submittedCSRFToken(w, r)
		if err != nil {
			response.BadRequest(w, "Request body could not be read.", s.logger)
			return
		}

		if !auth.CSRFMatch(expected, submitted) {
			s.metrics.CSRFRejections.Inc()
			s.logger.Warn("CSRF token rejected",
				"path", r.URL.Path,
				"ip", clientIP(r),
				"request_id", middleware.GetReqID(r.Context()),
			)
			response.HandleError(w, domainerrors.ErrInvalidCSRF, s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// submittedCSRFToken finds the token in the headers, a JSON body or the form.
// A JSON body is restored after reading so handlers can decode it again.
func submittedCSRFToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if token := r.Header.Get(CSRFHeader); token != "" {
		return token, nil
	}
	if token := r.Header.Get(CSRFHeaderLegacy); token != "" {
		return token, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if r.Body == nil {
			return "", nil
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, MaxJSONBodySize))
		if err != nil {
			return "", err
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var payload struct {
			CSRFToken string `json:"csrf_token"`
		}
		if json.Unmarshal(body, &payload) != nil {
			return "", nil
		}
		return payload.CSRFToken, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxFormSize)
	return r.PostFormValue(CSRFFormField), nil
}

// requirePageUser redirects anonymous browser requests to the login page.
func (s *Server) requirePageUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFrom(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAPIUser answers anonymous script requests with 401.
func (s *Server) requireAPIUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := RequireUser(r.Context()); err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// noStore keeps personal pages and payloads out of shared caches.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", CacheNoStore)
		next.ServeHTTP(w, r)
	})
}
