package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/grimoireapp/grimoire-server/internal/auth"
	"github.com/grimoireapp/grimoire-server/internal/domain"
	"github.com/grimoireapp/grimoire-server/internal/http/response"
	"github.com/grimoireapp/grimoire-server/internal/service"
)

//go:embed templates/*.html
var templates embed.FS

// pages holds one parsed template per page, each combined with the base layout.
type pages struct {
	byName map[string]*template.Template
}

func mustParsePages() *pages {
	p := &pages{byName: make(map[string]*template.Template)}
	for _, name := range []string{"login", "register", "change_credentials", "tracker"} {
		p.byName[name] = template.Must(template.ParseFS(templates, "templates/base.html", "templates/"+name+".html"))
	}
	return p
}

// render executes a page into a buffer first so a template error never sends half a page.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := s.pages.byName[name]
	if !ok {
		s.logger.Error("Unknown page template", "page", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		s.logger.Error("Failed to execute page template", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

// authPageData contains data for the login, register and account templates.
type authPageData struct {
	CSRFToken string
	Username  string
	Error     string
}

// trackerPageData contains data for the calendar page template.
type trackerPageData struct {
	Username string
	Month    *service.CalendarMonth
	Tags     service.TagSet
	TagNames []string
	Env      trackerEnv
}

// trackerEnv is exposed to page scripts as window.GRIMOIRE_ENV.
type trackerEnv struct {
	CSRFToken string                        `json:"csrfToken"`
	TodayStr  string                        `json:"todayStr"`
	TagsData  service.TagSet                `json:"tagsData"`
	LogsData  map[string]trackerEnvLogEntry `json:"logsData"`
	PrevYear  int                           `json:"prevYear"`
	PrevMonth int                           `json:"prevMonth"`
	NextYear  int                           `json:"nextYear"`
	NextMonth int                           `json:"nextMonth"`
}

type trackerEnvLogEntry struct {
	Main      string `json:"main"`
	Footnotes string `json:"footnotes"`
}

// handleLoginPage serves the login form.
// GET /login
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if userFrom(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.renderAuthPage(w, r, http.StatusOK, "login", "", "")
}

// handleLogin checks credentials and starts a session.
// POST /login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds := service.Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	user, err := s.services.Auth.Login(r.Context(), creds)
	if err != nil {
		status, msg := response.Describe(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("Login failed", "error", err)
		}
		s.renderAuthPage(w, r, status, "login", creds.Username, msg)
		return
	}

	if err := s.startSession(w, r, user); err != nil {
		s.logger.Error("Failed to start session", "user_id", user.ID, "error", err)
		s.renderAuthPage(w, r, http.StatusInternalServerError, "login", creds.Username, "Could not log you in. Please try again.")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRegisterPage serves the registration form.
// GET /register
func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if userFrom(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.renderAuthPage(w, r, http.StatusOK, "register", "", "")
}

// handleRegister creates an account and logs it in.
// POST /register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	creds := service.Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	user, err := s.services.Auth.Register(r.Context(), creds)
	if err != nil {
		status, msg := response.Describe(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("Registration failed", "error", err)
		}
		s.renderAuthPage(w, r, status, "register", creds.Username, msg)
		return
	}

	if err := s.startSession(w, r, user); err != nil {
		s.logger.Error("Failed to start session", "user_id", user.ID, "error", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout ends the current session.
// GET /logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if session := sessionFrom(r.Context()); session != nil {
		if err := s.services.Session.Destroy(r.Context(), session.ID); err != nil {
			s.logger.Error("Failed to delete session", "session_id", session.ID, "error", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// handleChangeCredentialsPage serves the account form.
// GET /change_credentials
func (s *Server) handleChangeCredentialsPage(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	s.render(w, http.StatusOK, "change_credentials", authPageData{
		CSRFToken: sessionFrom(r.Context()).CSRFToken,
		Username:  user.Username,
	})
}

// handleChangeCredentials updates the username and/or password, then replaces the session.
// POST /change_credentials
func (s *Server) handleChangeCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFrom(ctx)

	updated, err := s.services.Auth.ChangeCredentials(ctx, user.ID, service.ChangeCredentialsRequest{
		CurrentPassword: r.PostFormValue("current_password"),
		NewUsername:     r.PostFormValue("new_username"),
		NewPassword:     r.PostFormValue("new_password"),
	})
	if err != nil {
		status, msg := response.Describe(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("Credential change failed", "user_id", user.ID, "error", err)
		}
		s.render(w, status, "change_credentials", authPageData{
			CSRFToken: sessionFrom(ctx).CSRFToken,
			Username:  user.Username,
			Error:     msg,
		})
		return
	}

	if err := s.startSession(w, r, updated); err != nil {
		s.logger.Error("Failed to start session", "user_id", updated.ID, "error", err)
		s.clearSessionCookie(w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleTrackerPage renders the calendar for ?year=&month=, defaulting to the current month.
// GET /
func (s *Server) handleTrackerPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFrom(ctx)

	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))

	cal, err := s.services.Day.Calendar(ctx, user.ID, year, month)
	if err != nil {
		if status, _ := response.Describe(err); status == http.StatusBadRequest {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		s.logger.Error("Failed to build calendar", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	tags, err := s.services.Tag.List(ctx, user.ID)
	if err != nil {
		s.logger.Error("Failed to list tags", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	logs := make(map[string]trackerEnvLogEntry)
	for _, d := range cal.Days() {
		if d.BlogText != "" || d.Footnotes != "" {
			logs[d.Date] = trackerEnvLogEntry{Main: d.BlogText, Footnotes: d.Footnotes}
		}
	}

	s.render(w, http.StatusOK, "tracker", trackerPageData{
		Username: user.Username,
		Month:    cal,
		Tags:     tags,
		TagNames: tags.Names(),
		Env: trackerEnv{
			CSRFToken: sessionFrom(ctx).CSRFToken,
			TodayStr:  cal.Today,
			TagsData:  tags,
			LogsData:  logs,
			PrevYear:  cal.PrevYear,
			PrevMonth: cal.PrevMonth,
			NextYear:  cal.NextYear,
			NextMonth: cal.NextMonth,
		},
	})
}

// renderAuthPage renders an anonymous form, issuing the double-submit CSRF cookie if needed.
func (s *Server) renderAuthPage(w http.ResponseWriter, r *http.Request, status int, page, username, errMsg string) {
	token, err := s.anonymousCSRFToken(w, r)
	if err != nil {
		s.logger.Error("Failed to issue CSRF token", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.render(w, status, page, authPageData{CSRFToken: token, Username: username, Error: errMsg})
}

// anonymousCSRFToken returns the request's double-submit token, setting a new cookie when absent.
func (s *Server) anonymousCSRFToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(CSRFCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	} else if err != nil && !errors.Is(err, http.ErrNoCookie) {
		return "", err
	}

	token, err := auth.NewCSRFToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// startSession creates a session for user and sets its cookie.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	issued, err := s.services.Session.Create(r.Context(), user, clientIP(r), r.UserAgent())
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    issued.CookieValue,
		Path:     "/",
		Expires:  issued.Session.ExpiresAt,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
