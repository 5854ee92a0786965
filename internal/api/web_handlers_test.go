package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_LogsInAndShowsTracker(t *testing.T) {
	ts := setupTestServer(t, defaultTestOptions())
	c := ts.newClient(t)

	c.register("alice", "secret")

	resp := c.get("/")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, "alice")
	assert.Contains(t, resp.Body, "window.GRIMOIRE_ENV")
	assert.Contains(t, resp.Body, today().String())

	// Signed-in users are sent away from the anonymous forms.
	resp = c.get("/login")
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/", resp.Location)
}

func TestTrackerPage_EmbedsEditorData(t *testing.T) {
	ts := setupTestServer(t, defaultTestOptions())
	c := ts.newClient(t)
	c.register("alice", "secret")

	require.Equal(t, http.StatusOK, c.postForm("/update", url.Values{
		"date":      {today().String()},
		"score":     {"70"},
		"tags":      {"Study"},
		"blog_text": {"Walked to the river."},
	}).Code)
	require.Equal(t, http.StatusOK, c.postForm("/update_footnote", url.Values{
		"date":      {today().String()},
		"footnotes": {"late addendum"},
	}).Code)

	resp := c.get("/")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, `"main":"Walked to the river."`)
	assert.Contains(t, resp.Body, `"footnotes":"late addendum"`)
	assert.Contains(t, resp.Body, `"csrfToken":"`+c.csrf+`"`)
	assert.Contains(t, resp.Body, `data-score="70"`)
	assert.Contains(t, resp.Body, `<dialog id="editor">`)
	assert.Contains(t, resp.Body, "'/update_footnote'")
	assert.Contains(t, resp.Body, `<form id="add-tag">`)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ts := setupTestServer(t, defaultTestOptions())
	ts.newClient(t).register("alice", "secret")

	resp := ts.newClient(t).submitAuthForm("/register", url.Values{
		"username": {"alice"},
		"password": {"another"},
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body, "Username already exists.")
}

func TestRegister_ShortPassword(t *testing.T) {
	ts := setupTestServer(t, defaultTestOptions())

	resp := ts.newClient(t).submitAuthForm("/register", url.Values{
		"username": {"alice"},
		"password": {"abc"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body, "alice", "username is kept in the form")
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t, defaultTestOptions())
	ts.newClient(t).register("alice", "secret")

	t.Run("wrong password", func(t *testing.T) {
		c := ts.newClient(t)
		resp := c.submitAuthForm("/login", url.Values{"username": {"alice"}, "password": {"nope"}})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Contains(t, resp.Body, "Invalid username or password.")
		assert.Equal(t, http.StatusFound, c.get("/").Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		resp := ts.newClient(t).submitAuthForm("/login", url.Values{"username": {"bob"}, "password": {"secret"}})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Contains(t, resp.Body, "Invalid username or password.")
	})

	t.Run("success", func(t *testing.T) {
		c := ts.newClient(t)
		resp := c.submitAuthForm("/login", url.Values{"username": {"alice"}, "password": {"secret"}})
		assert.Equal(t, http.StatusSeeOther, resp.Code)
		assert.Equal(t, "/", resp.Location)
		assert.Equal(t, http.StatusOK, c.get("/").Code)
	})
}

func TestLogout(t *testing.T) {
	ts := setupTestServer(t, defaultTestOptions())
	c := ts.newClient(t)
	c.register("alice", "secret")

	resp := c.get("/logout")
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/login", resp.Location)

	assert.Equal(t, http.StatusFound, c.get("/").Code)
	assert.Equal(t, http.StatusUnauthorized, c.get("/api/calendar").Code)
}

func TestChangeCredentials(t *testing.T) {
	ts := setupTestServer(t, defaultTestOptions())
	c := ts.newClient(t)
	c.register("alice", "secret")

	other := ts.newClient(t)
	require.Equal(t, http.StatusSeeOther,
		other.submitAuthForm("/login", url.Values{"username": {"alice"}, "password": {"secret"}}).Code)

	resp := c.get("/change_credentials")
	require.Equal(t, http.StatusOK, resp.Code)

	t.Run("wrong current password", func(t *testing.T) {
		resp := c.postForm("/change_credentials", url.Values{
			"current_password": {"wrong"},
			"new_password":     {"changed"},
		})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Contains(t, resp.Body, "Current password is incorrect.")
	})

	t.Run("nothing to change", func(t *testing.T) {
		resp := c.postForm("/change_credentials", url.Values{"current_password": {"secret"}})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body, "Enter a new username or a new password.")
	})

	t.Run("success", func(t *testing.T) {
		resp := c.postForm("/change_credentials", url.Values{
			"current_password": {"secret"},
			"new_username":     {"alicia"},
			"new_password":     {"changed"},
		})
		assert.Equal(t, http.StatusSeeOther, resp.Code)
		assert.Equal(t, "/", resp.Location)

		// The changing client gets a fresh session; every other session is revoked.
		assert.Equal(t, http.StatusOK, c.get("/").Code)
		assert.Equal(t, http.StatusFound, other.get("/").Code)

		fresh := ts.newClient(t)
		resp = fresh.submitAuthForm("/login", url.Values{"username": {"alicia"}, "password": {"changed"}})
		assert.Equal(t, http.StatusSeeOther, resp.Code)
	})
}

func TestTrackerPage_InvalidMonthRedirects(t *testing.T) {
	ts := setupTestServer(t, defaultTestOptions())
	c := ts.newClient(t)
	c.register("alice", "secret")

	resp := c.get("/?year=2026&month=13")
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/", resp.Location)

	resp = c.get("/?year=2026&month=2")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, "February")
}
