package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grimoireapp/grimoire-server/internal/domain"
)

func TestUpdateDay_Today(t *testing.T) {
	ts := setupTestServer(t, defaultTestOptions())
	c := ts.newClient(t)
	c.register("alice", "secret")

	resp := c.postForm("/update", url.Values{
		"date":      {today().String()},
		"score":     {"72"},
		"tags":      {"Sleep, Unknown,Sleep,Study"},
		"has_blog":  {"0"},
		"blog_text": {"# Good day\nLong walk."},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)

	body := decodeJSON[UpdateDayResponse](t, resp.Body)
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "Sleep,Study", body.NewTags)
	assert.True(t, body.HasBlog, "non-blank text marks the day as blogged")

	snapshot, err := domain.DecodeSnapshot(body.Snapshot)
	require.NoError(t, err)
	assert.Contains(t, snapshot, "Sleep")
	assert.Contains(t, snapshot, "Study")

	log, err := ts.store.GetDayLog(t.Context(), 1, today())
	require.NoError(t, err)
	assert.Equal(t, 72, log.Score)
	assert.Equal(t, []string{"Sleep", "Study"}, log.Tags)
	assert.Equal(t, 1, log.EditCount)
}

func TestUpdateDay_Rejections(t *testing.T) {
	ts := setupTestServer(t, defaultTestOptions())
	c := ts.newClient(t)
	c.register("alice", "secret")

	tests := []struct {
		name   string
		values url.Values
		status int
		msg    string
	}{
		{
			name:   "archived",
			values: url.Values{"date": {today().AddDays(-1).String()}, "score": {"10"}},
			status: http.StatusForbidden,
			msg:    "This day is archived. Use footnotes to add notes.",
		},
		{
			name:   "future",
			values: url.Values{"date": {today().AddDays(1).String()}, "score": {"10"}},
			status: http.StatusForbidden,
			msg:    "This day has not happened yet. Use footnotes to add notes.",
		},
		{
			name:   "sealed",
			values: url.Values{"date": {"2019-12-31"}, "score": {"10"}},
			status: http.StatusForbidden,
			msg:    "This day is before the tracker began. Use footnotes to add notes.",
		},
		{
			name:   "bad date",
			values: url.Values{"date": {"yesterday"}},
			status: http.StatusBadRequest,
		},
		{
			name:   "score not a number",
			values: url.Values{"date": {today().String()}, "score": {"lots"}},
			status: http.StatusBadRequest,
			msg:    "Score must be a whole number.",
		},
		{
			name:   "score out of range",
			values: url.Values{"date": {today().String()}, "score": {"101"}},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := c.postForm("/update", tt.values)
			assert.Equal(t, tt.status, resp.Code, resp.Body)
			body := decodeJSON[map[string]string](t, resp.Body)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, body["error"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}

	_, err := ts.store.GetDayLog(t.Context(), 1, today().AddDays(-1))
	assert.Error(t, err, "rejected writes leave no row behind")
}

func TestUpdateDay_Multipart(t *testing.T) {
	ts := setupTestServer(t, defaultTestOptions())
	c := ts.newClient(t)
	c.register("alice", "secret")

	req := newMultipartRequest(t, c.base+"/update", map[string]string{
		"date":     today().String(),
		"score":    "40",
		"tags":     "Hobby",
		"has_blog": "true",
	})
	req.Header.Set(CSRFHeader, c.csrf)

	resp := c.do(req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	body := decodeJSON[UpdateDayResponse](t, resp.Body)
	assert.Equal(t, "Hobby", body.NewTags)
	assert.True(t, body.HasBlog)
}

func TestUpdateFootnote_AnyDate(t *testing.T) {
	ts := setupTestServer(t, defaultTestOptions())
	c := ts.newClient(t)
	c.register("alice", "secret")

	for _, d := range []domain.Date{today().AddDays(-3), domain.MustParseDate("2019-06-01"), today().AddDays(10)} {
		resp := c.postForm("/update_footnote", url.Values{
			"date":      {d.String()},
			"footnotes": {"  remembered later  "},
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body)

		body := decodeJSON[UpdateFootnoteResponse](t, resp.Body)
		assert.Equal(t, "success", body.Status)
		assert.Equal(t, "remembered later", body.Footnotes)

		log, err := ts.store.GetDayLog(t.Context(), 1, d)
		require.NoError(t, err)
		assert.Equal(t, "remembered later", log.Footnotes)
		assert.Equal(t, 0, log.EditCount)
	}

	resp := c.postForm("/update_footnote", url.Values{"date": {"2026-02-30"}, "footnotes": {"x"}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestParseScore(t *testing.T) {
	score, err := parseScore("")
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	score, err = parseScore(" 85 ")
	require.NoError(t, err)
	assert.Equal(t, 85, score)

	_, err = parseScore("8.5")
	assert.Error(t, err)
}
