package ebsi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	form    url.Values
	headers http.Header
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()

	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		got.form = r.PostForm
		got.headers = r.Header.Clone()
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, got
}

func TestSearchPapers_SendsQuery(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, "<ul></ul>")

	client := New(Config{SearchURL: srv.URL, SearchReferer: "https://www.ebsi.co.kr/ref"})
	html, err := client.SearchPapers(context.Background(), PaperQuery{
		Grade:   "1",
		Subject: "2",
		Month:   "03",
		Year:    "2013",
	})
	require.NoError(t, err)
	assert.Equal(t, "<ul></ul>", html)

	assert.Equal(t, "2013", got.form.Get("beginYear"))
	assert.Equal(t, "2013", got.form.Get("endYear"))
	assert.Equal(t, "03", got.form.Get("monthList"))
	assert.Equal(t, "2", got.form.Get("subjList"))
	assert.Equal(t, "D100", got.form.Get("targetCd"))
	assert.Equal(t, "1", got.form.Get("currentPage"))
	assert.Equal(t, "10", got.form.Get("pageSize"))
	assert.Equal(t, "recent", got.form.Get("sort"))

	assert.Equal(t, "XMLHttpRequest", got.headers.Get("X-Requested-With"))
	assert.Equal(t, "application/x-www-form-urlencoded; charset=UTF-8", got.headers.Get("Content-Type"))
	assert.Equal(t, "https://www.ebsi.co.kr/ref", got.headers.Get("Referer"))
}

func TestPaperStats_SendsPaperID(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"data":[]}`)

	client := New(Config{StatsURL: srv.URL, Cookie: "JSESSIONID=abc"})
	body, err := client.PaperStats(context.Background(), "3417953")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(body))

	assert.Equal(t, "3417953", got.form.Get("paperId"))
	assert.Equal(t, "Y", got.form.Get("isInsite"))
	assert.Equal(t, "HSC", got.form.Get("site"))
	assert.Equal(t, "1", got.form.Get("isMoc"))
	assert.True(t, got.form.Has("suffixSite"))
	assert.Equal(t, "JSESSIONID=abc", got.headers.Get("Cookie"))
}

func TestCreatePaper_JoinsItems(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"result":"success"}`)

	client := New(Config{
		WorksheetURL:         srv.URL,
		WorksheetSubjectID:   "223120002",
		WorksheetPaperTypeID: "99",
	})
	err := client.CreatePaper(context.Background(), "3월 모의고사 오답", []string{"IT1", "IT2", "IT3"})
	require.NoError(t, err)

	assert.Equal(t, "3월 모의고사 오답", got.form.Get("title"))
	assert.Equal(t, "IT1,IT2,IT3", got.form.Get("itemList"))
	assert.Equal(t, "223120002", got.form.Get("subjectId"))
	assert.Equal(t, "99", got.form.Get("paperTypeId"))
	assert.True(t, got.form.Has("desc"))
	assert.Empty(t, got.form.Get("desc"))
}

func TestPost_NonSuccessStatus(t *testing.T) {
	srv, _ := newServer(t, http.StatusInternalServerError, "oops")

	client := New(Config{SearchURL: srv.URL})
	_, err := client.SearchPapers(context.Background(), PaperQuery{Grade: "1", Subject: "2", Month: "03", Year: "2013"})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestPost_CancelledContext(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(Config{StatsURL: srv.URL, RateLimit: 1})
	_, err := client.PaperStats(ctx, "1")
	assert.Error(t, err)
}
