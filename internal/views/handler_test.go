package views

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"CollegeNoticeBoard/internal/auth"
	"CollegeNoticeBoard/internal/notice"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNotices locates ids in a fixed feed.
type fixedNotices []notice.Notice

func (f fixedNotices) Locate(_ context.Context, _ auth.Role, id string) (notice.Position, error) {
	return notice.Locate(f, id), nil
}

func newViewRouter(h *ViewHandler, caller auth.Identity) *echo.Echo {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth.SetIdentity(c, caller)
			return next(c)
		}
	})
	e.GET("/api/notices/:id/views", h.List)
	e.POST("/api/notices/:id/views", h.Record)
	e.GET("/api/notices/:id/stream", h.Stream)
	return e
}

func TestViewHandler_RecordAndList(t *testing.T) {
	s := newMemViews()
	l, _ := newTestLedger(s, &fakeFeed{}, &fakeDirectory{})
	e := newViewRouter(NewViewHandler(l, fixedNotices{{ID: "n1"}}, nopLogger), viewer)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/notices/n1/views", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notices/n1/views", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var viewers []MergedViewer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &viewers))
	require.Len(t, viewers, 1)
	assert.Equal(t, "Kiran", viewers[0].DisplayName)
}

func TestViewHandler_HiddenNoticeIsNotFound(t *testing.T) {
	s := newMemViews()
	l, _ := newTestLedger(s, &fakeFeed{}, &fakeDirectory{})
	e := newViewRouter(NewViewHandler(l, fixedNotices{{ID: "n1"}}, nopLogger), viewer)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/notices/staff-only/views", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, s.upsertCalls())
}

func TestViewHandler_StreamSendsDetail(t *testing.T) {
	s := newMemViews()
	feed := &fakeFeed{}
	l, _ := newTestLedger(s, feed, &fakeDirectory{})
	srv := httptest.NewServer(newViewRouter(NewViewHandler(l, fixedNotices{}, nopLogger), viewer))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/api/notices/n1/stream")
	require.NoError(t, err)
	defer res.Body.Close()

	lines := bufio.NewScanner(res.Body)
	var event string
	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "event: ") {
			event = strings.TrimPrefix(lines.Text(), "event: ")
		}
		if strings.HasPrefix(lines.Text(), "data: ") {
			break
		}
	}
	assert.Equal(t, "detail", event)
	var d Detail
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines.Text(), "data: ")), &d))
	assert.False(t, d.Position.Found())
}
