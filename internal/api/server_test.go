package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"placehours/internal/availability"
	"placehours/internal/database"
	"placehours/internal/export"
	"placehours/internal/hours"
	"placehours/internal/model"
	"placehours/internal/parsecache"
	"placehours/internal/placecache"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var kst = time.FixedZone("KST", 9*60*60)

// Wednesday 2026-10-21 10:00 KST
var testNow = time.Date(2026, time.October, 21, 10, 0, 0, 0, kst)

type fixture struct {
	handler  http.Handler
	db       *database.DB
	cafeID   int64
	shopID   int64
	courseID int64
}

func setupServer(t *testing.T, opts Options) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(filepath.Join(t.TempDir(), "api.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	monday := 1
	note := "정기휴무"
	cafe := &model.Place{Name: "카페", OpeningHours: "매일 08:00-20:00", IsActive: true}
	shop := &model.Place{
		Name:         "서점",
		OpeningHours: "화-일: 11:00-19:00 (브레이크 14:00-15:00)",
		IsActive:     true,
		ClosedDays:   []model.ClosedDay{{DayOfWeek: &monday, Note: &note}},
	}
	require.NoError(t, db.CreatePlace(ctx, cafe))
	require.NoError(t, db.CreatePlace(ctx, shop))
	courseID, err := db.CreateCourse(ctx, "산책", "", []int64{cafe.ID, shop.ID})
	require.NoError(t, err)

	cache, err := parsecache.New(16)
	require.NoError(t, err)
	svc := availability.NewService(hours.NewEvaluator(kst, 30*time.Minute), cache, &logger)

	srv := NewHTTPServer(opts, Deps{
		Places:       db,
		Records:      placecache.New(db, nil, 0, &logger),
		Availability: svc,
		Export:       export.NewWriter(svc),
		Ready:        db.PingContext,
		Logger:       &logger,
		Now:          func() time.Time { return testNow },
	})

	return &fixture{handler: srv.Handler(), db: db, cafeID: cafe.ID, shopID: shop.ID, courseID: courseID}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHandlePlaces(t *testing.T) {
	f := setupServer(t, Options{})

	w := f.do(t, http.MethodGet, "/api/places", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[struct {
		Places []PlaceResponse `json:"places"`
	}](t, w)
	require.Len(t, resp.Places, 2)
	byName := map[string]hours.State{}
	for _, p := range resp.Places {
		byName[p.Name] = p.Status.State
	}
	assert.Equal(t, hours.StateOpen, byName["카페"])
	assert.Equal(t, hours.StateClosed, byName["서점"])
}

func TestHandlePlaceStatus(t *testing.T) {
	f := setupServer(t, Options{})

	tests := []struct {
		name  string
		query string
		want  hours.State
		note  string
	}{
		{name: "default clock", query: "", want: hours.StateClosed},
		{name: "open", query: "?at=2026-10-21T12:00:00%2B09:00", want: hours.StateOpen},
		{name: "break", query: "?at=2026-10-21T14:30:00%2B09:00", want: hours.StateOnBreak},
		{name: "closing soon", query: "?at=2026-10-21T18:40:00%2B09:00", want: hours.StateClosingSoon},
		{name: "weekly closure", query: "?at=2026-10-19T12:00:00%2B09:00", want: hours.StateClosed, note: "정기휴무"},
		{name: "utc instant", query: "?at=2026-10-21T03:00:00Z", want: hours.StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/api/places/"+itoa(f.shopID)+"/status"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			got := decode[availability.PlaceStatus](t, w)
			assert.Equal(t, tt.want, got.Status.State)
			assert.Equal(t, tt.note, got.Status.Note)
			assert.Equal(t, f.shopID, got.PlaceID)
		})
	}
}

func TestHandlePlaceStatus_Errors(t *testing.T) {
	f := setupServer(t, Options{})

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/places/abc/status", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/places/999/status", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/places/1/status?at=tomorrow", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(t, http.MethodPost, "/api/places/1/status", nil).Code)
}

func TestHandleCourseStatus(t *testing.T) {
	f := setupServer(t, Options{})

	w := f.do(t, http.MethodGet, "/api/courses/"+itoa(f.courseID)+"/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[availability.CourseSummary](t, w)
	require.Len(t, got.Places, 2)
	assert.Equal(t, hours.StateOpen, got.Places[0].Status.State)
	assert.Equal(t, hours.StateClosed, got.Places[1].Status.State)
	assert.Equal(t, 1, got.ClosedCount)
	assert.True(t, got.HasClosed)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/courses/999/status", nil).Code)
}

func TestHandleParse(t *testing.T) {
	f := setupServer(t, Options{})

	w := f.do(t, http.MethodPost, "/api/hours/parse", map[string]string{"text": "금-월: 10:00-20:00"})
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[ParseResponse](t, w)
	assert.Equal(t, hours.DialectMultiSegment, got.Dialect)
	require.Len(t, got.Groups, 1)
	assert.Equal(t, hours.DayRange{Start: hours.Friday, Len: 4}, got.Groups[0].Days)
	assert.Equal(t, "금-월: 10:00-20:00", got.Canonical)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/hours/parse", "not json").Code)
}

func TestHandleFormat(t *testing.T) {
	f := setupServer(t, Options{})

	body := map[string]any{
		"groups": []map[string]any{
			{
				"days":   []int{0, 1, 5, 6},
				"ranges": []map[string]string{{"open": "10:00", "close": "20:00"}},
			},
			{
				"days":   []int{2, 4},
				"ranges": []map[string]string{{"open": "11:00", "close": "21:00"}},
				"break":  map[string]string{"start": "14:00", "end": "17:00"},
			},
		},
	}
	w := f.do(t, http.MethodPost, "/api/hours/format", body)
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[map[string]any](t, w)
	assert.Equal(t, "금-월: 10:00-20:00; 화: 11:00-21:00 (브레이크 14:00-17:00); 목: 11:00-21:00 (브레이크 14:00-17:00)", got["text"])
}

func TestHandleFormat_Rejects(t *testing.T) {
	f := setupServer(t, Options{})

	tests := []struct {
		name  string
		group map[string]any
	}{
		{name: "no days", group: map[string]any{"days": []int{}, "ranges": []map[string]string{{"open": "10:00", "close": "20:00"}}}},
		{name: "no ranges", group: map[string]any{"days": []int{1}}},
		{name: "overnight", group: map[string]any{"days": []int{1}, "ranges": []map[string]string{{"open": "22:00", "close": "02:00"}}}},
		{name: "bad break", group: map[string]any{
			"days":   []int{1},
			"ranges": []map[string]string{{"open": "10:00", "close": "20:00"}},
			"break":  map[string]string{"start": "15:00", "end": "14:00"},
		}},
		{name: "bad weekday", group: map[string]any{"days": []int{9}, "ranges": []map[string]string{{"open": "10:00", "close": "20:00"}}}},
		{name: "bad time", group: map[string]any{"days": []int{1}, "ranges": []map[string]string{{"open": "25:00", "close": "26:00"}}}},
		{name: "overlapping ranges", group: map[string]any{
			"days":   []int{1},
			"ranges": []map[string]string{{"open": "09:00", "close": "12:00"}, {"open": "11:00", "close": "14:00"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/hours/format", map[string]any{"groups": []map[string]any{tt.group}})
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleFormat_Overlap(t *testing.T) {
	f := setupServer(t, Options{})

	body := map[string]any{"groups": []map[string]any{{
		"days":   []int{1},
		"ranges": []map[string]string{{"open": "09:00", "close": "12:00"}, {"open": "11:00", "close": "14:00"}},
	}}}
	w := f.do(t, http.MethodPost, "/api/hours/format", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	got := decode[struct {
		Error  string        `json:"error"`
		Issues []hours.Issue `json:"issues"`
	}](t, w)
	assert.Contains(t, got.Error, "11:00-14:00")
	require.Len(t, got.Issues, 1)
	assert.Equal(t, hours.ReasonOverlappingRanges, got.Issues[0].Reason)
}

func TestHandleFormat_SortsRanges(t *testing.T) {
	f := setupServer(t, Options{})

	body := map[string]any{"groups": []map[string]any{{
		"days":   []int{2},
		"ranges": []map[string]string{{"open": "17:00", "close": "21:00"}, {"open": "11:00", "close": "14:00"}},
	}}}
	w := f.do(t, http.MethodPost, "/api/hours/format", body)
	require.Equal(t, http.StatusOK, w.Code)

	text := decode[map[string]any](t, w)["text"]
	assert.Equal(t, "화: 11:00-14:00, 17:00-21:00", text)

	// The stored text reads back with nothing dropped.
	assert.True(t, hours.Diagnose(text.(string)).OK())
}

func TestHandleLint(t *testing.T) {
	f := setupServer(t, Options{})

	w := f.do(t, http.MethodPost, "/api/hours/lint", map[string]string{"text": "월-금: 09:00-18:00; 토 휴무"})
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[struct {
		Dialect string        `json:"dialect"`
		Issues  []hours.Issue `json:"issues"`
		OK      bool          `json:"ok"`
	}](t, w)
	assert.False(t, got.OK)
	assert.Equal(t, hours.DialectMultiSegment, got.Dialect)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, "토 휴무", got.Issues[0].Segment)
	assert.Equal(t, hours.ReasonMissingSeparator, got.Issues[0].Reason)

	clean := decode[map[string]any](t, f.do(t, http.MethodPost, "/api/hours/lint", map[string]string{"text": "매일 09:00-18:00"}))
	assert.Equal(t, true, clean["ok"])
}

func TestAuthoringRateLimit(t *testing.T) {
	f := setupServer(t, Options{AuthoringRPS: 0.001, AuthoringBurst: 2})

	body := map[string]string{"text": "매일 09:00-18:00"}
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/hours/lint", body).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/hours/parse", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(t, http.MethodPost, "/api/hours/lint", body).Code)

	// read endpoints are not limited
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/places", nil).Code)
}

func TestRequestID(t *testing.T) {
	f := setupServer(t, Options{})

	w := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(headerRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(headerRequestID))
}

func TestReadyz(t *testing.T) {
	f := setupServer(t, Options{})
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/readyz", nil).Code)

	logger := zerolog.New(io.Discard)
	down := NewHTTPServer(Options{}, Deps{
		Ready:  func(context.Context) error { return errors.New("down") },
		Logger: &logger,
	})
	rec := httptest.NewRecorder()
	down.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestExportHours(t *testing.T) {
	f := setupServer(t, Options{})

	w := f.do(t, http.MethodGet, "/api/export/hours.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "hours_20261021_1000.xlsx")

	wb, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(wb.GetSheetList()[0])
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
