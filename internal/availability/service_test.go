package availability

import (
	"io"
	"testing"
	"time"

	"placehours/internal/hours"
	"placehours/internal/model"
	"placehours/internal/parsecache"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var kst = time.FixedZone("KST", 9*60*60)

// 2026-10-18 is a Sunday.
func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.October, day, hour, minute, 0, 0, kst)
}

type mockParser struct {
	mock.Mock
}

func (m *mockParser) Parse(raw string) hours.Schedule {
	args := m.Called(raw)
	return args.Get(0).(hours.Schedule)
}

func newService(t *testing.T, p Parser) *Service {
	t.Helper()
	logger := zerolog.New(io.Discard)
	return NewService(hours.NewEvaluator(kst, 30*time.Minute), p, &logger)
}

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }

func TestEvaluateStatus(t *testing.T) {
	svc := newService(t, nil)

	tests := []struct {
		name   string
		text   string
		closed []model.ClosedDay
		now    time.Time
		want   hours.State
		note   string
	}{
		{name: "open", text: "월-금: 09:00-18:00", now: at(21, 10, 0), want: hours.StateOpen},
		{
			name:   "weekly closure",
			text:   "월-금: 09:00-18:00",
			closed: []model.ClosedDay{{DayOfWeek: intPtr(3), Note: strPtr("정기휴무")}},
			now:    at(21, 10, 0),
			want:   hours.StateClosed,
			note:   "정기휴무",
		},
		{
			name:   "date closure",
			text:   "매일 10:00-22:00",
			closed: []model.ClosedDay{{SpecificDate: strPtr("2026-10-21"), Note: strPtr("내부 공사")}},
			now:    at(21, 12, 0),
			want:   hours.StateClosed,
			note:   "내부 공사",
		},
		{name: "break", text: "월: 11:00-21:00 (브레이크 14:00-17:00)", now: at(19, 15, 0), want: hours.StateOnBreak},
		{name: "empty", text: "", now: at(21, 10, 0), want: hours.StateUnknown},
		{name: "no coverage", text: "화-목: 10:00-20:00", now: at(18, 12, 0), want: hours.StateUnknown},
		{name: "closing soon", text: "월-금: 09:00-18:00", now: at(21, 17, 45), want: hours.StateClosingSoon},
		{
			name:   "malformed closure ignored",
			text:   "월-금: 09:00-18:00",
			closed: []model.ClosedDay{{DayOfWeek: intPtr(9)}, {SpecificDate: strPtr("yesterday")}},
			now:    at(21, 10, 0),
			want:   hours.StateOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.EvaluateStatus(tt.text, tt.closed, tt.now)
			assert.Equal(t, tt.want, got.State)
			assert.Equal(t, tt.note, got.Note)
		})
	}
}

func TestEvaluateStatus_CachesScheduleNotStatus(t *testing.T) {
	cache, err := parsecache.New(8)
	require.NoError(t, err)
	svc := newService(t, cache)

	text := "월-금: 09:00-18:00"
	morning := svc.EvaluateStatus(text, nil, at(21, 10, 0))
	evening := svc.EvaluateStatus(text, nil, at(21, 17, 45))
	night := svc.EvaluateStatus(text, nil, at(21, 23, 0))

	assert.Equal(t, hours.StateOpen, morning.State)
	assert.Equal(t, hours.StateClosingSoon, evening.State)
	assert.Equal(t, hours.StateClosed, night.State)
	assert.Equal(t, 1, cache.Len())
}

func TestEvaluateStatus_ParsesThroughParser(t *testing.T) {
	p := new(mockParser)
	text := "월-금: 09:00-18:00"
	p.On("Parse", text).Return(hours.Parse(text)).Twice()

	svc := newService(t, p)
	assert.Equal(t, hours.StateOpen, svc.EvaluateStatus(text, nil, at(21, 10, 0)).State)
	assert.Equal(t, hours.StateClosed, svc.EvaluateStatus(text, nil, at(21, 19, 0)).State)

	p.AssertExpectations(t)
}

func testCourse() *model.Course {
	return &model.Course{
		ID:   7,
		Name: "성수 산책",
		Places: []model.Place{
			{ID: 1, Name: "카페", OpeningHours: "매일 08:00-20:00"},
			{ID: 2, Name: "서점", OpeningHours: "화-일: 11:00-19:00"},
			{ID: 3, Name: "갤러리", OpeningHours: "연중무휴"},
			{
				ID:           4,
				Name:         "식당",
				OpeningHours: "매일 11:00-21:00",
				ClosedDays:   []model.ClosedDay{{DayOfWeek: intPtr(1), Note: strPtr("월요일 휴무")}},
			},
		},
	}
}

func TestCourseAggregates(t *testing.T) {
	svc := newService(t, nil)
	c := testCourse()

	// Monday noon: bookshop has no coverage, restaurant closed weekly.
	monday := at(19, 12, 0)
	assert.True(t, svc.HasClosedPlace(c, monday))
	assert.Equal(t, 1, svc.CountClosedPlaces(c, monday))

	// Tuesday noon: everything with hours is open.
	tuesday := at(20, 12, 0)
	assert.False(t, svc.HasClosedPlace(c, tuesday))
	assert.Equal(t, 0, svc.CountClosedPlaces(c, tuesday))

	// Tuesday 22:00: all three scheduled places closed, gallery unknown.
	late := at(20, 22, 0)
	summary := svc.CourseSummary(c, late)
	assert.Equal(t, 3, summary.ClosedCount)
	assert.True(t, summary.HasClosed)
	require.Len(t, summary.Places, 4)
	assert.Equal(t, hours.StateUnknown, summary.Places[2].Status.State)
	assert.Equal(t, int64(7), summary.CourseID)
}

func TestCourseAggregates_Empty(t *testing.T) {
	svc := newService(t, nil)
	c := &model.Course{ID: 1}
	assert.False(t, svc.HasClosedPlace(c, at(20, 12, 0)))
	assert.Equal(t, 0, svc.CountClosedPlaces(c, at(20, 12, 0)))
	assert.Empty(t, svc.CourseSummary(c, at(20, 12, 0)).Places)
}
