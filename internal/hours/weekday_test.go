package hours

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDayToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    DayRange
		days    []Weekday
		wantErr bool
	}{
		{name: "single", token: "월", want: DayRange{Start: Monday, Len: 1}, days: []Weekday{Monday}},
		{name: "ascending", token: "월-금", want: DayRange{Start: Monday, Len: 5}, days: []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}},
		{name: "wraparound", token: "금-월", want: DayRange{Start: Friday, Len: 4}, days: []Weekday{Friday, Saturday, Sunday, Monday}},
		{name: "same day range", token: "수-수", want: DayRange{Start: Wednesday, Len: 1}, days: []Weekday{Wednesday}},
		{name: "every day", token: "매일", want: DayRange{Start: Sunday, Len: 7}},
		{name: "padded", token: " 화 - 목 ", want: DayRange{Start: Tuesday, Len: 3}},
		{name: "unknown glyph", token: "X", wantErr: true},
		{name: "unknown range end", token: "월-X", wantErr: true},
		{name: "three parts", token: "월-화-수", wantErr: true},
		{name: "empty", token: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDayToken(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownWeekday)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.days != nil {
				assert.Equal(t, tt.days, got.Days())
			}
		})
	}
}

func TestDayRangeContainsAndLabel(t *testing.T) {
	r := Span(Saturday, Monday)

	assert.True(t, r.Contains(Saturday))
	assert.True(t, r.Contains(Sunday))
	assert.True(t, r.Contains(Monday))
	assert.False(t, r.Contains(Tuesday))
	assert.False(t, r.Contains(Friday))
	assert.Equal(t, "토-월", r.Label())
	assert.Equal(t, Monday, r.End())

	assert.Equal(t, "수", SingleDay(Wednesday).Label())
	assert.Equal(t, "일-토", EveryDay().Label())
	assert.False(t, DayRange{Start: Monday, Len: 0}.Contains(Monday))
}

func TestDayRangeFromSet(t *testing.T) {
	tests := []struct {
		name    string
		days    []Weekday
		want    DayRange
		wantErr error
	}{
		{name: "sorted set keeps wraparound", days: []Weekday{Sunday, Monday, Saturday}, want: DayRange{Start: Saturday, Len: 3}},
		{name: "plain run", days: []Weekday{Wednesday, Monday, Tuesday}, want: DayRange{Start: Monday, Len: 3}},
		{name: "single", days: []Weekday{Friday}, want: DayRange{Start: Friday, Len: 1}},
		{name: "duplicates ignored", days: []Weekday{Friday, Friday, Saturday}, want: DayRange{Start: Friday, Len: 2}},
		{name: "full week", days: []Weekday{6, 5, 4, 3, 2, 1, 0}, want: EveryDay()},
		{name: "gap", days: []Weekday{Monday, Wednesday}, wantErr: ErrNotContiguous},
		{name: "empty", days: nil, wantErr: ErrEmptyDays},
		{name: "out of range", days: []Weekday{9}, wantErr: ErrUnknownWeekday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DayRangeFromSet(tt.days)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitDays(t *testing.T) {
	runs, err := SplitDays([]Weekday{Monday, Wednesday, Thursday, Saturday, Sunday})
	require.NoError(t, err)
	assert.Equal(t, []DayRange{
		{Start: Wednesday, Len: 2},
		{Start: Saturday, Len: 3},
	}, runs)

	runs, err = SplitDays([]Weekday{0, 1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, []DayRange{EveryDay()}, runs)
}

func TestGroupsFromDays(t *testing.T) {
	ranges := []TimeRange{{Open: MustTime("10:00"), Close: MustTime("20:00")}}
	groups, err := GroupsFromDays([]Weekday{Sunday, Monday, Saturday}, ranges, nil)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "토-월: 10:00-20:00", Serialize(groups))

	groups, err = GroupsFromDays([]Weekday{Monday, Wednesday}, ranges, &Break{Start: MustTime("13:00"), End: MustTime("14:00")})
	require.NoError(t, err)
	assert.Equal(t, "월: 10:00-20:00 (브레이크 13:00-14:00); 수: 10:00-20:00 (브레이크 13:00-14:00)", Serialize(groups))
	assert.NotSame(t, groups[0].Break, groups[1].Break)
}
