package availability

import (
	"testing"

	"placehours/internal/hours"
	"placehours/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosuresFromRecords(t *testing.T) {
	records := []model.ClosedDay{
		{DayOfWeek: intPtr(1), Note: strPtr("정기휴무")},
		{SpecificDate: strPtr("2026-12-25")},
		{DayOfWeek: intPtr(7)},
		{SpecificDate: strPtr("25.12.2026")},
	}

	got := ClosuresFromRecords(records, nil)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Weekday)
	assert.Equal(t, hours.Monday, *got[0].Weekday)
	assert.Equal(t, "정기휴무", got[0].Note)
	require.NotNil(t, got[1].Date)
	assert.Equal(t, "2026-12-25", got[1].Date.String())
}

func TestClosuresFromRecords_Empty(t *testing.T) {
	assert.Nil(t, ClosuresFromRecords(nil, nil))
}

func TestRecordFromClosure(t *testing.T) {
	weekly := RecordFromClosure(hours.WeeklyClosure(hours.Sunday, "일요일 휴무"))
	require.NotNil(t, weekly.DayOfWeek)
	assert.Equal(t, 0, *weekly.DayOfWeek)
	assert.Nil(t, weekly.SpecificDate)
	assert.Equal(t, "일요일 휴무", *weekly.Note)

	date, err := hours.ParseDate("2026-01-01")
	require.NoError(t, err)
	oneOff := RecordFromClosure(hours.DateClosure(date, ""))
	assert.Nil(t, oneOff.DayOfWeek)
	assert.Equal(t, "2026-01-01", *oneOff.SpecificDate)
	assert.Nil(t, oneOff.Note)

	back := ClosuresFromRecords([]model.ClosedDay{weekly, oneOff}, nil)
	assert.Equal(t, hours.Closures{hours.WeeklyClosure(hours.Sunday, "일요일 휴무"), hours.DateClosure(date, "")}, back)
}
