package hours

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosuresMatch(t *testing.T) {
	holiday := Date{Year: 2026, Month: time.October, Day: 21}
	cs := Closures{
		WeeklyClosure(Wednesday, "정기휴무"),
		DateClosure(holiday, "임시휴무"),
	}

	c, ok := cs.Match(at(21, 10, 0))
	require.True(t, ok)
	assert.Equal(t, "임시휴무", c.Note, "dated closure wins over weekly")

	c, ok = cs.Match(at(28, 10, 0))
	require.True(t, ok)
	assert.Equal(t, "정기휴무", c.Note)

	_, ok = cs.Match(at(22, 10, 0))
	assert.False(t, ok)

	_, ok = Closures(nil).Match(at(22, 10, 0))
	assert.False(t, ok)
}

func TestClosuresAmbiguous(t *testing.T) {
	wd := Friday
	date := Date{Year: 2026, Month: time.October, Day: 21}

	both := Closure{Weekday: &wd, Date: &date, Note: "both"}
	neither := Closure{Note: "neither"}

	assert.True(t, both.Ambiguous())
	assert.True(t, neither.Ambiguous())

	// Both keys set: either one closes.
	_, ok := Closures{both}.Match(at(21, 10, 0))
	assert.True(t, ok)
	_, ok = Closures{both}.Match(at(23, 10, 0))
	assert.True(t, ok)

	// Neither key set: never matches.
	_, ok = Closures{neither}.Match(at(21, 10, 0))
	assert.False(t, ok)

	bad := Weekday(9)
	err := Closures{WeeklyClosure(Monday, ""), both, neither, {Weekday: &bad}}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousClosure)
	assert.ErrorIs(t, err, ErrUnknownWeekday)
	assert.Contains(t, err.Error(), "closure[1]")
	assert.Contains(t, err.Error(), "closure[2]")
	assert.Contains(t, err.Error(), "closure[3]")

	assert.NoError(t, Closures{WeeklyClosure(Monday, "")}.Validate())
}

func TestClosuresSplit(t *testing.T) {
	cs := Closures{
		WeeklyClosure(Monday, "a"),
		DateClosure(Date{Year: 2026, Month: time.January, Day: 1}, "b"),
		WeeklyClosure(Tuesday, "c"),
	}
	assert.Len(t, cs.Weekly(), 2)
	assert.Len(t, cs.OneOff(), 1)
	assert.True(t, cs[0].Recurring())
	assert.False(t, cs[1].Recurring())
}

func TestClosureJSON(t *testing.T) {
	c := DateClosure(Date{Year: 2026, Month: time.January, Day: 1}, "신정")
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2026-01-01","note":"신정"}`, string(b))

	var back Closure
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, c, back)

	_, err = ParseDate("2026/01/01")
	assert.Error(t, err)
}
