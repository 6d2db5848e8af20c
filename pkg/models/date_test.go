package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("plain date", func(t *testing.T) {
		d, err := ParseDate("2026-03-09")
		require.NoError(t, err)
		assert.Equal(t, Date{Year: 2026, Month: time.March, Day: 9}, d)
	})

	t.Run("timestamp takes the local calendar day", func(t *testing.T) {
		d, err := ParseDate("2026-03-09T15:00:00Z")
		require.NoError(t, err)
		want := DateOf(time.Date(2026, 3, 9, 15, 0, 0, 0, time.UTC).In(time.Local))
		assert.Equal(t, want, d)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseDate("09/03/2026")
		assert.Error(t, err)
	})
}

// A date written and read back must name the same calendar day no matter
// which zone the process runs in: midnight local, serialized through UTC,
// must never land on the previous day.
func TestDateRoundTripAcrossZones(t *testing.T) {
	zones := []string{"UTC", "Asia/Seoul", "America/Los_Angeles", "Pacific/Kiritimati"}
	for _, name := range zones {
		t.Run(name, func(t *testing.T) {
			loc, err := time.LoadLocation(name)
			require.NoError(t, err)

			midnight := time.Date(2026, 1, 15, 0, 0, 0, 0, loc)
			d := DateOf(midnight)
			assert.Equal(t, "2026-01-15", d.String())

			parsed, err := ParseDate(d.String())
			require.NoError(t, err)
			assert.Equal(t, d, parsed)
		})
	}
}

func TestDateJSON(t *testing.T) {
	d := Date{Year: 2026, Month: time.July, Day: 1}
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-07-01"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)
}

func TestDateBefore(t *testing.T) {
	a := Date{Year: 2026, Month: time.March, Day: 9}
	assert.True(t, a.Before(Date{Year: 2026, Month: time.March, Day: 10}))
	assert.True(t, a.Before(Date{Year: 2026, Month: time.April, Day: 1}))
	assert.False(t, a.Before(a))
	assert.False(t, a.Before(Date{Year: 2025, Month: time.December, Day: 31}))
}
