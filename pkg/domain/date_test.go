package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	t.Run("decodes ISO dates", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"1990-04-23"`), &d))
		assert.Equal(t, Date{Year: 1990, Month: time.April, Day: 23}, d)
	})

	t.Run("encodes as ISO string", func(t *testing.T) {
		out, err := json.Marshal(MustParseDate("2001-12-01"))
		require.NoError(t, err)
		assert.JSONEq(t, `"2001-12-01"`, string(out))
	})

	t.Run("rejects non-string values", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`19900423`), &d))
		assert.Error(t, json.Unmarshal([]byte(`{"year":1990}`), &d))
	})

	t.Run("rejects other layouts and impossible dates", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`"23/04/1990"`), &d))
		assert.Error(t, json.Unmarshal([]byte(`"1990-02-30"`), &d))
		assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
	})
}

func TestDateOrdering(t *testing.T) {
	today := DateOf(time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC))

	assert.True(t, MustParseDate("2024-03-09").Before(today))
	assert.False(t, MustParseDate("2024-03-10").Before(today))
	assert.False(t, MustParseDate("2024-03-11").Before(today))
}

func TestTodayUTC(t *testing.T) {
	east := time.FixedZone("UTC+10", 10*60*60)
	west := time.FixedZone("UTC-8", -8*60*60)

	assert.Equal(t, MustParseDate("2024-03-10"), TodayUTC(time.Date(2024, time.March, 11, 5, 0, 0, 0, east)))
	assert.Equal(t, MustParseDate("2024-03-11"), TodayUTC(time.Date(2024, time.March, 10, 20, 0, 0, 0, west)))
	assert.Equal(t, MustParseDate("2024-03-11"), DateOf(time.Date(2024, time.March, 11, 5, 0, 0, 0, east)))
}
