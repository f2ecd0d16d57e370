package timeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeEndTime(t *testing.T) {
	cases := []struct {
		name     string
		start    string
		duration int
		want     string
	}{
		{"regular lesson", "09:00", 50, "09:50"},
		{"hour boundary", "09:20", 40, "10:00"},
		{"midnight start", "00:00", 15, "00:15"},
		{"wraps past midnight", "23:30", 60, "00:30"},
		{"late evening max duration", "22:00", 240, "02:00"},
		{"minimum duration", "07:45", 15, "08:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeEndTime(tc.start, tc.duration)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComputeEndTimeRejectsMalformedStart(t *testing.T) {
	for _, start := range []string{"", "9:00", "24:00", "12:60", "12-30", "ab:cd", "12:3", "+1:30", "-0:15", "1+:30", "12:+5", "12:-5"} {
		_, err := ComputeEndTime(start, 30)
		assert.Error(t, err, "start=%q", start)
	}
}

func TestParseClockRoundTrip(t *testing.T) {
	minutes, err := ParseClock("13:07")
	require.NoError(t, err)
	assert.Equal(t, 13*60+7, minutes)
	assert.Equal(t, "13:07", FormatClock(minutes))
}

func TestValidDuration(t *testing.T) {
	assert.False(t, ValidDuration(14))
	assert.True(t, ValidDuration(15))
	assert.True(t, ValidDuration(240))
	assert.False(t, ValidDuration(241))
	assert.False(t, ValidDuration(0))
}

func TestValidateHour12(t *testing.T) {
	assert.True(t, ValidateHour12("1"))
	assert.True(t, ValidateHour12("12"))
	assert.False(t, ValidateHour12("0"))
	assert.False(t, ValidateHour12("13"))
	assert.False(t, ValidateHour12("abc"))
	assert.False(t, ValidateHour12(""))
}

func TestValidateMinute(t *testing.T) {
	assert.True(t, ValidateMinute("0"))
	assert.True(t, ValidateMinute("59"))
	assert.False(t, ValidateMinute("60"))
	assert.False(t, ValidateMinute("-1"))
	assert.False(t, ValidateMinute("xx"))
}
