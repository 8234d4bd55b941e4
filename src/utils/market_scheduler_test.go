package utils

import (
	"testing"
	"time"

	"portfolio-stream/src/logger"
	"portfolio-stream/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schedulerLogger() *logger.Logger {
	return logger.NewLogger(&models.MConfig{Name: "test", LogLevel: "ERROR"}, "calendar-test")
}

func TestMarketSchedulerTrackIsAdditive(t *testing.T) {
	ms := NewMarketScheduler(schedulerLogger())

	ms.Track([]string{"RELIANCE:NSE", "AAPL:NASDAQ"})
	assert.Len(t, ms.Calendars, 2)

	// Re-tracking keeps existing calendars and adds the new one.
	ms.Track([]string{"RELIANCE:NSE", "TCS:NSE"})
	assert.Len(t, ms.Calendars, 3)
}

func TestMarketSchedulerEmptySetReportsOpen(t *testing.T) {
	ms := NewMarketScheduler(schedulerLogger())
	assert.True(t, ms.AnyMarketOpen())
}

func TestGetCalendarResolvesExchange(t *testing.T) {
	cal := GetCalendar("RELIANCE:NSE")
	require.NotNil(t, cal)
	assert.NotNil(t, cal.Timezone)

	// Unknown exchanges fall back to NYSE hours rather than nil.
	unknown := GetCalendar("FOO:NOWHERE")
	require.NotNil(t, unknown)

	bare := GetCalendar("AAPL")
	require.NotNil(t, bare)
}

func TestFallbackCalendarWeekdayHours(t *testing.T) {
	tc := &TradingCalendar{Fallback: true, Timezone: time.UTC}

	// 2026-08-31 is a Monday.
	monday := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	assert.True(t, tc.IsTradingDay(monday))
	assert.False(t, tc.IsTradingDay(saturday))

	assert.True(t, tc.IsOpenOnMinute(time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)))
	assert.False(t, tc.IsOpenOnMinute(time.Date(2026, 8, 31, 9, 29, 0, 0, time.UTC)))
	assert.False(t, tc.IsOpenOnMinute(time.Date(2026, 8, 31, 16, 0, 0, 0, time.UTC)))
	assert.False(t, tc.IsOpenOnMinute(saturday))
}
