package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// TradingCalendar answers market-hours questions via scmhub/calendar.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// Exchange qualifiers to MIC codes (ISO 10383). Symbols use the
// "SYMBOL:EXCHANGE" form; unknown exchanges fall back to NYSE hours.
var exchangeMICs = map[string]string{
	"NSE":    "xbom", // National Stock Exchange of India shares Bombay hours
	"BSE":    "xbom",
	"NYSE":   "xnys",
	"NASDAQ": "xnas",
	"LSE":    "xlon",
	"FRA":    "xfra",
	"PAR":    "xpar",
	"AMS":    "xams",
	"TSE":    "xtks",
	"HKEX":   "xhkg",
	"ASX":    "xasx",
	"KRX":    "xkrx",
	"SSE":    "xshg",
	"SZSE":   "xshe",
	"TSX":    "xtse",
}

// -----------------------------------------------------------------------------

// GetCalendar resolves the calendar for a symbol's exchange qualifier.
func GetCalendar(symbolKey string) *TradingCalendar {
	mic := "xnys"

	if idx := strings.LastIndex(symbolKey, ":"); idx >= 0 {
		exchange := strings.ToUpper(symbolKey[idx+1:])
		if m, ok := exchangeMICs[exchange]; ok {
			mic = m
		}
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		// Simple fallback: Mon-Fri 09:30-16:00 New York time
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}

		hour := t.Hour()
		minute := t.Minute()

		// 9:30 - 16:00 local exchange time
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return tc.Calendar.IsOpen(t)
}
