package ict

import (
	"time"

	"github.com/scmhub/calendar"
)

// Session names the intraday window a timestamp falls into, Eastern time.
type Session string

const (
	SessionNYKill   Session = "ny_kill"  // 07:00-10:00 ET
	SessionReversal Session = "reversal" // 10:00-11:30 ET
	SessionOther    Session = "other"
)

// SessionClock buckets timestamps into trading sessions and hand-tuned
// confidence levels. Trading days come from the NYSE calendar; when the
// calendar is unavailable it falls back to plain Mon-Fri.
type SessionClock struct {
	cal *calendar.Calendar
	loc *time.Location
}

// NewSessionClock builds a clock on the NYSE (xnys) calendar.
func NewSessionClock() *SessionClock {
	cal := calendar.GetCalendar("xnys")
	if cal != nil {
		return &SessionClock{cal: cal, loc: cal.Loc}
	}

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &SessionClock{loc: loc}
}

// Session returns the named window for t.
func (sc *SessionClock) Session(t time.Time) Session {
	m := sc.minuteOfDay(t)
	switch {
	case m >= 7*60 && m < 10*60:
		return SessionNYKill
	case m >= 10*60 && m < 11*60+30:
		return SessionReversal
	}
	return SessionOther
}

// Confidence maps t to the session confidence bucket: the opening hour
// scores highest, the close ramp next, lunch lowest of the active windows,
// and everything off-session (or a non-trading day) bottoms out at 2.
func (sc *SessionClock) Confidence(t time.Time) int {
	if !sc.TradingDay(t) {
		return 2
	}

	m := sc.minuteOfDay(t)
	switch {
	case m >= 9*60+30 && m < 10*60+30:
		return 10
	case m >= 10*60+30 && m < 11*60+30:
		return 7
	case m >= 11*60+30 && m < 14*60:
		return 4
	case m >= 14*60 && m < 16*60+15:
		return 6
	}
	return 2
}

// TradingDay reports whether t falls on a business day.
func (sc *SessionClock) TradingDay(t time.Time) bool {
	t = t.In(sc.loc)
	if sc.cal != nil {
		return sc.cal.IsBusinessDay(t)
	}
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func (sc *SessionClock) minuteOfDay(t time.Time) int {
	t = t.In(sc.loc)
	return t.Hour()*60 + t.Minute()
}
