package timeutil

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeFormat is returned when a clock string is not valid "HH:MM".
var ErrInvalidTimeFormat = errors.New("invalid time format, expected HH:MM")

// StandardWorkDayMinutes is the fallback working day length used for
// progress projection when no organization config is available.
const StandardWorkDayMinutes = 420

// maxOpenShiftHours caps real-time hours for shifts that were never
// closed, guarding against clock skew and stuck open sessions.
const maxOpenShiftHours = 24.0

// TimeToMinutes parses a strict "HH:MM" clock string into minutes since
// midnight.
func TimeToMinutes(hhmm string) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, ErrInvalidTimeFormat
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, ErrInvalidTimeFormat
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, ErrInvalidTimeFormat
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, ErrInvalidTimeFormat
	}

	return hour*60 + minute, nil
}

// ParseDurationToMinutes converts a human duration string into minutes.
// Accepted forms: "H:MM", "H:MM:SS", "Xh Ym", "Xh", "Ym" and decimal
// hours ("8.5"). Unparseable input degrades to 0 instead of erroring so
// that one malformed historical value never fails a whole report.
func ParseDurationToMinutes(text string) int {
	s := strings.TrimSpace(strings.ToLower(text))
	if s == "" {
		return 0
	}

	// "H:MM" or "H:MM:SS"
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) == 2 || len(parts) == 3 {
			hours, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
			minutes, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err1 == nil && err2 == nil && hours >= 0 && minutes >= 0 {
				return hours*60 + minutes
			}
		}
		return 0
	}

	// "Xh Ym", "Xh" or "Ym"
	if strings.Contains(s, "h") || strings.Contains(s, "m") {
		total := 0
		matched := false
		for _, field := range strings.Fields(s) {
			if v, ok := strings.CutSuffix(field, "h"); ok {
				if hours, err := strconv.ParseFloat(v, 64); err == nil && hours >= 0 {
					total += int(hours * 60)
					matched = true
				}
				continue
			}
			if v, ok := strings.CutSuffix(field, "m"); ok {
				if minutes, err := strconv.Atoi(v); err == nil && minutes >= 0 {
					total += minutes
					matched = true
				}
			}
		}
		if matched {
			return total
		}
		return 0
	}

	// Decimal hours, e.g. "8.5"
	if hours, err := strconv.ParseFloat(s, 64); err == nil && hours >= 0 {
		return int(hours * 60)
	}

	return 0
}

// RealTimeHours returns the hours worked for a shift. A closed shift uses
// its stored duration and is independent of now; an open shift is measured
// against now, capped at 24 hours.
func RealTimeHours(checkIn time.Time, checkOut *time.Time, workMinutes *int, now time.Time) float64 {
	if checkOut != nil {
		if workMinutes != nil {
			return float64(*workMinutes) / 60.0
		}
		return checkOut.Sub(checkIn).Hours()
	}

	hours := now.Sub(checkIn).Hours()
	if hours < 0 {
		return 0
	}
	if hours > maxOpenShiftHours {
		return maxOpenShiftHours
	}
	return hours
}

// WorkDayProgress returns the fraction of a standard working day elapsed
// since startHHMM, clamped to [0,1]. Used for projection only, never for
// authoritative totals.
func WorkDayProgress(now time.Time, startHHMM string) float64 {
	startMins, err := TimeToMinutes(startHHMM)
	if err != nil {
		return 0
	}

	nowMins := now.Hour()*60 + now.Minute()
	elapsed := nowMins - startMins
	if elapsed <= 0 {
		return 0
	}
	progress := float64(elapsed) / float64(StandardWorkDayMinutes)
	if progress > 1 {
		return 1
	}
	return progress
}

// MinuteOfDay returns minutes since local midnight for t.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
