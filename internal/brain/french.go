package brain

import (
	"fmt"
	"time"
)

var frenchWeekdays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FrenchLongDate formats t as "jeudi 16 octobre 2026".
func FrenchLongDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", frenchWeekdays[t.Weekday()], t.Day(), frenchMonths[t.Month()-1], t.Year())
}

// FrenchClock formats t as "14:05".
func FrenchClock(t time.Time) string {
	return t.Format("15:04")
}

// FrenchDayMonth formats t as "16/10".
func FrenchDayMonth(t time.Time) string {
	return t.Format("02/01")
}
