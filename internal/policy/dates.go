package policy

import (
	"fmt"
	"time"
)

// Founding is the first month of activity. The exact day is unknown; the
// 1st keeps the month count deterministic.
var Founding = time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)

// MonthsOfOperation counts whole calendar months between the founding
// month and now in loc. Never negative.
func MonthsOfOperation(now time.Time, loc *time.Location) int {
	if loc != nil {
		now = now.In(loc)
	}
	months := (now.Year()-Founding.Year())*12 + int(now.Month()-Founding.Month())
	if months < 0 {
		return 0
	}
	return months
}

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// MonthName returns the lower-case pt-BR name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// FormatEventDate renders "15 de março de 2025".
func FormatEventDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), MonthName(t.Month()), t.Year())
}

// FormatShortDate renders "15/03/2025".
func FormatShortDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
