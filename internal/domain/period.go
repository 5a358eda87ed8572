package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Accepted bounds of a reporting period
const (
	MinYear = 2000
	MaxYear = 2200
)

// Period is a reporting month of a space
type Period struct {
	Month int
	Year  int
}

var monthNames = []string{
	"", "Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// Valid reports whether month and year are within the accepted bounds
func (p Period) Valid() bool {
	return ValidMonth(p.Month) && ValidYear(p.Year)
}

// AddMonths shifts the period, wrapping across years
func (p Period) AddMonths(n int) Period {
	idx := p.Year*12 + (p.Month - 1) + n
	return Period{Month: idx%12 + 1, Year: idx / 12}
}

// String returns the period in MM_YYYY format
func (p Period) String() string {
	return fmt.Sprintf("%02d_%d", p.Month, p.Year)
}

// MonthName returns the Russian name of a month number, or the number itself
// when it is out of range.
func MonthName(month int) string {
	if !ValidMonth(month) {
		return strconv.Itoa(month)
	}
	return monthNames[month]
}

// ParsePeriod parses the MM_YYYY form produced by String
func ParsePeriod(s string) (Period, error) {
	month, year, ok := strings.Cut(s, "_")
	if !ok {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period month %q: %w", month, err)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period year %q: %w", year, err)
	}
	p := Period{Month: m, Year: y}
	if !p.Valid() {
		return Period{}, fmt.Errorf("period %q out of range", s)
	}
	return p, nil
}

// ValidMonth reports whether m is a calendar month number
func ValidMonth(m int) bool {
	return m >= 1 && m <= 12
}

// ValidYear reports whether y is within the accepted year bounds
func ValidYear(y int) bool {
	return y >= MinYear && y <= MaxYear
}
