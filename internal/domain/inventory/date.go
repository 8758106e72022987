// Package inventory reúne reglas puras del inventario: costo promedio y fecha efectiva de movimientos.
package inventory

import (
	"fmt"
	"strings"
	"time"
)

const dateOnly = "2006-01-02"

// ParseMovementDate interpreta la fecha efectiva de un movimiento.
//   - "" → now
//   - "YYYY-MM-DD" → ese día a las 12:00 en loc, para que el día no cambie al guardarse en UTC
//   - RFC3339 → tal cual
func ParseMovementDate(raw string, loc *time.Location, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if len(raw) == len(dateOnly) {
		day, err := time.ParseInLocation(dateOnly, raw, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("fecha inválida %q: %w", raw, err)
		}
		return time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, loc), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida %q: %w", raw, err)
	}
	return t, nil
}

// MonthRange devuelve [inicio, fin) del mes, del año (month == 0) o el rango abierto (year == 0).
func MonthRange(month, year int, loc *time.Location) (from, to *time.Time) {
	if year <= 0 {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	var start, end time.Time
	if month >= 1 && month <= 12 {
		start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0)
	} else {
		start = time.Date(year, 1, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(1, 0, 0)
	}
	return &start, &end
}
