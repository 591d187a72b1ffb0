package service

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

const formatoFecha = "2006-01-02"

// rangoFechas turns an inclusive [inicio, fin] pair of calendar dates in loc
// into the half-open UTC interval [desde, hasta) over creation timestamps.
// Both ends must be present for the range to apply; otherwise both results
// are nil.
func rangoFechas(inicio, fin string, loc *time.Location) (*time.Time, *time.Time, error) {
	inicio, fin = strings.TrimSpace(inicio), strings.TrimSpace(fin)
	if inicio == "" || fin == "" {
		return nil, nil, nil
	}
	d, err := time.ParseInLocation(formatoFecha, inicio, loc)
	if err != nil {
		return nil, nil, invalido("fecha_inicio debe tener el formato AAAA-MM-DD.")
	}
	h, err := time.ParseInLocation(formatoFecha, fin, loc)
	if err != nil {
		return nil, nil, invalido("fecha_fin debe tener el formato AAAA-MM-DD.")
	}
	desde := d.UTC()
	hasta := h.AddDate(0, 0, 1).UTC()
	return &desde, &hasta, nil
}

// parseFecha reads an optional calendar date. Empty input yields nil.
func parseFecha(s string) (*datatypes.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(formatoFecha, s)
	if err != nil {
		return nil, invalido("La fecha de necesidad debe tener el formato AAAA-MM-DD.")
	}
	d := datatypes.Date(t)
	return &d, nil
}

// formatearFecha is the inverse of parseFecha.
func formatearFecha(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := time.Time(*d).Format(formatoFecha)
	return &s
}
