package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ErrorResponse cuerpo de error HTTP. Details lleva los mensajes de validación agregados.
type ErrorResponse struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Details  []string `json:"details,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
}

// DateLayout formato de fecha en JSON (columnas DATE).
const DateLayout = "2006-01-02"

// Date fecha sin hora. Acepta "2006-01-02" o RFC 3339 y se serializa como "2006-01-02".
type Date struct {
	time.Time
}

// NewDate trunca t al día (UTC).
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DatePtr devuelve nil para nil.
func DatePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := NewDate(*t)
	return &d
}

// TimePtr convierte *Date a *time.Time.
func (d *Date) TimePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// MarshalJSON implementa json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON implementa json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("fecha inválida: %w", err)
	}
	if s == "" {
		return nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		*d = NewDate(t)
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("fecha inválida %q", s)
	}
	*d = NewDate(t)
	return nil
}
