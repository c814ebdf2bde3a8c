package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// Measurement is one reading returned by the measurements endpoint.
type Measurement struct {
	ID       int64  `json:"id_medicion"`
	TypeName string `json:"nombre_tipo"`
	Value    Datum  `json:"dato"`
}

// Datum holds the raw "dato" literal, which may be a number or a string.
type Datum struct {
	raw json.RawMessage
}

// NumberDatum builds a numeric datum.
func NumberDatum(v float64) Datum {
	return Datum{raw: json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64))}
}

// StringDatum builds a string datum.
func StringDatum(s string) Datum {
	raw, _ := json.Marshal(s)
	return Datum{raw: raw}
}

// UnmarshalJSON keeps a copy of the literal.
func (d *Datum) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return errors.New("models: invalid dato literal")
	}
	d.raw = append(d.raw[:0], trimmed...)
	return nil
}

// MarshalJSON writes the literal back unchanged; a zero Datum is null.
func (d Datum) MarshalJSON() ([]byte, error) {
	if len(d.raw) == 0 {
		return []byte("null"), nil
	}
	return d.raw, nil
}

// String renders the datum for display. Numbers use their shortest decimal
// form, strings are unquoted and any other literal is shown as written.
func (d Datum) String() string {
	if len(d.raw) == 0 {
		return "null"
	}
	switch d.raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(d.raw, &s); err == nil {
			return s
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if f, err := strconv.ParseFloat(string(d.raw), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return string(d.raw)
}
