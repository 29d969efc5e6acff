package godbf

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tells which variant a Value holds.
type Kind int

const (
	KindAbsent Kind = iota
	KindNumber
	KindText
	KindBool
	KindDate
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "boolean"
	case KindDate:
		return "date"
	case KindBytes:
		return "bytes"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a typed cell value. The zero Value is absent and is written as a
// blank slot. Every variant except absent may also be null.
type Value struct {
	kind Kind
	null bool
	// set for NaN and infinite floats, which no field can hold
	invalid bool

	num  decimal.Decimal
	text string
	b    bool
	date time.Time
	raw  []byte
}

func NumberValue(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d}
}

func IntValue(i int64) Value {
	return Value{kind: KindNumber, num: decimal.NewFromInt(i)}
}

func FloatValue(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{kind: KindNumber, invalid: true}
	}
	return Value{kind: KindNumber, num: decimal.NewFromFloat(f)}
}

// TextValue holds a string. Written to a NUMBER or FLOAT field the text must
// be a number formatted exactly for that field.
func TextValue(s string) Value {
	return Value{kind: KindText, text: s}
}

func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// DateValue keeps only the calendar date of t.
func DateValue(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func BytesValue(b []byte) Value {
	if b == nil {
		return NullBytes()
	}
	return Value{kind: KindBytes, raw: bytes.Clone(b)}
}

func NullNumber() Value { return Value{kind: KindNumber, null: true} }
func NullText() Value   { return Value{kind: KindText, null: true} }
func NullBool() Value   { return Value{kind: KindBool, null: true} }
func NullDate() Value   { return Value{kind: KindDate, null: true} }
func NullBytes() Value  { return Value{kind: KindBytes, null: true} }

func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is absent or a typed null.
func (v Value) IsNull() bool { return v.kind == KindAbsent || v.null }

func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.kind != KindNumber || v.null || v.invalid {
		return decimal.Decimal{}, false
	}
	return v.num, true
}

func (v Value) Text() (string, bool) {
	if v.kind != KindText || v.null {
		return "", false
	}
	return v.text, true
}

func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool || v.null {
		return false, false
	}
	return v.b, true
}

func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate || v.null {
		return time.Time{}, false
	}
	return v.date, true
}

func (v Value) Bytes() ([]byte, bool) {
	if v.kind != KindBytes || v.null {
		return nil, false
	}
	return v.raw, true
}

// Equal compares kind and payload. Numbers compare by value, so 1.50 equals
// 1.5, and any two null values are equal.
func (v Value) Equal(o Value) bool {
	if v.IsNull() || o.IsNull() {
		return v.IsNull() && o.IsNull()
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.invalid == o.invalid && v.num.Equal(o.num)
	case KindText:
		return v.text == o.text
	case KindBool:
		return v.b == o.b
	case KindDate:
		return v.date.Equal(o.date)
	case KindBytes:
		return bytes.Equal(v.raw, o.raw)
	}
	return false
}

func (v Value) String() string {
	if v.IsNull() {
		return "<null>"
	}
	switch v.kind {
	case KindNumber:
		if v.invalid {
			return "<invalid number>"
		}
		return v.num.String()
	case KindText:
		return v.text
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindDate:
		return v.date.Format(time.DateOnly)
	case KindBytes:
		return fmt.Sprintf("%d bytes", len(v.raw))
	}
	return "<unknown>"
}
