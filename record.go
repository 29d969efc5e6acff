package godbf

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record maps field names to values. Records read from a table keep the
// field order of the table; a Record is never changed after construction.
type Record struct {
	names  []string
	values map[string]Value
}

// NewRecord builds a record from name/value pairs. Names are matched to
// fields case-insensitively. When names differ only in case the one that
// sorts first wins, so "ID" beats "id".
func NewRecord(values map[string]Value) Record {
	keys := make([]string, 0, len(values))
	for name := range values {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	r := Record{
		names:  make([]string, 0, len(values)),
		values: make(map[string]Value, len(values)),
	}
	for _, key := range keys {
		name := strings.ToUpper(key)
		if _, ok := r.values[name]; ok {
			continue
		}
		r.names = append(r.names, name)
		r.values[name] = values[key]
	}
	sort.Strings(r.names)
	return r
}

func newOrderedRecord(fields []Field, values []Value) Record {
	r := Record{
		names:  make([]string, len(fields)),
		values: make(map[string]Value, len(fields)),
	}
	for i, f := range fields {
		r.names[i] = f.name
		r.values[f.name] = values[i]
	}
	return r
}

// Names returns the field names in record order.
func (r Record) Names() []string {
	return append([]string(nil), r.names...)
}

func (r Record) Len() int { return len(r.names) }

// Value returns the value for name, or an absent Value.
func (r Record) Value(name string) Value {
	return r.values[strings.ToUpper(name)]
}

func (r Record) Number(name string) (decimal.Decimal, bool) {
	return r.Value(name).Decimal()
}

func (r Record) String(name string) (string, bool) {
	return r.Value(name).Text()
}

func (r Record) Bool(name string) (bool, bool) {
	return r.Value(name).Bool()
}

func (r Record) Date(name string) (time.Time, bool) {
	return r.Value(name).Time()
}

func (r Record) Bytes(name string) ([]byte, bool) {
	return r.Value(name).Bytes()
}
