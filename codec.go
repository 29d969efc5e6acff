package godbf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dropbox/godropbox/errors"
	"github.com/shopspring/decimal"
)

const dateLayout = "20060102"

// encodeSlot turns v into exactly f.length bytes. Memo-backed fields are not
// handled here; see memoBlob.
func encodeSlot(f Field, v Value, cs *charset) ([]byte, error) {
	if err := validate(f, v, cs); err != nil {
		return nil, err
	}
	if v.IsNull() {
		return blank(f.length), nil
	}

	switch f.typ {
	case Character:
		return padRight(cs.encode(v.text), f.length), nil
	case Number, Float:
		var s string
		if v.kind == KindText {
			s = strings.TrimSpace(v.text)
		} else {
			s = v.num.StringFixed(int32(f.decimalCount))
		}
		// rounding can add an integer digit, 9.96 -> 10.0
		if len(s) > f.length {
			return nil, fmt.Errorf("%w: number %s does not fit field %s", ErrValueTooLarge, s, f.name)
		}
		return padLeft([]byte(s), f.length), nil
	case Logical:
		if v.b {
			return []byte{'T'}, nil
		}
		return []byte{'F'}, nil
	case Date:
		return []byte(v.date.Format(dateLayout)), nil
	}
	panic(errors.Newf("Unsupported fixed-width type %v", f.typ))
}

// memoBlob returns the bytes to store in the memo file, or nil when the slot
// stays blank.
func memoBlob(f Field, v Value, cs *charset) ([]byte, error) {
	if err := validate(f, v, cs); err != nil {
		return nil, err
	}
	if v.IsNull() {
		return nil, nil
	}
	if v.kind == KindText {
		return cs.encode(v.text), nil
	}
	return v.raw, nil
}

// decodeSlot turns the raw bytes of a fixed-width field into a Value.
func decodeSlot(f Field, raw []byte, cs *charset) (Value, error) {
	switch f.typ {
	case Character:
		return TextValue(cs.decode(bytes.TrimRight(raw, " \x00"))), nil
	case Number, Float:
		return decodeNumber(f, raw)
	case Logical:
		switch raw[0] {
		case 'T', 't', 'Y', 'y':
			return BoolValue(true), nil
		case 'F', 'f', 'N', 'n':
			return BoolValue(false), nil
		}
		return NullBool(), nil
	case Date:
		s := strings.TrimSpace(string(raw))
		if s == "" || s == "00000000" {
			return NullDate(), nil
		}
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return Value{}, fmt.Errorf("%w: bad date %q in field %s", ErrCorruptedTable, s, f.name)
		}
		return DateValue(t), nil
	}
	panic(errors.Newf("Unsupported fixed-width type %v", f.typ))
}

func decodeNumber(f Field, raw []byte) (Value, error) {
	s := strings.TrimSpace(string(bytes.TrimRight(raw, "\x00")))
	if s == "" {
		return NullNumber(), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		// overflow markers such as "*****" and lone signs or points
		if strings.Trim(s, "*.-+") == "" {
			return NullNumber(), nil
		}
		return Value{}, fmt.Errorf("%w: bad number %q in field %s", ErrCorruptedTable, s, f.name)
	}
	return NumberValue(d), nil
}

// encodeMemoIndex writes a memo block index as fixed-width decimal text.
func encodeMemoIndex(f Field, index int, zeroPad bool) ([]byte, error) {
	var s string
	if zeroPad {
		s = fmt.Sprintf("%0*d", f.length, index)
	} else {
		s = fmt.Sprintf("%*d", f.length, index)
	}
	if len(s) > f.length {
		return nil, fmt.Errorf("%w: memo index %d does not fit field %s", ErrCorruptedTable, index, f.name)
	}
	return []byte(s), nil
}

// decodeMemoIndex returns 0 for a blank slot.
func decodeMemoIndex(f Field, raw []byte) (int, error) {
	s := strings.TrimSpace(string(bytes.TrimRight(raw, "\x00")))
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() || d.Sign() < 0 {
		return 0, fmt.Errorf("%w: bad memo index %q in field %s", ErrCorruptedTable, s, f.name)
	}
	return int(d.IntPart()), nil
}

func blank(n int) []byte {
	return bytes.Repeat([]byte{SPACE}, n)
}

func padRight(b []byte, n int) []byte {
	out := blank(n)
	copy(out, b)
	return out
}

func padLeft(b []byte, n int) []byte {
	out := blank(n)
	copy(out[n-len(b):], b)
	return out
}
