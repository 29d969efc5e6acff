package godbf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type validator func(f Field, v Value, cs *charset) error

var validators = map[Type]validator{
	Character: validateCharacter,
	Number:    validateNumber,
	Float:     validateNumber,
	Logical:   validateLogical,
	Date:      validateDate,
	Memo:      validateMemo,
	Binary:    validateMemo,
	General:   validateMemo,
	Picture:   validateMemo,
}

// Validate reports whether v can be stored in f. Absent and null values are
// always accepted. CHARACTER lengths are counted in UTF-8 bytes; use
// Table.Validate for a table with another charset.
func Validate(f Field, v Value) error {
	return validate(f, v, utf8Charset)
}

func validate(f Field, v Value, cs *charset) error {
	if v.IsNull() {
		return nil
	}
	check, ok := validators[f.typ]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidFieldType, f.typ)
	}
	return check(f, v, cs)
}

func mismatch(f Field, v Value) error {
	return fmt.Errorf("%w: cannot write %s to %s field %s", ErrDataMismatch, v.kind, f.typ, f.name)
}

func validateCharacter(f Field, v Value, cs *charset) error {
	if v.kind != KindText {
		return mismatch(f, v)
	}
	if n := len(cs.encode(v.text)); n > f.length {
		return fmt.Errorf("%w: %d bytes do not fit field %s of length %d",
			ErrValueTooLarge, n, f.name, f.length)
	}
	return nil
}

func validateLogical(f Field, v Value, _ *charset) error {
	if v.kind != KindBool {
		return mismatch(f, v)
	}
	return nil
}

func validateDate(f Field, v Value, _ *charset) error {
	if v.kind != KindDate {
		return mismatch(f, v)
	}
	if y := v.date.Year(); y < 0 || y > 9999 {
		return fmt.Errorf("%w: year %d does not fit field %s", ErrValueTooLarge, y, f.name)
	}
	return nil
}

func validateMemo(f Field, v Value, _ *charset) error {
	if v.kind != KindBytes && v.kind != KindText {
		return mismatch(f, v)
	}
	return nil
}

func validateNumber(f Field, v Value, _ *charset) error {
	switch v.kind {
	case KindNumber:
		if v.invalid {
			return fmt.Errorf("%w: not a finite number for field %s", ErrDataMismatch, f.name)
		}
		if signWidth(v.num)+intDigits(v.num) > f.length-decimalSlotWidth(f) {
			return fmt.Errorf("%w: number %s does not fit field %s", ErrValueTooLarge, v.num, f.name)
		}
		return nil
	case KindText:
		s := strings.TrimSpace(v.text)
		if !numberPattern(f).MatchString(s) {
			return fmt.Errorf("%w: %q is not a valid number for field %s, is too long or has the wrong number of decimals",
				ErrDataMismatch, s, f.name)
		}
		return nil
	}
	return mismatch(f, v)
}

func decimalSlotWidth(f Field) int {
	if f.decimalCount == 0 {
		return 0
	}
	return f.decimalCount + 1
}

func signWidth(d decimal.Decimal) int {
	if d.Sign() < 0 {
		return 1
	}
	return 0
}

// intDigits counts the digits before the decimal point; zero counts as one.
func intDigits(d decimal.Decimal) int {
	return len(d.Abs().Truncate(0).String())
}

// numberPattern builds the exact text form accepted for f: an optional sign
// (only when more than two integer positions exist), up to the available
// integer digits and exactly decimalCount decimals.
func numberPattern(f Field) *regexp.Regexp {
	beforeComma := f.length - decimalSlotWidth(f)

	decimals := ""
	if f.decimalCount > 0 {
		decimals = `\.\d{` + strconv.Itoa(f.decimalCount) + `}`
	}

	withSign := ""
	if beforeComma > 2 {
		withSign = `-\d{1,` + strconv.Itoa(beforeComma-1) + `}|`
	}
	withoutSign := `\d{1,` + strconv.Itoa(beforeComma) + `}`

	return regexp.MustCompile(`^(` + withSign + withoutSign + `)` + decimals + `$`)
}
