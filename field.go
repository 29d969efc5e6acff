package godbf

import (
	"fmt"
	"strings"
)

// Type is the single letter type code of a field.
type Type byte

const (
	Character Type = 'C'
	Number    Type = 'N'
	Float     Type = 'F'
	Logical   Type = 'L'
	Date      Type = 'D'
	Memo      Type = 'M'
	Binary    Type = 'B'
	General   Type = 'G'
	Picture   Type = 'P'
)

const (
	maxFieldNameLength = 10
	maxNumberLength    = 20
	maxDecimalCount    = 15
	memoFieldLength    = 10
)

func (t Type) String() string {
	switch t {
	case Character:
		return "CHARACTER"
	case Number:
		return "NUMBER"
	case Float:
		return "FLOAT"
	case Logical:
		return "LOGICAL"
	case Date:
		return "DATE"
	case Memo:
		return "MEMO"
	case Binary:
		return "BINARY"
	case General:
		return "GENERAL"
	case Picture:
		return "PICTURE"
	}
	return fmt.Sprintf("Type(%q)", byte(t))
}

func (t Type) valid() bool {
	switch t {
	case Character, Number, Float, Logical, Date, Memo, Binary, General, Picture:
		return true
	}
	return false
}

// IsMemo reports whether values of the type live in the memo file and the
// record slot only holds the block index.
func (t Type) IsMemo() bool {
	return t == Memo || t == Binary || t == General || t == Picture
}

// Field describes one column of a table. Fields are immutable; create them
// with NewField or one of the fixed-length helpers.
type Field struct {
	name         string
	typ          Type
	length       int
	decimalCount int
}

// NewField validates the definition and returns the field. The name is
// upper-cased.
func NewField(name string, typ Type, length, decimalCount int) (Field, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" || len(name) > maxFieldNameLength {
		return Field{}, fmt.Errorf("%w: %q", ErrInvalidFieldName, name)
	}
	if !typ.valid() {
		return Field{}, fmt.Errorf("%w: %q for field %s", ErrInvalidFieldType, byte(typ), name)
	}
	if err := checkLength(name, typ, length, decimalCount); err != nil {
		return Field{}, err
	}
	return Field{name: name, typ: typ, length: length, decimalCount: decimalCount}, nil
}

func checkLength(name string, typ Type, length, decimalCount int) error {
	bad := func() error {
		return fmt.Errorf("%w: %s %s(%d,%d)", ErrInvalidFieldLength, name, typ, length, decimalCount)
	}
	if decimalCount < 0 || length < 1 {
		return bad()
	}
	switch typ {
	case Character:
		// upper bound depends on the dialect, see dialect.maxCharLength
		if decimalCount != 0 {
			return bad()
		}
	case Number, Float:
		if length > maxNumberLength || decimalCount > maxDecimalCount {
			return bad()
		}
		if decimalCount > 0 && length < decimalCount+2 {
			return bad()
		}
	case Logical:
		if length != 1 || decimalCount != 0 {
			return bad()
		}
	case Date:
		if length != 8 || decimalCount != 0 {
			return bad()
		}
	case Memo, Binary, General, Picture:
		if length != memoFieldLength || decimalCount != 0 {
			return bad()
		}
	}
	return nil
}

func NewCharacterField(name string, length int) (Field, error) {
	return NewField(name, Character, length, 0)
}

func NewNumberField(name string, length, decimalCount int) (Field, error) {
	return NewField(name, Number, length, decimalCount)
}

func NewLogicalField(name string) (Field, error) {
	return NewField(name, Logical, 1, 0)
}

func NewDateField(name string) (Field, error) {
	return NewField(name, Date, 8, 0)
}

// NewMemoField creates a memo-backed field of the given type (Memo, Binary,
// General or Picture) with the standard 10 byte index slot.
func NewMemoField(name string, typ Type) (Field, error) {
	if !typ.IsMemo() {
		return Field{}, fmt.Errorf("%w: %s is not a memo type", ErrInvalidFieldType, typ)
	}
	return NewField(name, typ, memoFieldLength, 0)
}

// MustField is NewField that panics on error. Meant for static schemas.
func MustField(name string, typ Type, length, decimalCount int) Field {
	f, err := NewField(name, typ, length, decimalCount)
	if err != nil {
		panic(err)
	}
	return f
}

func (f Field) Name() string      { return f.name }
func (f Field) Type() Type        { return f.typ }
func (f Field) Length() int       { return f.length }
func (f Field) DecimalCount() int { return f.decimalCount }

func (f Field) String() string {
	return fmt.Sprintf("%s %s(%d,%d)", f.name, f.typ, f.length, f.decimalCount)
}
