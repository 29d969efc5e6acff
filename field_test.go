package godbf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewField_NormalizesName(t *testing.T) {
	f, err := NewField(" name ", Character, 20, 0)
	require.NoError(t, err)
	require.Equal(t, "NAME", f.Name())
	require.Equal(t, Character, f.Type())
	require.Equal(t, 20, f.Length())
	require.Equal(t, 0, f.DecimalCount())
}

func TestNewField_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		field  string
		typ    Type
		length int
		dec    int
		want   error
	}{
		{"empty name", "", Character, 10, 0, ErrInvalidFieldName},
		{"long name", "ELEVENCHARS", Character, 10, 0, ErrInvalidFieldName},
		{"unknown type", "X", Type('Q'), 10, 0, ErrInvalidFieldType},
		{"zero length", "X", Character, 0, 0, ErrInvalidFieldLength},
		{"character decimals", "X", Character, 10, 2, ErrInvalidFieldLength},
		{"number too long", "X", Number, 21, 0, ErrInvalidFieldLength},
		{"no room for decimals", "X", Number, 3, 2, ErrInvalidFieldLength},
		{"logical length", "X", Logical, 2, 0, ErrInvalidFieldLength},
		{"date length", "X", Date, 6, 0, ErrInvalidFieldLength},
		{"memo length", "X", Memo, 4, 0, ErrInvalidFieldLength},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewField(tc.field, tc.typ, tc.length, tc.dec)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFixedLengthHelpers(t *testing.T) {
	l, err := NewLogicalField("ok")
	require.NoError(t, err)
	require.Equal(t, 1, l.Length())

	d, err := NewDateField("born")
	require.NoError(t, err)
	require.Equal(t, 8, d.Length())

	m, err := NewMemoField("notes", Memo)
	require.NoError(t, err)
	require.Equal(t, 10, m.Length())
	require.True(t, m.Type().IsMemo())

	_, err = NewMemoField("notes", Character)
	require.ErrorIs(t, err, ErrInvalidFieldType)

	require.Panics(t, func() { MustField("", Character, 1, 0) })
}

func TestDialect_CheckFields(t *testing.T) {
	float := MustField("F", Float, 10, 2)
	require.ErrorIs(t, dialects[DBase3].checkFields([]Field{float}), ErrInvalidFieldType)
	require.NoError(t, dialects[DBase4].checkFields([]Field{float}))

	general := MustField("G", General, 10, 0)
	require.ErrorIs(t, dialects[DBase4].checkFields([]Field{general}), ErrInvalidFieldType)
	require.NoError(t, dialects[FoxPro26].checkFields([]Field{general}))

	wide := MustField("W", Character, 300, 0)
	require.ErrorIs(t, dialects[DBase3].checkFields([]Field{wide}), ErrInvalidFieldLength)
	require.NoError(t, dialects[Clipper5].checkFields([]Field{wide}))

	dup := MustField("A", Logical, 1, 0)
	require.ErrorIs(t, dialects[DBase3].checkFields([]Field{dup, dup}), ErrInvalidFieldName)
	require.ErrorIs(t, dialects[DBase3].checkFields(nil), ErrInvalidFieldLength)
}

func TestDetectVersion(t *testing.T) {
	v, err := detectVersion(0x8B, 0)
	require.NoError(t, err)
	require.Equal(t, DBase4, v)

	v, err = detectVersion(0xF5, 0)
	require.NoError(t, err)
	require.Equal(t, FoxPro26, v)

	v, err = detectVersion(0x83, Clipper5)
	require.NoError(t, err)
	require.Equal(t, Clipper5, v)

	// hint does not match the byte
	v, err = detectVersion(0xF5, DBase4)
	require.NoError(t, err)
	require.Equal(t, FoxPro26, v)

	_, err = detectVersion(0x30, 0)
	require.ErrorIs(t, err, ErrCorruptedTable)

	float := []Field{MustField("F", Float, 10, 2)}
	require.Equal(t, DBase4, refineVersion(DBase3, 0x03, float))
	require.Equal(t, FoxPro26, refineVersion(DBase3, 0x03, []Field{MustField("P", Picture, 10, 0)}))
	require.Equal(t, DBase3, refineVersion(DBase3, 0x03, []Field{MustField("C", Character, 10, 0)}))
	require.Equal(t, DBase5, refineVersion(DBase4, 0x8B, []Field{MustField("B", Binary, 10, 0)}))

	// 0x83 is never written by dBase IV, FLOAT there means Clipper
	require.Equal(t, Clipper5, refineVersion(DBase3, 0x83, append(float, MustField("M", Memo, 10, 0))))
}
