package godbf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testCharset(t *testing.T) *charset {
	t.Helper()
	cs, err := newCharset("")
	require.NoError(t, err)
	return cs
}

func TestEncodeSlot(t *testing.T) {
	cs := testCharset(t)

	raw, err := encodeSlot(MustField("N", Number, 6, 2), NumberValue(dec(t, "12.345")), cs)
	require.NoError(t, err)
	require.Equal(t, " 12.35", string(raw))

	raw, err = encodeSlot(MustField("N", Number, 6, 2), TextValue("-12.34"), cs)
	require.NoError(t, err)
	require.Equal(t, "-12.34", string(raw))

	raw, err = encodeSlot(MustField("N", Number, 3, 0), IntValue(1), cs)
	require.NoError(t, err)
	require.Equal(t, "  1", string(raw))

	raw, err = encodeSlot(MustField("N", Number, 3, 0), NullNumber(), cs)
	require.NoError(t, err)
	require.Equal(t, "   ", string(raw))

	raw, err = encodeSlot(MustField("C", Character, 8, 0), TextValue("Alice"), cs)
	require.NoError(t, err)
	require.Equal(t, "Alice   ", string(raw))

	raw, err = encodeSlot(MustField("L", Logical, 1, 0), BoolValue(true), cs)
	require.NoError(t, err)
	require.Equal(t, "T", string(raw))

	raw, err = encodeSlot(MustField("D", Date, 8, 0), DateValue(time.Date(1909, 3, 18, 15, 4, 5, 0, time.Local)), cs)
	require.NoError(t, err)
	require.Equal(t, "19090318", string(raw))

	raw, err = encodeSlot(MustField("D", Date, 8, 0), Value{}, cs)
	require.NoError(t, err)
	require.Equal(t, "        ", string(raw))
}

func TestEncodeSlot_RoundingOverflow(t *testing.T) {
	_, err := encodeSlot(MustField("N", Number, 1, 0), NumberValue(dec(t, "9.6")), testCharset(t))
	require.ErrorIs(t, err, ErrValueTooLarge)
}

func TestEncodeSlot_CharacterBoundary(t *testing.T) {
	cs := testCharset(t)
	f := MustField("C", Character, 5, 0)

	_, err := encodeSlot(f, TextValue("12345"), cs)
	require.NoError(t, err)
	_, err = encodeSlot(f, TextValue("123456"), cs)
	require.ErrorIs(t, err, ErrValueTooLarge)

	// the limit is in encoded bytes, not runes
	_, err = encodeSlot(MustField("C", Character, 4, 0), TextValue("café"), cs)
	require.ErrorIs(t, err, ErrValueTooLarge)
	_, err = encodeSlot(f, TextValue("café"), cs)
	require.NoError(t, err)
}

func TestDecodeSlot(t *testing.T) {
	cs := testCharset(t)

	v, err := decodeSlot(MustField("N", Number, 10, 2), []byte("   1234.56"), cs)
	require.NoError(t, err)
	require.True(t, v.Equal(NumberValue(dec(t, "1234.56"))))

	v, err = decodeSlot(MustField("N", Number, 5, 0), []byte("     "), cs)
	require.NoError(t, err)
	require.Equal(t, KindNumber, v.Kind())
	require.True(t, v.IsNull())

	v, err = decodeSlot(MustField("N", Number, 5, 0), []byte("*****"), cs)
	require.NoError(t, err)
	require.True(t, v.IsNull())

	_, err = decodeSlot(MustField("N", Number, 5, 0), []byte("  abc"), cs)
	require.ErrorIs(t, err, ErrCorruptedTable)

	v, err = decodeSlot(MustField("C", Character, 8, 0), []byte("Alice   "), cs)
	require.NoError(t, err)
	s, ok := v.Text()
	require.True(t, ok)
	require.Equal(t, "Alice", s)

	for raw, want := range map[string]Value{
		"T": BoolValue(true), "y": BoolValue(true),
		"F": BoolValue(false), "n": BoolValue(false),
		"?": NullBool(), " ": NullBool(),
	} {
		v, err = decodeSlot(MustField("L", Logical, 1, 0), []byte(raw), cs)
		require.NoError(t, err)
		require.True(t, v.Equal(want), "logical %q", raw)
	}

	v, err = decodeSlot(MustField("D", Date, 8, 0), []byte("19090320"), cs)
	require.NoError(t, err)
	d, ok := v.Time()
	require.True(t, ok)
	require.Equal(t, time.Date(1909, 3, 20, 0, 0, 0, 0, time.UTC), d)

	v, err = decodeSlot(MustField("D", Date, 8, 0), []byte("00000000"), cs)
	require.NoError(t, err)
	require.True(t, v.IsNull())

	_, err = decodeSlot(MustField("D", Date, 8, 0), []byte("2009-4-1"), cs)
	require.ErrorIs(t, err, ErrCorruptedTable)
}

func TestMemoIndexPadding(t *testing.T) {
	f := MustField("M", Memo, 10, 0)

	raw, err := encodeMemoIndex(f, 17, true)
	require.NoError(t, err)
	require.Equal(t, "0000000017", string(raw))

	raw, err = encodeMemoIndex(f, 17, false)
	require.NoError(t, err)
	require.Equal(t, "        17", string(raw))

	for _, raw := range []string{"0000000017", "        17"} {
		n, err := decodeMemoIndex(f, []byte(raw))
		require.NoError(t, err)
		require.Equal(t, 17, n)
	}

	n, err := decodeMemoIndex(f, []byte("          "))
	require.NoError(t, err)
	require.Equal(t, 0, n)

	_, err = decodeMemoIndex(f, []byte("     -1   "))
	require.ErrorIs(t, err, ErrCorruptedTable)
}
