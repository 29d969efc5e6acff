package godbf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// decodeHeader reads the prologue and the field table. hint is the version
// the caller asked for, or zero.
func decodeHeader(r io.Reader, hint Version, cs *charset) (Header, error) {
	var raw DBFHeader
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return Header{}, structural(err, "read header")
	}
	version, err := detectVersion(raw.Version, hint)
	if err != nil {
		return Header{}, err
	}
	descs, err := decodeDescriptors(r, int(raw.HeaderLength))
	if err != nil {
		return Header{}, err
	}
	fields, err := fieldsFromDescriptors(descs, dialects[version], cs)
	if err != nil {
		return Header{}, err
	}
	if version != hint {
		version = refineVersion(version, raw.Version, fields)
		// Clipper keeps the high byte of long CHARACTER lengths in the
		// decimal count, which no other dialect does
		if int(raw.RecordLength) != computeRecordLength(fields) && hasWideCharacter(descs) &&
			dialects[Clipper5].signs(raw.Version) {
			if wide, err := fieldsFromDescriptors(descs, dialects[Clipper5], cs); err == nil {
				version, fields = Clipper5, wide
			}
		}
	}
	d := dialects[version]

	if int(raw.HeaderLength) < computeHeaderLength(len(fields)) {
		return Header{}, fmt.Errorf("%w: header length %d too small for %d fields",
			ErrCorruptedTable, raw.HeaderLength, len(fields))
	}
	if want := computeRecordLength(fields); int(raw.RecordLength) != want {
		return Header{}, fmt.Errorf("%w: record length %d, fields add up to %d",
			ErrCorruptedTable, raw.RecordLength, want)
	}

	return Header{
		Version:      version,
		LastModified: decodeDate(raw.LastUpdateYear, raw.LastUpdateMonth, raw.LastUpdateDay),
		RecordCount:  raw.NumRecords,
		HeaderLength: raw.HeaderLength,
		RecordLength: raw.RecordLength,
		HasMemo:      raw.Version == d.memoByte || hasMemoField(fields),
		Fields:       fields,
	}, nil
}

func decodeDescriptors(r io.Reader, headerLength int) ([]FieldDescriptor, error) {
	var descs []FieldDescriptor
	row := make([]byte, descriptorLength)
	for {
		if _, err := io.ReadFull(r, row[:1]); err != nil {
			return nil, structural(err, "read field table")
		}
		if row[0] == headerTerminator {
			return descs, nil
		}
		if len(descs) == maxFieldCount || computeHeaderLength(len(descs)+1) > headerLength {
			return nil, fmt.Errorf("%w: field table not terminated", ErrCorruptedTable)
		}
		if _, err := io.ReadFull(r, row[1:]); err != nil {
			return nil, structural(err, "read field descriptor")
		}
		var desc FieldDescriptor
		if err := binary.Read(bytes.NewReader(row), binary.LittleEndian, &desc); err != nil {
			return nil, structural(err, "decode field descriptor")
		}
		descs = append(descs, desc)
	}
}

func fieldsFromDescriptors(descs []FieldDescriptor, d *dialect, cs *charset) ([]Field, error) {
	fields := make([]Field, 0, len(descs))
	for _, desc := range descs {
		f, err := fieldFromDescriptor(desc, d, cs)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func hasWideCharacter(descs []FieldDescriptor) bool {
	for _, desc := range descs {
		if Type(desc.Type) == Character && desc.Decimal != 0 {
			return true
		}
	}
	return false
}

func fieldFromDescriptor(desc FieldDescriptor, d *dialect, cs *charset) (Field, error) {
	name := desc.Name[:]
	if i := bytes.IndexByte(name, NUL); i >= 0 {
		name = name[:i]
	}
	f := Field{
		name:         strings.ToUpper(strings.TrimSpace(cs.decode(name))),
		typ:          Type(desc.Type),
		length:       int(desc.Length),
		decimalCount: int(desc.Decimal),
	}
	if !f.typ.valid() {
		return Field{}, fmt.Errorf("%w: unknown type %q for field %s", ErrCorruptedTable, desc.Type, f.name)
	}
	if d.wideCharacter && f.typ == Character {
		f.length += int(desc.Decimal) << 8
		f.decimalCount = 0
	}
	if f.name == "" || f.length == 0 {
		return Field{}, fmt.Errorf("%w: bad field descriptor %q", ErrCorruptedTable, f.name)
	}
	return f, nil
}

func decodeDate(y, m, d byte) time.Time {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}
	}
	year := yearBase + int(y)
	if year < minYearTwoDigits {
		year += 100
	}
	return time.Date(year, time.Month(m), int(d), 0, 0, 0, 0, time.Local)
}

// structural maps a short read to ErrCorruptedTable and keeps other I/O
// errors as they are.
func structural(err error, op string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: truncated file", ErrCorruptedTable, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}
