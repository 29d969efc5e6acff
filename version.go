package godbf

import "fmt"

// Version is the xBase dialect a table is read and written in.
type Version int

const (
	DBase3 Version = iota + 1
	DBase4
	DBase5
	FoxPro26
	Clipper5
)

func (v Version) String() string {
	switch v {
	case DBase3:
		return "dBase III+"
	case DBase4:
		return "dBase IV"
	case DBase5:
		return "dBase 5"
	case FoxPro26:
		return "FoxPro 2.6"
	case Clipper5:
		return "Clipper 5"
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

type memoLayout int

const (
	memoTerminated memoLayout = iota + 1
	memoLengthPrefixed
	memoTyped
)

// dialect collects everything that differs between versions. It is looked
// up once per table.
type dialect struct {
	version       Version
	plainByte     byte
	memoByte      byte
	memoExt       string
	memo          memoLayout
	zeroPadMemo   bool
	types         string
	maxCharLength int
	// field row carries the field's offset within the record
	displacement bool
	// CHARACTER lengths above 255 spill into the decimal count byte
	wideCharacter bool
	workAreaID    byte
}

var dialects = map[Version]*dialect{
	DBase3: {
		version: DBase3, plainByte: 0x03, memoByte: 0x83,
		memoExt: ".dbt", memo: memoTerminated,
		types: "CNLDM", maxCharLength: 254,
	},
	DBase4: {
		version: DBase4, plainByte: 0x03, memoByte: 0x8B,
		memoExt: ".dbt", memo: memoLengthPrefixed, zeroPadMemo: true,
		types: "CNFLDM", maxCharLength: 254, workAreaID: 0x01,
	},
	DBase5: {
		version: DBase5, plainByte: 0x03, memoByte: 0x8B,
		memoExt: ".dbt", memo: memoLengthPrefixed, zeroPadMemo: true,
		types: "CNFLDMBG", maxCharLength: 254, workAreaID: 0x01,
	},
	FoxPro26: {
		version: FoxPro26, plainByte: 0x03, memoByte: 0xF5,
		memoExt: ".fpt", memo: memoTyped,
		types: "CNFLDMGP", maxCharLength: 254, displacement: true,
	},
	Clipper5: {
		version: Clipper5, plainByte: 0x03, memoByte: 0x83,
		memoExt: ".dbt", memo: memoTerminated,
		types: "CNFLDM", maxCharLength: 65535, wideCharacter: true,
	},
}

// detection order when the version byte alone is ambiguous
var detectOrder = []Version{DBase3, DBase4, DBase5, FoxPro26, Clipper5}

func dialectOf(v Version) (*dialect, error) {
	d, ok := dialects[v]
	if !ok {
		return nil, fmt.Errorf("unsupported version %v", v)
	}
	return d, nil
}

func (d *dialect) versionByte(hasMemo bool) byte {
	if hasMemo {
		return d.memoByte
	}
	return d.plainByte
}

// signs reports whether b is one of the version bytes this dialect writes.
func (d *dialect) signs(b byte) bool {
	return b == d.plainByte || b == d.memoByte
}

func (d *dialect) allows(t Type) bool {
	for i := 0; i < len(d.types); i++ {
		if d.types[i] == byte(t) {
			return true
		}
	}
	return false
}

func (d *dialect) allowsAll(fields []Field) bool {
	for _, f := range fields {
		if !d.allows(f.typ) {
			return false
		}
	}
	return true
}

// checkFields validates a schema for a new table in this dialect.
func (d *dialect) checkFields(fields []Field) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: table needs at least one field", ErrInvalidFieldLength)
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if !d.allows(f.typ) {
			return fmt.Errorf("%w: %s not supported by %v", ErrInvalidFieldType, f.typ, d.version)
		}
		if f.typ == Character && f.length > d.maxCharLength {
			return fmt.Errorf("%w: %s exceeds %d for %v", ErrInvalidFieldLength, f, d.maxCharLength, d.version)
		}
		if seen[f.name] {
			return fmt.Errorf("%w: duplicate field %s", ErrInvalidFieldName, f.name)
		}
		seen[f.name] = true
	}
	return nil
}

// detectVersion maps a version byte read from disk to a dialect. The hint is
// kept when the byte is one of its signatures.
func detectVersion(b byte, hint Version) (Version, error) {
	if d, ok := dialects[hint]; ok && d.signs(b) {
		return hint, nil
	}
	switch b {
	case 0x03, 0x83:
		return DBase3, nil
	case 0x8B:
		return DBase4, nil
	case 0xF5:
		return FoxPro26, nil
	}
	return 0, fmt.Errorf("%w: unsupported version byte 0x%02X", ErrCorruptedTable, b)
}

// refineVersion upgrades a guess that does not admit every field type to the
// first dialect that writes version byte b and does. 0x83 with a FLOAT field
// is Clipper, never dBase IV, whose memo files differ.
func refineVersion(v Version, b byte, fields []Field) Version {
	if dialects[v].allowsAll(fields) {
		return v
	}
	for _, cand := range detectOrder {
		d := dialects[cand]
		if d.signs(b) && d.allowsAll(fields) {
			return cand
		}
	}
	return v
}
