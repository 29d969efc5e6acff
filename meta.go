package godbf

import "time"

// DBFHeader is the fixed 32 byte prologue of a .dbf file.
type DBFHeader struct {
	Version          byte
	LastUpdateYear   byte
	LastUpdateMonth  byte
	LastUpdateDay    byte
	NumRecords       uint32
	HeaderLength     uint16
	RecordLength     uint16
	Reserved         [2]byte
	Flag             byte
	EncryptFlag      byte
	Reserved2        [12]byte
	MDXFlag          byte
	LanguageDriverID byte
	Reserved3        [2]byte
}

// FieldDescriptor is one 32 byte row of the field table.
type FieldDescriptor struct {
	Name       [11]byte
	Type       byte
	Reserved1  [4]byte
	Length     byte
	Decimal    byte
	Reserved2  [2]byte
	WorkAreaID byte
	Reserved3  [10]byte
	Flag       byte
}

const (
	prologueLength   = 32
	descriptorLength = 32

	offsetVersion    = 0
	offsetLastUpdate = 1
	offsetNumRecords = 4
	headerTerminator = 0x0D
	maxFieldCount    = 255
	minYearTwoDigits = 1980
	yearBase         = 1900
)

// Header is the decoded table header.
type Header struct {
	Version      Version
	LastModified time.Time
	RecordCount  uint32
	HeaderLength uint16
	RecordLength uint16
	HasMemo      bool
	Fields       []Field
}

func computeHeaderLength(fieldCount int) int {
	return prologueLength + descriptorLength*fieldCount + 1
}

func computeRecordLength(fields []Field) int {
	n := 1
	for _, f := range fields {
		n += f.length
	}
	return n
}

func hasMemoField(fields []Field) bool {
	for _, f := range fields {
		if f.typ.IsMemo() {
			return true
		}
	}
	return false
}
