package godbf

import "errors"

var (
	// ErrCorruptedTable is returned when the structure of a table or memo file
	// is inconsistent or a required memo file is missing or ambiguous.
	ErrCorruptedTable = errors.New("corrupted table")
	// ErrValueTooLarge is returned when a value does not fit its field.
	ErrValueTooLarge = errors.New("value too large")
	// ErrDataMismatch is returned when a value has the wrong kind or format
	// for the field it is written to.
	ErrDataMismatch = errors.New("data mismatch")
	// ErrRecordTooLarge is returned when more values than fields are given.
	ErrRecordTooLarge = errors.New("record too large")

	ErrInvalidFieldType   = errors.New("invalid field type")
	ErrInvalidFieldLength = errors.New("invalid field length")
	ErrInvalidFieldName   = errors.New("invalid field name")

	ErrTableClosed    = errors.New("table is not open")
	ErrUnknownCharset = errors.New("unknown charset")
)
