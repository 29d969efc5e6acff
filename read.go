package godbf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dropbox/godropbox/errors"
)

type recordState int

const (
	recordValid recordState = iota
	recordDeleted
	recordEnd
)

// soft returns inserted by the dBase memo editor
var softReturn = []byte{0x8D, 0x0A}

// RecordIterator walks the records of a table once, front to back, skipping
// deleted records. It cannot be restarted and fails once the table is closed.
type RecordIterator struct {
	t     *Table
	index uint32
	done  bool
}

// Records returns an iterator positioned before the first record.
func (t *Table) Records() *RecordIterator {
	return &RecordIterator{t: t}
}

// Next returns the next record, or io.EOF when there are no more.
func (it *RecordIterator) Next() (Record, error) {
	for {
		if it.done {
			return Record{}, io.EOF
		}
		if err := it.t.checkOpen(); err != nil {
			return Record{}, err
		}
		if it.index >= it.t.header.RecordCount {
			it.done = true
			return Record{}, io.EOF
		}
		rec, state, err := it.t.readRecord(it.index)
		it.index++
		if err != nil {
			return Record{}, err
		}
		switch state {
		case recordDeleted:
			continue
		case recordEnd:
			it.done = true
			return Record{}, io.EOF
		}
		return rec, nil
	}
}

func (t *Table) readRecord(index uint32) (Record, recordState, error) {
	buf := make([]byte, t.header.RecordLength)
	n, err := t.f.ReadAt(buf, t.dataEnd(index))
	if (n == 0 && err == io.EOF) || (n > 0 && buf[0] == EOF) {
		return Record{}, recordEnd, nil
	}
	if err != nil {
		return Record{}, recordValid, structural(err, fmt.Sprintf("read record %d", index))
	}
	if buf[0] == DELETED {
		return Record{}, recordDeleted, nil
	}

	fields := t.header.Fields
	values := make([]Value, len(fields))
	pos := 1
	for i, f := range fields {
		raw := buf[pos : pos+f.length]
		pos += f.length

		var v Value
		switch f.typ {
		case Character, Number, Float, Logical, Date:
			v, err = decodeSlot(f, raw, t.cs)
		case Memo, Binary, General, Picture:
			v, err = t.readMemoValue(f, raw)
		default:
			panic(errors.Newf("Unsupported field type %v", f.typ))
		}
		if err != nil {
			return Record{}, recordValid, err
		}
		values[i] = v
	}
	return newOrderedRecord(fields, values), recordValid, nil
}

func (t *Table) readMemoValue(f Field, raw []byte) (Value, error) {
	index, err := decodeMemoIndex(f, raw)
	if err != nil {
		return Value{}, err
	}
	if index == 0 {
		if f.typ == Memo {
			return NullText(), nil
		}
		return NullBytes(), nil
	}
	if err := t.ensureMemo(IfNonExistentError); err != nil {
		return Value{}, err
	}
	data, err := t.memo.Read(index)
	if err != nil {
		return Value{}, err
	}
	if f.typ == Memo {
		// 0x8D is a continuation byte in UTF-8
		if !t.cs.utf8 {
			data = bytes.ReplaceAll(data, softReturn, nil)
		}
		return TextValue(t.cs.decode(data)), nil
	}
	return BytesValue(data), nil
}
