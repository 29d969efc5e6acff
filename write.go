package godbf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// writeHeader writes the prologue, the field table, the terminator and the
// end-of-file marker of an empty table.
func (t *Table) writeHeader() error {
	buf, err := encodeHeader(t.header, t.dialect, t.cs)
	if err != nil {
		return err
	}
	buf = append(buf, EOF)
	if _, err := t.f.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func encodeHeader(h Header, d *dialect, cs *charset) ([]byte, error) {
	year := h.LastModified.Year() - yearBase
	if year < 0 || year > 0xFF {
		year = 0
	}
	raw := DBFHeader{
		Version:         d.versionByte(h.HasMemo),
		LastUpdateYear:  byte(year),
		LastUpdateMonth: byte(h.LastModified.Month()),
		LastUpdateDay:   byte(h.LastModified.Day()),
		NumRecords:      h.RecordCount,
		HeaderLength:    h.HeaderLength,
		RecordLength:    h.RecordLength,
	}

	var buf bytes.Buffer
	buf.Grow(int(h.HeaderLength) + 1)
	if err := binary.Write(&buf, binary.LittleEndian, &raw); err != nil {
		return nil, err
	}
	offset := 1
	for _, f := range h.Fields {
		desc := descriptorFor(f, d, cs, offset)
		if err := binary.Write(&buf, binary.LittleEndian, &desc); err != nil {
			return nil, err
		}
		offset += f.length
	}
	buf.WriteByte(headerTerminator)
	return buf.Bytes(), nil
}

func descriptorFor(f Field, d *dialect, cs *charset, offset int) FieldDescriptor {
	desc := FieldDescriptor{
		Type:       byte(f.typ),
		Length:     byte(f.length),
		Decimal:    byte(f.decimalCount),
		WorkAreaID: d.workAreaID,
	}
	// 10 name bytes, the 11th stays NUL
	copy(desc.Name[:maxFieldNameLength], cs.encode(f.name))
	if d.displacement {
		binary.LittleEndian.PutUint32(desc.Reserved1[:], uint32(offset))
	}
	if d.wideCharacter && f.typ == Character {
		desc.Decimal = byte(f.length >> 8)
	}
	return desc
}

// Validate reports whether v can be stored in the field called name, with
// CHARACTER lengths counted in the table's charset.
func (t *Table) Validate(name string, v Value) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	for _, f := range t.header.Fields {
		if strings.EqualFold(f.name, name) {
			return validate(f, v, t.cs)
		}
	}
	return fmt.Errorf("%w: no field %s in %s", ErrInvalidFieldName, name, t.Name())
}

// AddValues appends a record built from values in field order. Missing
// trailing values are written blank.
func (t *Table) AddValues(values ...Value) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	fields := t.header.Fields
	if len(values) > len(fields) {
		return fmt.Errorf("%w: %d values for %d fields", ErrRecordTooLarge, len(values), len(fields))
	}
	m := make(map[string]Value, len(values))
	for i, v := range values {
		m[fields[i].name] = v
	}
	return t.AddRecord(NewRecord(m))
}

// AddRecord appends rec after the last record and updates the record count.
// Values for names that are not fields of the table are ignored.
func (t *Table) AddRecord(rec Record) error {
	if err := t.checkOpen(); err != nil {
		return err
	}

	// validate and encode everything before any memo is written
	fields := t.header.Fields
	slots := make([][]byte, len(fields))
	blobs := make([][]byte, len(fields))
	for i, f := range fields {
		v := rec.Value(f.name)
		var err error
		if f.typ.IsMemo() {
			blobs[i], err = memoBlob(f, v, t.cs)
		} else {
			slots[i], err = encodeSlot(f, v, t.cs)
		}
		if err != nil {
			return err
		}
	}

	buf := make([]byte, 1, int(t.header.RecordLength)+1)
	buf[0] = SPACE
	for i, f := range fields {
		if !f.typ.IsMemo() {
			buf = append(buf, slots[i]...)
			continue
		}
		if blobs[i] == nil {
			buf = append(buf, blank(f.length)...)
			continue
		}
		raw, err := t.writeMemo(f, blobs[i])
		if err != nil {
			return err
		}
		buf = append(buf, raw...)
	}
	if len(buf) != int(t.header.RecordLength) {
		return fmt.Errorf("%w: encoded %d bytes for record length %d",
			ErrCorruptedTable, len(buf), t.header.RecordLength)
	}
	buf = append(buf, EOF)

	end := t.dataEnd(t.header.RecordCount)
	if _, err := t.f.WriteAt(buf, end); err != nil {
		_ = t.rollbackRecord()
		return fmt.Errorf("write record: %w", err)
	}
	if err := t.writeRecordCount(t.header.RecordCount + 1); err != nil {
		_ = t.rollbackRecord()
		return err
	}
	return nil
}

func (t *Table) writeMemo(f Field, blob []byte) ([]byte, error) {
	if err := t.ensureMemo(IfNonExistentCreate); err != nil {
		return nil, err
	}
	index, err := t.memo.Write(blob, memoKindOf(f.typ))
	if err != nil {
		return nil, err
	}
	return encodeMemoIndex(f, index, t.dialect.zeroPadMemo)
}

func memoKindOf(typ Type) MemoKind {
	switch typ {
	case Memo:
		return MemoText
	case Picture:
		return MemoPicture
	}
	return MemoObject
}

// DeleteRecord marks the record at index as deleted. The record keeps its
// place in the file and is skipped by iteration.
func (t *Table) DeleteRecord(index int) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	if index < 0 || index >= int(t.header.RecordCount) {
		return fmt.Errorf("record index %d out of range [0, %d)", index, t.header.RecordCount)
	}
	if _, err := t.f.WriteAt([]byte{DELETED}, t.dataEnd(uint32(index))); err != nil {
		return fmt.Errorf("mark record %d deleted: %w", index, err)
	}
	return nil
}

func (t *Table) dataEnd(records uint32) int64 {
	return int64(t.header.HeaderLength) + int64(records)*int64(t.header.RecordLength)
}

func (t *Table) writeRecordCount(count uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, count)
	if _, err := t.f.WriteAt(buf, offsetNumRecords); err != nil {
		return fmt.Errorf("write record count: %w", err)
	}
	t.header.RecordCount = count
	return nil
}

// rollbackRecord cuts the file back to the records counted in the header and
// restores the end-of-file marker.
func (t *Table) rollbackRecord() error {
	end := t.dataEnd(t.header.RecordCount)
	if err := t.f.Truncate(end); err != nil {
		return fmt.Errorf("truncate while rolling back record: %w", err)
	}
	if _, err := t.f.WriteAt([]byte{EOF}, end); err != nil {
		return fmt.Errorf("write EOF while rolling back record: %w", err)
	}
	return nil
}
