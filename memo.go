package godbf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MemoKind is the block type tag FoxPro stores in front of every memo.
type MemoKind uint32

const (
	MemoPicture MemoKind = 0
	MemoText    MemoKind = 1
	MemoObject  MemoKind = 2
)

const (
	memoHeaderLength     = 512
	dbaseMemoBlockSize   = 512
	foxproMemoBlockSize  = 64
	dbase4MemoSignature  = 0x0008FFFF
	dbase4MemoPrefixSize = 8
	foxproMemoPrefixSize = 8
)

var memoTerminator = []byte{EOF, EOF}

// MemoStore is the block file holding variable-length field data. Blocks
// are addressed by their index; block 0 holds the file header, so a valid
// memo index is never 0.
type MemoStore struct {
	path      string
	f         *os.File
	layout    memoLayout
	blockSize int
	nextFree  uint32
}

// OpenMemo opens or, with IfNonExistentCreate, creates the memo file at path
// in the layout of version v.
func OpenMemo(path string, v Version, ifNonExistent IfNonExistent) (*MemoStore, error) {
	d, err := dialectOf(v)
	if err != nil {
		return nil, err
	}
	m := &MemoStore{path: path, layout: d.memo}

	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	switch {
	case err == nil:
		m.f = f
		if err := m.readHeader(); err != nil {
			_ = f.Close()
			return nil, err
		}
		return m, nil
	case errors.Is(err, fs.ErrNotExist) && ifNonExistent == IfNonExistentCreate:
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			return nil, err
		}
		m.f = f
		if err := m.create(); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return nil, err
		}
		return m, nil
	}
	return nil, err
}

func (m *MemoStore) readHeader() error {
	hdr := make([]byte, 24)
	if _, err := m.f.ReadAt(hdr, 0); err != nil {
		return structural(err, "read memo header")
	}
	switch m.layout {
	case memoTerminated:
		m.nextFree = binary.LittleEndian.Uint32(hdr[0:4])
		m.blockSize = dbaseMemoBlockSize
	case memoLengthPrefixed:
		m.nextFree = binary.LittleEndian.Uint32(hdr[0:4])
		m.blockSize = int(binary.LittleEndian.Uint16(hdr[20:22]))
		if m.blockSize == 0 {
			m.blockSize = dbaseMemoBlockSize
		}
	case memoTyped:
		m.nextFree = binary.BigEndian.Uint32(hdr[0:4])
		m.blockSize = int(binary.BigEndian.Uint16(hdr[6:8]))
		if m.blockSize == 0 {
			m.blockSize = foxproMemoBlockSize
		}
	}
	if m.nextFree == 0 {
		return fmt.Errorf("%w: memo file %s has no free block pointer", ErrCorruptedTable, m.path)
	}
	return nil
}

func (m *MemoStore) create() error {
	hdr := make([]byte, memoHeaderLength)
	switch m.layout {
	case memoTerminated:
		m.blockSize = dbaseMemoBlockSize
		m.nextFree = 1
		binary.LittleEndian.PutUint32(hdr[0:4], m.nextFree)
		hdr[16] = 0x03
	case memoLengthPrefixed:
		m.blockSize = dbaseMemoBlockSize
		m.nextFree = 1
		binary.LittleEndian.PutUint32(hdr[0:4], m.nextFree)
		base := strings.ToUpper(strings.TrimSuffix(filepath.Base(m.path), filepath.Ext(m.path)))
		copy(hdr[8:16], base)
		binary.LittleEndian.PutUint16(hdr[20:22], uint16(m.blockSize))
	case memoTyped:
		m.blockSize = foxproMemoBlockSize
		m.nextFree = memoHeaderLength / foxproMemoBlockSize
		binary.BigEndian.PutUint32(hdr[0:4], m.nextFree)
		binary.BigEndian.PutUint16(hdr[6:8], uint16(m.blockSize))
	}
	_, err := m.f.WriteAt(hdr, 0)
	return err
}

func (m *MemoStore) BlockSize() int { return m.blockSize }

func (m *MemoStore) Path() string { return m.path }

// Write appends data at the first free block and returns its index. Existing
// memos are never rewritten.
func (m *MemoStore) Write(data []byte, kind MemoKind) (int, error) {
	var payload []byte
	switch m.layout {
	case memoTerminated:
		payload = make([]byte, 0, len(data)+len(memoTerminator))
		payload = append(payload, data...)
		payload = append(payload, memoTerminator...)
	case memoLengthPrefixed:
		payload = make([]byte, dbase4MemoPrefixSize, dbase4MemoPrefixSize+len(data))
		binary.LittleEndian.PutUint32(payload[0:4], dbase4MemoSignature)
		binary.LittleEndian.PutUint32(payload[4:8], uint32(len(data)+dbase4MemoPrefixSize))
		payload = append(payload, data...)
	case memoTyped:
		payload = make([]byte, foxproMemoPrefixSize, foxproMemoPrefixSize+len(data))
		binary.BigEndian.PutUint32(payload[0:4], uint32(kind))
		binary.BigEndian.PutUint32(payload[4:8], uint32(len(data)))
		payload = append(payload, data...)
	}

	blocks := (len(payload) + m.blockSize - 1) / m.blockSize
	padded := make([]byte, blocks*m.blockSize)
	copy(padded, payload)

	index := m.nextFree
	if _, err := m.f.WriteAt(padded, int64(index)*int64(m.blockSize)); err != nil {
		return 0, fmt.Errorf("write memo block %d: %w", index, err)
	}
	if err := m.writeNextFree(index + uint32(blocks)); err != nil {
		return 0, err
	}
	return int(index), nil
}

func (m *MemoStore) writeNextFree(next uint32) error {
	buf := make([]byte, 4)
	if m.layout == memoTyped {
		binary.BigEndian.PutUint32(buf, next)
	} else {
		binary.LittleEndian.PutUint32(buf, next)
	}
	if _, err := m.f.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("write memo free block pointer: %w", err)
	}
	m.nextFree = next
	return nil
}

// Read returns the memo stored at index, or nil for index 0.
func (m *MemoStore) Read(index int) ([]byte, error) {
	if index == 0 {
		return nil, nil
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: negative memo index %d", ErrCorruptedTable, index)
	}
	offset := int64(index) * int64(m.blockSize)

	switch m.layout {
	case memoLengthPrefixed:
		prefix := make([]byte, dbase4MemoPrefixSize)
		if _, err := m.f.ReadAt(prefix, offset); err != nil {
			return nil, structural(err, fmt.Sprintf("read memo %d", index))
		}
		if binary.LittleEndian.Uint32(prefix[0:4]) != dbase4MemoSignature {
			return m.scan(offset)
		}
		n := int64(binary.LittleEndian.Uint32(prefix[4:8])) - dbase4MemoPrefixSize
		return m.readN(index, offset+dbase4MemoPrefixSize, n)
	case memoTyped:
		prefix := make([]byte, foxproMemoPrefixSize)
		if _, err := m.f.ReadAt(prefix, offset); err != nil {
			return nil, structural(err, fmt.Sprintf("read memo %d", index))
		}
		n := int64(binary.BigEndian.Uint32(prefix[4:8]))
		return m.readN(index, offset+foxproMemoPrefixSize, n)
	}
	return m.scan(offset)
}

func (m *MemoStore) readN(index int, offset, n int64) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length for memo %d", ErrCorruptedTable, index)
	}
	data := make([]byte, n)
	if _, err := m.f.ReadAt(data, offset); err != nil {
		return nil, structural(err, fmt.Sprintf("read memo %d", index))
	}
	return data, nil
}

// scan reads block after block until the terminator or the end of the file.
func (m *MemoStore) scan(offset int64) ([]byte, error) {
	var data []byte
	block := make([]byte, m.blockSize)
	for {
		n, err := m.f.ReadAt(block, offset)
		if n > 0 {
			// look back one byte in case the terminator straddles two blocks
			from := len(data) - 1
			if from < 0 {
				from = 0
			}
			data = append(data, block[:n]...)
			if i := bytes.Index(data[from:], memoTerminator); i >= 0 {
				return data[:from+i], nil
			}
			offset += int64(n)
		}
		if errors.Is(err, io.EOF) {
			if len(data) == 0 {
				return nil, fmt.Errorf("%w: memo block beyond end of file", ErrCorruptedTable)
			}
			return bytes.TrimRight(data, "\x00\x1a"), nil
		}
		if err != nil {
			return nil, fmt.Errorf("read memo: %w", err)
		}
	}
}

func (m *MemoStore) Close() error {
	if m.f == nil {
		return nil
	}
	err := m.f.Close()
	m.f = nil
	return err
}

// Delete closes the store and removes the memo file.
func (m *MemoStore) Delete() error {
	cerr := m.Close()
	if err := os.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return cerr
}

// findMemoFile looks for base+ext next to the table, ignoring case. More
// than one match is an error rather than a guess.
func findMemoFile(tablePath, ext string) (string, bool, error) {
	dir := filepath.Dir(tablePath)
	want := strings.TrimSuffix(filepath.Base(tablePath), filepath.Ext(tablePath)) + ext

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, err
	}
	var matches []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), want) {
			matches = append(matches, e.Name())
		}
	}
	switch len(matches) {
	case 0:
		return "", false, nil
	case 1:
		return filepath.Join(dir, matches[0]), true, nil
	}
	return "", false, fmt.Errorf("%w: multiple memo files match %s: %s",
		ErrCorruptedTable, want, strings.Join(matches, ", "))
}

// newMemoPath names a memo file for the table; the extension follows the case
// of the table file's extension.
func newMemoPath(tablePath, ext string) string {
	tableExt := filepath.Ext(tablePath)
	if tableExt != "" && tableExt == strings.ToUpper(tableExt) {
		ext = strings.ToUpper(ext)
	}
	return strings.TrimSuffix(tablePath, tableExt) + ext
}
