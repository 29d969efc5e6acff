package godbf

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	SPACE   = 0x20
	EOF     = 0x1A
	NUL     = 0x00
	DELETED = 0x2A
)

// IfNonExistent decides what Open does when the table file is missing.
type IfNonExistent int

const (
	IfNonExistentError IfNonExistent = iota
	IfNonExistentCreate
)

func (p IfNonExistent) String() string {
	if p == IfNonExistentCreate {
		return "create"
	}
	return "error"
}

// Table is one .dbf file and, when it has memo fields, its .dbt/.fpt file.
// A Table must be opened before use and is not safe for concurrent use.
type Table struct {
	fileName string
	f        *os.File
	cs       *charset
	logger   *slog.Logger

	version   Version
	newFields []Field

	header  Header
	dialect *dialect
	memo    *MemoStore
}

type Option func(*tableOptions)

type tableOptions struct {
	version Version
	fields  []Field
	charset string
	logger  *slog.Logger
}

// WithVersion selects the dialect of a new table. For an existing file it is
// a hint that wins over detection when the version byte agrees with it.
func WithVersion(v Version) Option {
	return func(o *tableOptions) { o.version = v }
}

// WithFields sets the schema used when Open creates the table. It is ignored
// for a file that already exists.
func WithFields(fields ...Field) Option {
	return func(o *tableOptions) { o.fields = append([]Field(nil), fields...) }
}

func WithCharset(name string) Option {
	return func(o *tableOptions) { o.charset = name }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *tableOptions) { o.logger = l }
}

// NewTable prepares a table backed by fileName. Nothing is read or written
// until Open.
func NewTable(fileName string, opts ...Option) (*Table, error) {
	if fileName == "" {
		return nil, errors.New("table file name must not be empty")
	}
	o := tableOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	cs, err := newCharset(o.charset)
	if err != nil {
		return nil, err
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if len(o.fields) > 0 {
		if o.version == 0 {
			o.version = DBase3
		}
		d, err := dialectOf(o.version)
		if err != nil {
			return nil, err
		}
		if err := d.checkFields(o.fields); err != nil {
			return nil, err
		}
		if len(o.fields) > maxFieldCount {
			return nil, fmt.Errorf("%w: %d fields, at most %d", ErrInvalidFieldLength, len(o.fields), maxFieldCount)
		}
		if computeRecordLength(o.fields) > 0xFFFF {
			return nil, fmt.Errorf("%w: record longer than 65535 bytes", ErrInvalidFieldLength)
		}
	} else if o.version != 0 {
		if _, err := dialectOf(o.version); err != nil {
			return nil, err
		}
	}
	return &Table{
		fileName:  fileName,
		cs:        cs,
		logger:    o.logger.With("table", filepath.Base(fileName)),
		version:   o.version,
		newFields: o.fields,
	}, nil
}

// Open reads the header of an existing table, or creates the table when it
// is missing and ifNonExistent is IfNonExistentCreate. If anything fails
// the table stays closed.
func (t *Table) Open(ifNonExistent IfNonExistent) (err error) {
	if t.f != nil {
		return fmt.Errorf("table %s is already open", t.fileName)
	}
	defer func() {
		if err != nil {
			_ = t.Close()
		}
	}()

	f, err := os.OpenFile(t.fileName, os.O_RDWR, 0)
	switch {
	case err == nil:
		t.f = f
		return t.load()
	case errors.Is(err, fs.ErrNotExist) && ifNonExistent == IfNonExistentCreate:
		return t.create()
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("open table %s: %w", t.fileName, err)
	}
	return err
}

func (t *Table) load() error {
	header, err := decodeHeader(t.f, t.version, t.cs)
	if err != nil {
		return err
	}
	t.header = header
	t.dialect = dialects[header.Version]
	t.logger.Debug("opened table",
		"version", header.Version, "records", header.RecordCount, "fields", len(header.Fields))

	if header.HasMemo {
		return t.ensureMemo(IfNonExistentError)
	}
	return nil
}

func (t *Table) create() error {
	if len(t.newFields) == 0 {
		return fmt.Errorf("create table %s: %w: no fields defined", t.fileName, ErrInvalidFieldLength)
	}
	f, err := os.OpenFile(t.fileName, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	t.f = f
	t.dialect = dialects[t.version]
	t.header = Header{
		Version:      t.version,
		LastModified: today(),
		HeaderLength: uint16(computeHeaderLength(len(t.newFields))),
		RecordLength: uint16(computeRecordLength(t.newFields)),
		HasMemo:      hasMemoField(t.newFields),
		Fields:       t.newFields,
	}
	// a half-created table is removed again
	discard := func(err error) error {
		_ = t.Close()
		_ = os.Remove(t.fileName)
		return err
	}
	if err := t.writeHeader(); err != nil {
		return discard(err)
	}
	if t.header.HasMemo {
		if err := t.ensureMemo(IfNonExistentCreate); err != nil {
			return discard(err)
		}
	}
	t.logger.Debug("created table", "version", t.version, "fields", len(t.newFields))
	return nil
}

// Close releases the table file and the memo file. The memo file is closed
// even when closing the table file fails. Closing a closed table is a no-op.
func (t *Table) Close() error {
	var ferr, merr error
	if t.f != nil {
		ferr = t.f.Close()
		t.f = nil
	}
	if t.memo != nil {
		merr = t.memo.Close()
		t.memo = nil
	}
	return errors.Join(ferr, merr)
}

// Delete closes the table and removes the table file and its memo file.
func (t *Table) Delete() error {
	var memoErr error
	memoPath := ""
	if t.memo != nil {
		memoPath = t.memo.Path()
		memoErr = t.memo.Delete()
		t.memo = nil
	} else if memoPath = t.existingMemoPath(); memoPath != "" {
		if err := os.Remove(memoPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			memoErr = err
		}
	}
	if err := t.Close(); err != nil {
		return errors.Join(err, memoErr)
	}
	if err := os.Remove(t.fileName); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Join(err, memoErr)
	}
	if memoErr != nil {
		return memoErr
	}
	t.logger.Debug("deleted table", "memo", memoPath)
	return nil
}

func (t *Table) existingMemoPath() string {
	exts := []string{".dbt", ".fpt"}
	if t.dialect != nil {
		exts = []string{t.dialect.memoExt}
	} else if d, ok := dialects[t.version]; ok {
		exts = []string{d.memoExt}
	}
	for _, ext := range exts {
		if p, ok, err := findMemoFile(t.fileName, ext); err == nil && ok {
			return p
		}
	}
	return ""
}

// ensureMemo opens the memo file on first use.
func (t *Table) ensureMemo(ifNonExistent IfNonExistent) error {
	if t.memo != nil {
		return nil
	}
	path, ok, err := findMemoFile(t.fileName, t.dialect.memoExt)
	if err != nil {
		return err
	}
	if !ok {
		if ifNonExistent == IfNonExistentError {
			return fmt.Errorf("%w: could not find memo file %s",
				ErrCorruptedTable, newMemoPath(t.fileName, t.dialect.memoExt))
		}
		path = newMemoPath(t.fileName, t.dialect.memoExt)
		t.logger.Debug("creating memo file", "memo", filepath.Base(path))
	}
	memo, err := OpenMemo(path, t.header.Version, ifNonExistent)
	if err != nil {
		return err
	}
	t.memo = memo
	return nil
}

func (t *Table) checkOpen() error {
	if t.f == nil {
		return fmt.Errorf("%s: %w", t.fileName, ErrTableClosed)
	}
	return nil
}

// Name returns the file name of the table including its extension.
func (t *Table) Name() string {
	return filepath.Base(t.fileName)
}

// Fields returns a copy of the field list in record order.
func (t *Table) Fields() ([]Field, error) {
	if err := t.checkOpen(); err != nil {
		return nil, err
	}
	return append([]Field(nil), t.header.Fields...), nil
}

// LastModified returns the date in the header; the time of day is always
// midnight.
func (t *Table) LastModified() (time.Time, error) {
	if err := t.checkOpen(); err != nil {
		return time.Time{}, err
	}
	return t.header.LastModified, nil
}

// RecordCount includes records marked as deleted.
func (t *Table) RecordCount() (int, error) {
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	return int(t.header.RecordCount), nil
}

// Version returns the dialect of an open table, or the requested version of
// a table that has not been opened yet.
func (t *Table) Version() Version {
	if t.dialect != nil {
		return t.header.Version
	}
	return t.version
}

func (t *Table) Charset() string {
	return t.cs.name
}

func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
