package godbf

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const tableExt = ".dbf"

// Database is a directory of tables. It only finds table files by name;
// every table is opened and closed on its own.
type Database struct {
	dir  string
	opts []Option
}

// OpenDatabase checks that dir is a directory. opts are passed to every
// table returned by Table.
func OpenDatabase(dir string, opts ...Option) (*Database, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &Database{dir: dir, opts: opts}, nil
}

func (db *Database) Dir() string { return db.dir }

// TableNames returns the names of the .dbf files in the directory, sorted.
func (db *Database) TableNames() ([]string, error) {
	entries, err := os.ReadDir(db.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), tableExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Table returns an unopened table for one of the names from TableNames.
func (db *Database) Table(name string) (*Table, error) {
	names, err := db.TableNames()
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if n == name {
			return NewTable(filepath.Join(db.dir, name), db.opts...)
		}
	}
	return nil, fmt.Errorf("table %s in %s: %w", name, db.dir, fs.ErrNotExist)
}

// OpenTable opens the table called name in the directory. With
// IfNonExistentCreate a missing table is created from the fields in opts,
// which are applied after the database options.
func (db *Database) OpenTable(name string, ifNonExistent IfNonExistent, opts ...Option) (*Table, error) {
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid table name %q", name)
	}
	all := append(append([]Option(nil), db.opts...), opts...)
	t, err := NewTable(filepath.Join(db.dir, name), all...)
	if err != nil {
		return nil, err
	}
	if err := t.Open(ifNonExistent); err != nil {
		return nil, err
	}
	return t, nil
}
