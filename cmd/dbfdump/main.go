package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	godbf "github.com/Ulysses-Xu/go-xbase"
)

func main() {
	configPath := flag.StringP("config", "c", "", "yaml config file")
	charset := flag.String("charset", "", "charset of the table (overrides config)")
	fieldsOnly := flag.Bool("fields", false, "only print the field list")
	limit := flag.IntP("limit", "n", 0, "print at most n records per table (0 = all)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: dbfdump [flags] <table.dbf | directory>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := &godbf.Config{Charset: godbf.DefaultCharset, LogLevel: "info"}
	if *configPath != "" {
		var err error
		if cfg, err = godbf.LoadConfig(*configPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *charset != "" {
		cfg.Charset = *charset
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})
	slog.SetDefault(slog.New(handler))

	opts, err := cfg.Options()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	target := flag.Arg(0)
	info, err := os.Stat(target)
	if err != nil {
		log.Fatalf("stat %s: %v", target, err)
	}
	if !info.IsDir() {
		db, err := godbf.OpenDatabase(filepath.Dir(target), opts...)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		if err := dump(os.Stdout, db, filepath.Base(target), cfg.IfNonExistent(), *fieldsOnly, *limit); err != nil {
			log.Fatalf("%s: %v", target, err)
		}
		return
	}

	db, err := godbf.OpenDatabase(target, opts...)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	names, err := db.TableNames()
	if err != nil {
		log.Fatalf("list tables: %v", err)
	}
	slog.Info("found tables", "dir", target, "count", len(names))
	for _, name := range names {
		fmt.Printf("== %s\n", name)
		if err := dump(os.Stdout, db, name, cfg.IfNonExistent(), *fieldsOnly, *limit); err != nil {
			slog.Error("dump failed", "table", name, "err", err)
		}
	}
}

func dump(w io.Writer, db *godbf.Database, name string, policy godbf.IfNonExistent, fieldsOnly bool, limit int) error {
	t, err := db.OpenTable(name, policy)
	if err != nil {
		return err
	}
	defer func() {
		if err := t.Close(); err != nil {
			slog.Warn("close table", "table", name, "err", err)
		}
	}()

	fields, err := t.Fields()
	if err != nil {
		return err
	}
	modified, _ := t.LastModified()
	count, _ := t.RecordCount()
	fmt.Fprintf(w, "version: %v  charset: %s  modified: %s  records: %d\n",
		t.Version(), t.Charset(), modified.Format("2006-01-02"), count)
	for _, f := range fields {
		fmt.Fprintf(w, "  %-10s %-9s %3d %2d\n", f.Name(), f.Type(), f.Length(), f.DecimalCount())
	}
	if fieldsOnly {
		return nil
	}

	it := t.Records()
	for n := 0; limit == 0 || n < limit; n++ {
		rec, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		cols := make([]string, 0, rec.Len())
		for _, name := range rec.Names() {
			cols = append(cols, name+"="+rec.Value(name).String())
		}
		fmt.Fprintln(w, strings.Join(cols, " | "))
	}
	return nil
}
