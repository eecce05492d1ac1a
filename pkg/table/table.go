// Package table reads and writes the comma-separated tables exchanged between
// pipeline stages and human reviewers.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// LabelColumn is the annotation column heading every candidate table.
const LabelColumn = "true_pos"

// Ext is the file extension of plain tables.
const Ext = ".csv"

// CompressedExt is the file extension of lz4-compressed tables.
const CompressedExt = ".lz4"

// Sentinel errors.
var (
	// ErrEmptyTable indicates a file without a header row.
	ErrEmptyTable = errors.New("table has no header row")
	// ErrNotAnnotated indicates a table whose first column is not LabelColumn.
	ErrNotAnnotated = errors.New("table has no " + LabelColumn + " column")
)

// Table is a header plus rows of string fields. Operations return new tables
// and never reorder rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// New creates an empty table with the given header.
func New(header ...string) Table {
	return Table{Header: slices.Clone(header)}
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Annotated reports whether the first column is the label column.
func (t Table) Annotated() bool {
	return len(t.Header) > 0 && t.Header[0] == LabelColumn
}

// Clone returns a deep copy.
func (t Table) Clone() Table {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = slices.Clone(row)
	}

	return Table{Header: slices.Clone(t.Header), Rows: rows}
}

// List returns the paths of the plain tables directly inside dir, sorted by
// file name. Directories and compressed tables are not listed. The directory
// name is used literally, never as a pattern.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var paths []string

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Ext {
			continue
		}

		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	slices.Sort(paths)

	return paths, nil
}

// ReadFrom parses a table with a header row. Rows may have differing widths;
// callers validate the shape they need.
func ReadFrom(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse csv: %w", err)
	}

	if len(records) == 0 {
		return Table{}, ErrEmptyTable
	}

	return Table{Header: records[0], Rows: records[1:]}, nil
}

// Read loads a table from path, decompressing files ending in CompressedExt.
func Read(path string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open table: %w", err)
	}
	defer file.Close()

	var src io.Reader = file
	if strings.HasSuffix(path, CompressedExt) {
		src = lz4.NewReader(file)
	}

	t, err := ReadFrom(src)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}

	return t, nil
}

// WriteTo writes the header and rows as CSV.
func WriteTo(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)

	err := writer.Write(t.Header)
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	err = writer.WriteAll(t.Rows)
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	return nil
}

// Write stores the table at path atomically: the data goes to a temporary
// file in the same directory which is then renamed over path. Paths ending in
// CompressedExt are lz4-compressed.
func Write(path string, t Table) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpPath := tmp.Name()

	writeErr := writeFile(tmp, path, t)

	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}

	if writeErr != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("write %s: %w", path, writeErr)
	}

	err = os.Rename(tmpPath, path)
	if err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("rename %s: %w", path, err)
	}

	return nil
}

func writeFile(file *os.File, path string, t Table) error {
	if !strings.HasSuffix(path, CompressedExt) {
		err := WriteTo(file, t)
		if err != nil {
			return err
		}

		return file.Sync()
	}

	zw := lz4.NewWriter(file)

	err := WriteTo(zw, t)
	if err != nil {
		return err
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("flush lz4: %w", err)
	}

	return file.Sync()
}
