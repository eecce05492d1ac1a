package table_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/devdup/pkg/table"
)

func sample() table.Table {
	return table.Table{
		Header: []string{table.LabelColumn, "name_1", "email_1"},
		Rows: [][]string{
			{"0", "Doe, John", "john@x.org"},
			{"1", `Jane "JD" Doe`, "jane@x.org"},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "t.csv")
	require.NoError(t, table.Write(path, sample()))

	got, err := table.Read(path)
	require.NoError(t, err)

	if diff := cmp.Diff(sample(), got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "true_pos,name_1,email_1\n"))
	assert.Contains(t, string(raw), `"Doe, John"`)
	assert.Contains(t, string(raw), `"Jane ""JD"" Doe"`)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "t.csv")

	require.NoError(t, table.Write(path, sample()))
	require.NoError(t, table.Write(path, table.New("name", "email")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "t.csv", entries[0].Name())

	got, err := table.Read(path)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, []string{"name", "email"}, got.Header)
}

func TestCompressed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pairs.csv"+table.CompressedExt)
	require.NoError(t, table.Write(path, sample()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var plain bytes.Buffer

	_, err = plain.ReadFrom(lz4.NewReader(bytes.NewReader(raw)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(plain.String(), "true_pos,"))

	got, err := table.Read(path)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestReadEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := table.Read(path)
	require.ErrorIs(t, err, table.ErrEmptyTable)
}

func TestReadRaggedRows(t *testing.T) {
	t.Parallel()

	got, err := table.ReadFrom(strings.NewReader("name,email\nonly-name\na,b\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"only-name"}, {"a", "b"}}, got.Rows)
}

func TestAnnotatedAndClone(t *testing.T) {
	t.Parallel()

	orig := sample()
	assert.True(t, orig.Annotated())
	assert.False(t, table.New("name", "email").Annotated())
	assert.False(t, table.Table{}.Annotated())

	clone := orig.Clone()
	clone.Rows[0][0] = "1"
	assert.Equal(t, "0", orig.Rows[0][0])
}

func TestListTakesDirLiterally(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "repo[1]-data")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "annotated.csv"), 0o755))

	for _, name := range []string{"b.csv", "a.csv", "pairs.csv.lz4", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("true_pos\n"), 0o600))
	}

	got, err := table.List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}, got)
}

func TestListMissingDir(t *testing.T) {
	t.Parallel()

	_, err := table.List(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
