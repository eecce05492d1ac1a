package annotation_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/devdup/pkg/annotation"
	"github.com/Sumatoshi-tech/devdup/pkg/table"
)

func TestOutputPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		filepath.Join("out", "devs_similarity_t=0.9_ANNOTATED.csv"),
		annotation.OutputPath(filepath.Join("data", "devs_similarity_t=0.9.csv"), "out"))
}

func TestMergeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ann := annotatedTable()
	annPath := filepath.Join(dir, "old.csv")
	require.NoError(t, table.Write(annPath, ann))

	candPath := filepath.Join(dir, "devs_similarity_no_c4c7_t=0.99.csv")
	require.NoError(t, table.Write(candPath, unlabeled(ann.Rows[1], ann.Rows[2])))

	outDir := filepath.Join(dir, "annotated")

	res, err := annotation.MergeFile(annPath, candPath, outDir)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, 2, res.Relabeled)
	assert.Equal(t, filepath.Join(outDir, "devs_similarity_no_c4c7_t=0.99_ANNOTATED.csv"), res.Output)

	got, err := table.Read(res.Output)
	require.NoError(t, err)
	assert.Equal(t, [][]string{ann.Rows[1], ann.Rows[2]}, got.Rows)
}

func TestMergeFileMissingAnnotated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := annotation.MergeFile(filepath.Join(dir, "nope.csv"), filepath.Join(dir, "c.csv"), dir)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMergeDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ann := annotatedTable()
	annPath := filepath.Join(dir, "annotated_old.csv")
	require.NoError(t, table.Write(annPath, ann))

	require.NoError(t, table.Write(filepath.Join(dir, "a_t=0.9.csv"), unlabeled(ann.Rows...)))
	require.NoError(t, table.Write(filepath.Join(dir, "b_t=0.99.csv"), unlabeled(ann.Rows[0])))

	bad := unlabeled(ann.Rows[0])
	bad.Rows[0][1] = "Someone Else"
	require.NoError(t, table.Write(filepath.Join(dir, "c_t=1.0.csv"), bad))

	devs := table.New("name", "email")
	devs.Rows = [][]string{{"John Doe", "john@x.com"}}
	require.NoError(t, table.Write(filepath.Join(dir, "devs.csv"), devs))

	outDir := filepath.Join(dir, "out")

	results, err := annotation.MergeDir(annPath, dir, outDir)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, filepath.Join(dir, "a_t=0.9.csv"), results[0].Candidate)
	require.NoError(t, results[0].Err)
	assert.Equal(t, 4, results[0].Rows)

	require.NoError(t, results[1].Err)
	assert.Equal(t, 1, results[1].Rows)

	require.ErrorIs(t, results[2].Err, annotation.ErrUnknownRow)
	assert.NoFileExists(t, results[2].Output)

	// A second run ignores the merged outputs even when written in place.
	results, err = annotation.MergeDir(annPath, outDir, outDir)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMergeDirMetacharacterDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "repo[1]-data")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	ann := annotatedTable()
	annPath := filepath.Join(t.TempDir(), "reviewed.csv")
	require.NoError(t, table.Write(annPath, ann))
	require.NoError(t, table.Write(filepath.Join(dir, "a_t=0.9.csv"), unlabeled(ann.Rows...)))

	results, err := annotation.MergeDir(annPath, dir, filepath.Join(dir, "annotated"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, ann.Len(), results[0].Rows)
	assert.FileExists(t, results[0].Output)
}
