package annotation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sumatoshi-tech/devdup/pkg/table"
)

// OutputSuffix is appended to the candidate file stem of a merged table.
const OutputSuffix = "_ANNOTATED.csv"

// Result describes one merged candidate file.
type Result struct {
	Candidate string
	Output    string
	Rows      int
	Relabeled int
	Err       error
}

// OutputPath returns where the merge of candidatePath is written.
func OutputPath(candidatePath, outDir string) string {
	base := filepath.Base(candidatePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	return filepath.Join(outDir, stem+OutputSuffix)
}

// MergeFile merges the annotated table at annotatedPath into the candidate
// table at candidatePath and writes the result into outDir, creating it.
func MergeFile(annotatedPath, candidatePath, outDir string) (Result, error) {
	annotated, err := table.Read(annotatedPath)
	if err != nil {
		return Result{}, fmt.Errorf("read annotated table: %w", err)
	}

	res := mergeInto(annotated, candidatePath, outDir)

	return res, res.Err
}

// MergeDir applies the annotated table to every annotated CSV file in dir,
// in lexicographic order. Failures are recorded per file; only reading the
// annotated table or listing dir fails the whole call. Unlabeled tables,
// files produced by a previous merge and the annotated file itself are
// skipped.
func MergeDir(annotatedPath, dir, outDir string) ([]Result, error) {
	annotated, err := table.Read(annotatedPath)
	if err != nil {
		return nil, fmt.Errorf("read annotated table: %w", err)
	}

	paths, err := table.List(dir)
	if err != nil {
		return nil, err
	}

	self, err := filepath.Abs(annotatedPath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", annotatedPath, err)
	}

	var results []Result

	for _, path := range paths {
		if strings.HasSuffix(path, OutputSuffix) {
			continue
		}

		abs, absErr := filepath.Abs(path)
		if absErr == nil && abs == self {
			continue
		}

		candidate, readErr := table.Read(path)
		if readErr != nil {
			results = append(results, Result{Candidate: path, Err: readErr})

			continue
		}

		if !candidate.Annotated() {
			continue
		}

		results = append(results, mergeTable(annotated, candidate, path, outDir))
	}

	return results, nil
}

func mergeInto(annotated table.Table, candidatePath, outDir string) Result {
	candidate, err := table.Read(candidatePath)
	if err != nil {
		return Result{Candidate: candidatePath, Err: err}
	}

	return mergeTable(annotated, candidate, candidatePath, outDir)
}

func mergeTable(annotated, candidate table.Table, candidatePath, outDir string) Result {
	res := Result{Candidate: candidatePath, Output: OutputPath(candidatePath, outDir)}

	merged, err := Merge(annotated, candidate)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", candidatePath, err)

		return res
	}

	err = os.MkdirAll(outDir, 0o755)
	if err != nil {
		res.Err = fmt.Errorf("create %s: %w", outDir, err)

		return res
	}

	err = table.Write(res.Output, merged)
	if err != nil {
		res.Err = err

		return res
	}

	res.Rows = merged.Len()
	res.Relabeled = Relabeled(candidate, merged)

	return res
}
