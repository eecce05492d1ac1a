package annotation

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/devdup/pkg/levenshtein"
	"github.com/Sumatoshi-tech/devdup/pkg/table"
)

func newUnknownRowError(index int, row []string, annotated table.Table) *UnknownRowError {
	err := &UnknownRowError{Index: index, Row: row}

	nearest, ok := nearestRow(body(row), annotated)
	if !ok {
		return err
	}

	err.Nearest = nearest
	err.Diff = charDiff(strings.Join(body(nearest), ","), strings.Join(body(row), ","))

	return err
}

// nearestRow returns the annotated row whose non-label columns have the
// smallest edit distance to fields. Ties keep the earliest row.
func nearestRow(fields []string, annotated table.Table) ([]string, bool) {
	if annotated.Len() == 0 {
		return nil, false
	}

	target := strings.Join(fields, ",")
	ctx := &levenshtein.Context{}
	best, bestDist := 0, -1

	for i, row := range annotated.Rows {
		d := ctx.Distance(strings.Join(body(row), ","), target)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}

	return annotated.Rows[best], true
}

// charDiff renders deletions as [-text-] and insertions as {+text+}.
func charDiff(from, to string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(from, to, false))

	var sb strings.Builder

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		}
	}

	return sb.String()
}
