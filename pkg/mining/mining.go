// Package mining collects the unique developer identities of a repository
// and keeps them in a per-repository data folder.
package mining

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Sumatoshi-tech/devdup/pkg/gitlib"
	"github.com/Sumatoshi-tech/devdup/pkg/identity"
	"github.com/Sumatoshi-tech/devdup/pkg/table"
)

// Devs table columns.
const (
	ColName  = "name"
	ColEmail = "email"
)

// Options narrows the commits a repository is mined from.
type Options struct {
	// Since stops the walk at the first commit committed before it.
	Since *time.Time
	// FirstParent follows only the first parent of merge commits.
	FirstParent bool
}

// Mine walks the commits reachable from HEAD and returns the unique author
// and committer identities sorted by name, then email. A repository without
// commits yields no identities.
func Mine(ctx context.Context, repo *gitlib.Repository, opts Options) ([]identity.DeveloperRecord, error) {
	iter, err := repo.Log(&gitlib.LogOptions{Since: opts.Since, FirstParent: opts.FirstParent})
	if errors.Is(err, gitlib.ErrUnbornHead) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("mine %s: %w", repo.Path(), err)
	}

	seen := make(map[identity.DeveloperRecord]struct{})

	err = iter.ForEach(func(c *gitlib.Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("commit %s: %w", c.Hash(), ctxErr)
		}

		for _, sig := range []gitlib.Signature{c.Author(), c.Committer()} {
			seen[identity.DeveloperRecord{Name: sig.Name, Email: sig.Email}] = struct{}{}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mine %s: %w", repo.Path(), err)
	}

	devs := make([]identity.DeveloperRecord, 0, len(seen))
	for rec := range seen {
		devs = append(devs, rec)
	}

	slices.SortFunc(devs, func(a, b identity.DeveloperRecord) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Email, b.Email))
	})

	return devs, nil
}

// DevsTable renders developer records as a devs table.
func DevsTable(devs []identity.DeveloperRecord) table.Table {
	t := table.New(ColName, ColEmail)
	t.Rows = make([][]string, 0, len(devs))

	for _, d := range devs {
		t.Rows = append(t.Rows, d.Row())
	}

	return t
}

// ReadDevs loads a devs table. The header row is skipped; a row without both
// fields is a MalformedRecordError.
func ReadDevs(path string) ([]identity.DeveloperRecord, error) {
	t, err := table.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read developers: %w", err)
	}

	devs := make([]identity.DeveloperRecord, 0, t.Len())

	for i, row := range t.Rows {
		rec, recErr := identity.RecordFromRow(row)
		if recErr != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, recErr)
		}

		devs = append(devs, rec)
	}

	return devs, nil
}

// WriteDevs stores developer records as a devs table.
func WriteDevs(path string, devs []identity.DeveloperRecord) error {
	err := table.Write(path, DevsTable(devs))
	if err != nil {
		return fmt.Errorf("write developers: %w", err)
	}

	return nil
}
