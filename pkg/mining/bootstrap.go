package mining

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/Sumatoshi-tech/devdup/pkg/gitlib"
	"github.com/Sumatoshi-tech/devdup/pkg/identity"
)

// DevsFile is the name of the devs table inside a data folder.
const DevsFile = "devs.csv"

const (
	folderSuffix   = "-data"
	lockSuffix     = ".lock"
	lockRetryDelay = 100 * time.Millisecond
)

// ErrLocked is returned when the data folder lock cannot be acquired.
var ErrLocked = errors.New("data folder is locked")

// Dataset is a bootstrapped data folder.
type Dataset struct {
	Folder string
	Devs   []identity.DeveloperRecord
	// Reused is true when an existing devs table was loaded instead of
	// mining the repository.
	Reused bool
}

// DevsPath returns the devs table path of the dataset.
func (d Dataset) DevsPath() string {
	return filepath.Join(d.Folder, DevsFile)
}

// DataFolder returns "<root>/<repository name>-data".
func DataFolder(root, repoPath string) string {
	return filepath.Join(root, gitlib.RepositoryName(repoPath)+folderSuffix)
}

// Bootstrap ensures the data folder of the repository at repoPath exists
// under root and holds a devs table, mining the repository only when the
// table is missing. opts only applies when mining. Concurrent bootstraps of the same folder are serialized
// with a file lock next to the folder.
func Bootstrap(ctx context.Context, repoPath, root string, opts Options, logger *slog.Logger) (Dataset, error) {
	ds := Dataset{Folder: DataFolder(root, repoPath)}

	err := os.MkdirAll(root, 0o755)
	if err != nil {
		return ds, fmt.Errorf("create data root: %w", err)
	}

	lock := flock.New(ds.Folder + lockSuffix)

	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return ds, fmt.Errorf("lock %s: %w", ds.Folder, err)
	}

	if !locked {
		return ds, fmt.Errorf("%w: %s", ErrLocked, ds.Folder)
	}

	defer func() {
		unlockErr := lock.Unlock()
		if unlockErr != nil {
			logger.Warn("failed to release data folder lock", "folder", ds.Folder, "error", unlockErr)
		}
	}()

	_, err = os.Stat(ds.DevsPath())

	switch {
	case err == nil:
		logger.Info("using existing data folder", "folder", ds.Folder)

		ds.Devs, err = ReadDevs(ds.DevsPath())
		if err != nil {
			return ds, err
		}

		ds.Reused = true
	case errors.Is(err, fs.ErrNotExist):
		ds.Devs, err = mineInto(ctx, repoPath, ds, opts)
		if err != nil {
			return ds, err
		}
	default:
		return ds, fmt.Errorf("stat %s: %w", ds.DevsPath(), err)
	}

	logger.Info("developers loaded", "count", len(ds.Devs), "reused", ds.Reused)

	return ds, nil
}

func mineInto(ctx context.Context, repoPath string, ds Dataset, opts Options) ([]identity.DeveloperRecord, error) {
	repo, err := gitlib.OpenRepository(repoPath)
	if err != nil {
		return nil, err
	}
	defer repo.Free()

	devs, err := Mine(ctx, repo, opts)
	if err != nil {
		return nil, err
	}

	err = os.MkdirAll(ds.Folder, 0o755)
	if err != nil {
		return nil, fmt.Errorf("create data folder: %w", err)
	}

	err = WriteDevs(ds.DevsPath(), devs)
	if err != nil {
		return nil, err
	}

	return devs, nil
}
