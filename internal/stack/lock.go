package stack

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// lockFileMode is the permission mode for lock files.
const lockFileMode = 0o644

// Lock is an advisory, per-descriptor lock guarding concurrent invocations
// on the same host. Two concurrent deploys (or a deploy and a destroy)
// against the same stack would otherwise race with only the provider's own
// mutual exclusion between them.
type Lock struct {
	path string
}

// DefaultLockDir returns the lock directory under the user's home, falling
// back to the system temp dir when home cannot be resolved.
func DefaultLockDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "quarry-deploy-locks")
	}
	return filepath.Join(home, ".quarry-deploy", "locks")
}

// AcquireLock takes the advisory lock for the descriptor, creating the lock
// file exclusively and recording the holder's pid. A held lock fails fast
// with the holder's pid rather than blocking.
func AcquireLock(dir string, desc Descriptor) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir %q: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.%s.lock", desc.Name, desc.Region))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, lockFileMode)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			holder := "unknown"
			if data, readErr := os.ReadFile(path); readErr == nil {
				if pid := strings.TrimSpace(string(data)); pid != "" {
					holder = "pid " + pid
				}
			}
			return nil, fmt.Errorf(
				"stack %q is locked by another invocation (%s); remove %s if it is stale",
				desc.Name, holder, path,
			)
		}
		return nil, fmt.Errorf("acquire lock %q: %w", path, err)
	}

	_, writeErr := f.WriteString(strconv.Itoa(os.Getpid()))
	closeErr := f.Close()
	if writeErr != nil || closeErr != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write lock %q: %w", path, errors.Join(writeErr, closeErr))
	}

	return &Lock{path: path}, nil
}

// Release removes the lock file. Safe to call on all exit paths; releasing
// an already-released lock is not an error.
func (l *Lock) Release() error {
	err := os.Remove(l.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("release lock %q: %w", l.path, err)
	}
	return nil
}
