// Package workspace allocates per-job scratch directories.
//
// Each job gets its own directory named after a random UUID, so concurrent
// jobs never share files. Callers must call [Job.Cleanup] when done.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Prefix starts every job directory name.
const Prefix = "amplify-"

// Job is one scratch directory.
type Job struct {
	id   string
	dir  string
	once sync.Once
	err  error
}

// New creates a job directory under base. An empty base uses os.TempDir.
func New(base string) (*Job, error) {
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace base %s: %w", base, err)
	}

	id := uuid.NewString()
	dir := filepath.Join(base, Prefix+id)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace %s: %w", dir, err)
	}
	return &Job{id: id, dir: dir}, nil
}

// ID returns the job's identifier.
func (j *Job) ID() string { return j.id }

// Dir returns the job's directory.
func (j *Job) Dir() string { return j.dir }

// Path joins elem onto the job directory.
func (j *Job) Path(elem ...string) string {
	return filepath.Join(append([]string{j.dir}, elem...)...)
}

// Mkdir creates a subdirectory of the job and returns its path.
func (j *Job) Mkdir(name string) (string, error) {
	p := j.Path(name)
	if err := os.MkdirAll(p, 0o700); err != nil {
		return "", fmt.Errorf("create %s: %w", p, err)
	}
	return p, nil
}

// Cleanup removes the job directory. Repeated calls return the first result.
func (j *Job) Cleanup() error {
	j.once.Do(func() {
		if err := os.RemoveAll(j.dir); err != nil {
			j.err = fmt.Errorf("remove workspace %s: %w", j.dir, err)
		}
	})
	return j.err
}
