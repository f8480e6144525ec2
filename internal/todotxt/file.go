package todotxt

import (
	"crypto/rand"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

// Load reads and parses a todo.txt file. The file's trailing-newline
// convention is recorded on the list so Save reproduces it. A missing file
// is reported as fs.ErrNotExist; callers decide whether that means "start
// empty" or a hard failure.
func Load(path string) (*List, []Anomaly, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	l, anomalies := ParseTasks(string(data))
	return l, anomalies, nil
}

// Save writes the full collection back, one record per line, via atomic
// replace: the content lands in a temporary sibling which is renamed over
// the original, so a crash or concurrent reader never observes a
// half-written file. On failure the original is untouched.
func Save(path string, l *List) error {
	var b strings.Builder
	for i, t := range l.Tasks {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(t.String())
	}
	if len(l.Tasks) > 0 && !l.noFinalNewline {
		b.WriteByte('\n')
	}
	if err := atomicWriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, ".tmp-"+newULID())
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Rename is atomic on same filesystem.
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func newULID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		// fallback
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToUpper(id.String())
}
