package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"pledgebook/observability"

	log "github.com/sirupsen/logrus"
)

// ErrConflict is returned by AppendUnique when an existing record collides
var ErrConflict = errors.New("conflicting record exists")

const maxLineSize = 1 << 20

// LogFile is a JSON-lines file holding one record per line.
//
// Every mutating call takes the exclusive lock for its whole duration,
// including the read half of a read-modify-write, so a rewrite can never
// drop a record appended concurrently. Reads share the lock.
type LogFile[T any] struct {
	mu   sync.RWMutex
	path string
	name string
}

// OpenLogFile makes sure path exists and returns a LogFile for it. name
// labels logs and metrics.
func OpenLogFile[T any](path, name string) (*LogFile[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory for %s: %w", name, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	f.Close()

	return &LogFile[T]{path: path, name: name}, nil
}

// Path returns the file backing the log
func (l *LogFile[T]) Path() string {
	return l.path
}

// Append durably adds one record. It returns once the write is synced.
func (l *LogFile[T]) Append(rec T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.appendLocked(rec)
}

// AppendUnique appends rec unless conflicts reports true for any stored
// record, in which case it returns ErrConflict and writes nothing.
func (l *LogFile[T]) AppendUnique(rec T, conflicts func(existing T) bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, _, err := l.readLocked()
	if err != nil {
		return err
	}
	for _, existing := range records {
		if conflicts(existing) {
			return ErrConflict
		}
	}

	return l.appendLocked(rec)
}

// ReadAll returns every record that parses along with the number of lines
// that did not.
func (l *LogFile[T]) ReadAll() ([]T, int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.readLocked()
}

// ReplaceAll atomically swaps the file contents for records
func (l *LogFile[T]) ReplaceAll(records []T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.replaceLocked(records)
}

// Mutate runs a read-modify-write under the exclusive lock. fn receives the
// current records and reports whether it changed them; only then is the file
// rewritten. An error from fn aborts without writing.
func (l *LogFile[T]) Mutate(fn func(records []T) (changed bool, err error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, skipped, err := l.readLocked()
	if err != nil {
		return err
	}

	changed, err := fn(records)
	if err != nil || !changed {
		return err
	}

	if skipped > 0 {
		log.WithFields(log.Fields{
			"store":   l.name,
			"path":    l.path,
			"dropped": skipped,
		}).Warn("Unparseable records dropped on rewrite")
		observability.DroppedRecords.WithLabelValues(l.name).Add(float64(skipped))
	}

	return l.replaceLocked(records)
}

func (l *LogFile[T]) readLocked() ([]T, int, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", l.name, err)
	}
	defer f.Close()

	var (
		records []T
		skipped int
	)

	r := bufio.NewReaderSize(f, 64*1024)
	for {
		line, oversized, readErr := readLine(r)
		if readErr != nil && readErr != io.EOF {
			return nil, 0, fmt.Errorf("failed to read %s: %w", l.name, readErr)
		}

		line = bytes.TrimSpace(line)
		switch {
		case oversized:
			skipped++
		case len(line) > 0:
			var rec T
			if err := json.Unmarshal(line, &rec); err != nil {
				skipped++
			} else {
				records = append(records, rec)
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	if skipped > 0 {
		log.WithFields(log.Fields{
			"store":   l.name,
			"path":    l.path,
			"skipped": skipped,
		}).Warn("Skipped unparseable records")
		observability.SkippedRecords.WithLabelValues(l.name).Add(float64(skipped))
	}

	return records, skipped, nil
}

func (l *LogFile[T]) appendLocked(rec T) (err error) {
	defer func() { l.recordWrite(err) }()

	var line bytes.Buffer
	if err := newEncoder(&line).Encode(rec); err != nil {
		return fmt.Errorf("failed to encode %s record: %w", l.name, err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", l.name, err)
	}
	defer f.Close()

	// A torn final line from an interrupted write stays a single bad line
	// instead of swallowing this record.
	sealed, err := endsWithNewline(f)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", l.name, err)
	}

	buf := make([]byte, 0, line.Len()+1)
	if !sealed {
		buf = append(buf, '\n')
	}
	buf = append(buf, line.Bytes()...)

	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("failed to append to %s: %w", l.name, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", l.name, err)
	}

	return nil
}

func (l *LogFile[T]) replaceLocked(records []T) (err error) {
	defer func() { l.recordWrite(err) }()

	tmp, err := os.CreateTemp(filepath.Dir(l.path), filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", l.name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	enc := newEncoder(w)
	for _, rec := range records {
		if err = enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode %s record: %w", l.name, err)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", l.name, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", l.name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", l.name, err)
	}
	if err = os.Rename(tmpName, l.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", l.name, err)
	}

	return nil
}

func (l *LogFile[T]) recordWrite(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.StoreWrites.WithLabelValues(l.name, outcome).Inc()
}

// newEncoder writes one record per line without HTML escaping. Both the
// append and rewrite paths use it so a record always serializes the same.
func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

// readLine returns the next line of r. Lines longer than maxLineSize are
// consumed and reported as oversized with no content.
func readLine(r *bufio.Reader) ([]byte, bool, error) {
	var (
		line      []byte
		oversized bool
	)
	for {
		chunk, err := r.ReadSlice('\n')
		if !oversized {
			if len(line)+len(chunk) > maxLineSize {
				oversized = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return line, oversized, err
	}
}

func endsWithNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return true, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && err != io.EOF {
		return false, err
	}
	return last[0] == '\n', nil
}
