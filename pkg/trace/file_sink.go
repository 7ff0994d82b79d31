package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/golang/snappy"
)

// FileSink appends trace records to a single writer shared by all workers.
// One mutex guards the whole append path, so each record line is atomic.
type FileSink struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
}

// NewFileSink creates a plain text sink writing to path.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	return &FileSink{w: bufio.NewWriter(f), closer: f}, nil
}

// NewSnappySink creates a sink writing records through a snappy-framed
// stream. Record content is identical to the plain sink.
func NewSnappySink(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	sw := snappy.NewBufferedWriter(f)
	return &FileSink{w: bufio.NewWriter(sw), closer: &snappyCloser{sw: sw, f: f}}, nil
}

// NewWriterSink wraps an arbitrary writer. Used in tests.
func NewWriterSink(w io.Writer) *FileSink {
	return &FileSink{w: bufio.NewWriter(w)}
}

// Record appends one transmission record: four space-separated integers,
// `t provider client epidemicID`, one line per record.
func (s *FileSink) Record(t, provider, client, epidemicID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "%d %d %d %d\n", t, provider, client, epidemicID); err != nil {
		return fmt.Errorf("append trace record: %w", err)
	}
	return nil
}

// Flush drains buffered records to the underlying writer.
func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

// Close flushes and releases the underlying file, if any.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// snappyCloser closes the compression stream before the file so the final
// frame is written out.
type snappyCloser struct {
	sw *snappy.Writer
	f  *os.File
}

func (c *snappyCloser) Close() error {
	if err := c.sw.Close(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}
