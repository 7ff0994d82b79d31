package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
)

// StatusWriter emits the optional human-readable per-trial summary lines.
// Like FileSink it serializes appends across workers.
type StatusWriter struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
}

// NewStatusWriter creates a status writer appending to path.
func NewStatusWriter(path string) (*StatusWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open status output: %w", err)
	}
	return &StatusWriter{w: bufio.NewWriter(f), closer: f}, nil
}

// NewStatusStdout creates a status writer on standard output.
func NewStatusStdout() *StatusWriter {
	return &StatusWriter{w: bufio.NewWriter(os.Stdout)}
}

// NewStatusTo wraps an arbitrary writer. Used in tests.
func NewStatusTo(w io.Writer) *StatusWriter {
	return &StatusWriter{w: bufio.NewWriter(w)}
}

// TrialStarted reports the state of a trial right after seeding.
func (s *StatusWriter) TrialStarted(epidemicID, trial, t, infected, nodes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "Epidemic %d #%d: started at t = %d with %d / %d ( %.2f%% ) infected nodes\n",
		epidemicID, trial, t, infected, nodes, percent(infected, nodes))
	if err != nil {
		return err
	}
	return s.w.Flush()
}

// TrialStopped reports the final state of a completed trial.
func (s *StatusWriter) TrialStopped(epidemicID, trial, t, infected, nodes, links int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "Epidemic %d #%d: stopped at t = %d with %d / %d ( %.2f%% ) infected nodes and %d links\n",
		epidemicID, trial, t, infected, nodes, percent(infected, nodes), links)
	if err != nil {
		return err
	}
	return s.w.Flush()
}

// Close flushes and releases the underlying file, if any.
func (s *StatusWriter) Close() error {
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

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
