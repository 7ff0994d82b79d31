package logging

import "time"

// Generic field constructors

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field rendered as a string
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Error creates an error field
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Domain field constructors, so call sites keep the key names consistent

// RunID tags a log entry with the run identifier
func RunID(id string) Field { return String("run_id", id) }

// EpidemicID tags a log entry with an epidemic id
func EpidemicID(id int) Field { return Int("epidemic_id", id) }

// Trial tags a log entry with a trial index
func Trial(i int) Field { return Int("trial", i) }

// Nodes reports a graph node count
func Nodes(n int) Field { return Int("nodes", n) }

// Arcs reports a graph arc count
func Arcs(m int) Field { return Int("arcs", m) }

// Infected reports an infected-node count
func Infected(n int) Field { return Int("infected", n) }

// Links reports a cascade-link count
func Links(n int) Field { return Int("links", n) }

// Workers reports a worker count
func Workers(n int) Field { return Int("workers", n) }

// Probability reports the transmission probability
func Probability(p float64) Field { return Float64("probability", p) }

// Criterion reports a stop-criterion name
func Criterion(name string) Field { return String("criterion", name) }

// Bound reports a stop bound
func Bound(b int) Field { return Int("bound", b) }

// Seed reports the base random seed
func Seed(s int64) Field { return Int64("seed", s) }

// Path reports a file path
func Path(p string) Field { return String("path", p) }
