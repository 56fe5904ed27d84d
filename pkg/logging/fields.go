package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration records an elapsed time in milliseconds
func Duration(d time.Duration) Field {
	return Field{Key: "durationMs", Value: float64(d.Microseconds()) / 1000.0}
}

// Error records an error message under the "error" key
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Domain field constructors used across the synthesis pipeline

func Archetype(a string) Field {
	return Field{Key: "archetype", Value: a}
}

func Phase(name string) Field {
	return Field{Key: "phase", Value: name}
}

func Seed(seed int64) Field {
	return Field{Key: "seed", Value: seed}
}

func Devices(n int) Field {
	return Field{Key: "devices", Value: n}
}

func Links(n int) Field {
	return Field{Key: "links", Value: n}
}

func Segments(n int) Field {
	return Field{Key: "segments", Value: n}
}
