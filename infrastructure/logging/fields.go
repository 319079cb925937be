package logging

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Common field constructors for decision episode logging.

// EpisodeID adds an episode ID field.
func EpisodeID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("episode_id", id)
	}
}

// Step adds a step number field.
func Step(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("step", n)
	}
}

// Strategy adds a resolution strategy field.
func Strategy(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("strategy", name)
	}
}

// Percept adds a percept field. Percepts are opaque value types, so
// they are rendered with their default formatting.
func Percept(p any) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("percept", fmt.Sprint(p))
	}
}

// Action adds an action field.
func Action(a any) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("action", fmt.Sprint(a))
	}
}

// Outcome adds an advance outcome field.
func Outcome(outcome string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("outcome", outcome)
	}
}

// Phase adds an episode lifecycle phase field.
func Phase(phase string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("phase", phase)
	}
}

// Steps adds a total step count field.
func Steps(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("steps", n)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// Str adds an arbitrary string field.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}
