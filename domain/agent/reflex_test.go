package agent

import (
	"errors"
	"fmt"
	"testing"
)

// condition is the interpreted state for the weather domain: either a
// recognized outlook or an Unrecognized carrier for anything else.
type condition struct {
	outlook string
	unknown Unrecognized[weather]
}

const (
	outlookGood = "good"
	outlookBad  = "bad"
)

func interpretWeather(p weather) condition {
	switch p {
	case sunny, partlyCloudy:
		return condition{outlook: outlookGood}
	case rainy, thunderstorm:
		return condition{outlook: outlookBad}
	default:
		return condition{unknown: Unrecognized[weather]{Percept: p}}
	}
}

func matchWindowRule(s condition) (window, error) {
	switch s.outlook {
	case outlookGood:
		return open, nil
	case outlookBad:
		return shut, nil
	default:
		return "", fmt.Errorf("%w: unrecognized percept %q", ErrNoApplicableRule, s.unknown.Percept)
	}
}

var _ Agent[weather, window] = (*ReflexAgent[weather, condition, window])(nil)

func newWeatherReflex(t *testing.T, opts ...ReflexOption[weather, condition, window]) *ReflexAgent[weather, condition, window] {
	t.Helper()

	agent, err := NewReflexAgent(interpretWeather, matchWindowRule, opts...)
	if err != nil {
		t.Fatalf("NewReflexAgent() error = %v", err)
	}
	return agent
}

func TestNewReflexAgent_RequiresBothFunctions(t *testing.T) {
	t.Parallel()

	if _, err := NewReflexAgent[weather, condition, window](nil, matchWindowRule); err == nil {
		t.Error("NewReflexAgent(nil, rule) should return an error")
	}
	if _, err := NewReflexAgent[weather, condition, window](interpretWeather, nil); err == nil {
		t.Error("NewReflexAgent(interpret, nil) should return an error")
	}
}

func TestReflexAgent_Advance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		percept weather
		want    window
		wantErr error
	}{
		{sunny, open, nil},
		{partlyCloudy, open, nil},
		{rainy, shut, nil},
		{thunderstorm, shut, nil},
		{cloudy, "", ErrNoApplicableRule},
		{weather("hail"), "", ErrNoApplicableRule},
	}

	for _, tt := range tests {
		t.Run(string(tt.percept), func(t *testing.T) {
			t.Parallel()

			agent := newWeatherReflex(t)
			got, err := agent.Advance(tt.percept)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Advance(%s) error = %v, want %v", tt.percept, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Advance(%s) error = %v, want nil", tt.percept, err)
			}
			if got != tt.want {
				t.Errorf("Advance(%s) = %q, want %q", tt.percept, got, tt.want)
			}
		})
	}
}

func TestReflexAgent_ReferentialTransparency(t *testing.T) {
	t.Parallel()

	agent := newWeatherReflex(t)

	for i := 0; i < 10; i++ {
		got, err := agent.Advance(sunny)
		if err != nil {
			t.Fatalf("Advance(sunny) #%d error = %v, want nil", i+1, err)
		}
		if got != open {
			t.Fatalf("Advance(sunny) #%d = %q, want %q on every call", i+1, got, open)
		}
	}

	// Failures are just as repeatable: no hidden state accumulates.
	for i := 0; i < 10; i++ {
		if _, err := agent.Advance(cloudy); !errors.Is(err, ErrNoApplicableRule) {
			t.Fatalf("Advance(cloudy) #%d error = %v, want ErrNoApplicableRule", i+1, err)
		}
	}
}

func TestReflexAgent_InterpretIsTotal(t *testing.T) {
	t.Parallel()

	// Exhaustive enumeration over the finite test percept domain plus a
	// value outside it: every input yields a defined condition.
	domain := []weather{sunny, rainy, cloudy, partlyCloudy, thunderstorm, weather("tornado")}

	for _, p := range domain {
		s := interpretWeather(p)
		recognized := s.outlook != ""
		carried := s.unknown != (Unrecognized[weather]{})
		if !recognized && !carried {
			t.Errorf("interpretWeather(%s) produced neither a recognized outlook nor an Unrecognized carrier", p)
		}
		if !recognized && s.unknown.Percept != p {
			t.Errorf("interpretWeather(%s) carried percept %q, want the original", p, s.unknown.Percept)
		}
	}
}

func TestReflexAgent_FallbackIsExplicit(t *testing.T) {
	t.Parallel()

	// Without the option, the failure propagates.
	plain := newWeatherReflex(t)
	if _, err := plain.Advance(cloudy); !errors.Is(err, ErrNoApplicableRule) {
		t.Fatalf("Advance(cloudy) error = %v, want ErrNoApplicableRule", err)
	}

	// With the option, the caller-chosen safe action is returned.
	withFallback := newWeatherReflex(t, WithReflexFallback[weather, condition, window](shut))
	got, err := withFallback.Advance(cloudy)
	if err != nil {
		t.Fatalf("Advance(cloudy) with fallback error = %v, want nil", err)
	}
	if got != shut {
		t.Errorf("Advance(cloudy) with fallback = %q, want %q", got, shut)
	}

	// The fallback only covers rule misses, not recognized percepts.
	if got, err := withFallback.Advance(sunny); err != nil || got != open {
		t.Errorf("Advance(sunny) with fallback = %q, %v, want %q, nil", got, err, open)
	}
}

func TestUnrecognized_EqualityByCarriedPercept(t *testing.T) {
	t.Parallel()

	a := Unrecognized[weather]{Percept: cloudy}
	b := Unrecognized[weather]{Percept: cloudy}
	c := Unrecognized[weather]{Percept: rainy}

	if a != b {
		t.Error("Unrecognized values carrying equal percepts should be equal")
	}
	if a == c {
		t.Error("Unrecognized values carrying different percepts should not be equal")
	}
}
