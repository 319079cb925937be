package agent

import (
	"errors"
	"testing"
)

// Weather/window domain used throughout the decision core tests.
type weather string

const (
	sunny        weather = "sunny"
	rainy        weather = "rainy"
	cloudy       weather = "cloudy"
	partlyCloudy weather = "partly_cloudy"
	thunderstorm weather = "thunderstorm"
)

type window string

const (
	open window = "open"
	shut window = "close"
)

var _ Agent[weather, window] = (*TableAgent[weather, window])(nil)

func singleStepTable() *Table[weather, window] {
	table := NewTable[weather, window]()
	table.Put([]weather{sunny}, open)
	table.Put([]weather{rainy}, shut)
	return table
}

func TestTable_Lookup(t *testing.T) {
	t.Parallel()

	table := NewTable[weather, window]()
	table.Put([]weather{sunny}, open)
	table.Put([]weather{rainy}, shut)
	table.Put([]weather{sunny, sunny}, open)
	table.Put([]weather{sunny, rainy}, shut)

	tests := []struct {
		name       string
		sequence   []weather
		wantAction window
		wantOK     bool
	}{
		{"single sunny", []weather{sunny}, open, true},
		{"single rainy", []weather{rainy}, shut, true},
		{"sunny then sunny", []weather{sunny, sunny}, open, true},
		{"sunny then rainy", []weather{sunny, rainy}, shut, true},
		{"unseen single", []weather{cloudy}, "", false},
		{"unseen pair", []weather{rainy, sunny}, "", false},
		{"prefix is not a match", []weather{sunny, sunny, sunny}, "", false},
		{"empty sequence", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := table.Lookup(tt.sequence)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%v) ok = %v, want %v", tt.sequence, ok, tt.wantOK)
			}
			if ok && got != tt.wantAction {
				t.Errorf("Lookup(%v) = %q, want %q", tt.sequence, got, tt.wantAction)
			}
		})
	}
}

func TestTable_PutOverwritesDuplicateSequence(t *testing.T) {
	t.Parallel()

	table := NewTable[weather, window]()
	table.Put([]weather{sunny}, shut)
	table.Put([]weather{sunny}, open)

	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
	got, ok := table.Lookup([]weather{sunny})
	if !ok || got != open {
		t.Errorf("Lookup([sunny]) = %q, %v, want %q, true", got, ok, open)
	}
}

func TestTable_Horizon(t *testing.T) {
	t.Parallel()

	table := NewTable[weather, window]()
	if table.Horizon() != 0 {
		t.Errorf("Horizon() of empty table = %d, want 0", table.Horizon())
	}

	table.Put([]weather{sunny}, open)
	table.Put([]weather{sunny, rainy, sunny}, open)
	table.Put([]weather{rainy}, shut)

	if table.Horizon() != 3 {
		t.Errorf("Horizon() = %d, want 3", table.Horizon())
	}
}

func TestNewTableAgent_RequiresTable(t *testing.T) {
	t.Parallel()

	if _, err := NewTableAgent[weather, window](nil); err == nil {
		t.Error("NewTableAgent(nil) should return an error")
	}
}

func TestTableAgent_AdvanceMatchesExactHistory(t *testing.T) {
	t.Parallel()

	// Table populated only with length-1 sequences: the first percept
	// resolves, the second grows the history past every key.
	agent, err := NewTableAgent(singleStepTable())
	if err != nil {
		t.Fatalf("NewTableAgent() error = %v", err)
	}

	action, err := agent.Advance(sunny)
	if err != nil {
		t.Fatalf("Advance(sunny) error = %v, want nil", err)
	}
	if action != open {
		t.Errorf("Advance(sunny) = %q, want %q", action, open)
	}

	_, err = agent.Advance(rainy)
	if !errors.Is(err, ErrNoMatchingHistory) {
		t.Errorf("Advance(rainy) error = %v, want ErrNoMatchingHistory", err)
	}
}

func TestTableAgent_MissIsAlwaysNoMatchingHistory(t *testing.T) {
	t.Parallel()

	agent, err := NewTableAgent(singleStepTable())
	if err != nil {
		t.Fatalf("NewTableAgent() error = %v", err)
	}

	percepts := []weather{cloudy, sunny, rainy, thunderstorm}
	for i, p := range percepts {
		_, err := agent.Advance(p)
		if !errors.Is(err, ErrNoMatchingHistory) {
			t.Fatalf("Advance #%d (%s) error = %v, want ErrNoMatchingHistory", i+1, p, err)
		}
		if errors.Is(err, ErrNoApplicableRule) {
			t.Fatalf("Advance #%d (%s) reported a reflex error kind from the table strategy", i+1, p)
		}
	}
}

func TestTableAgent_LogGrowsByOnePerAdvance(t *testing.T) {
	t.Parallel()

	agent, err := NewTableAgent(singleStepTable())
	if err != nil {
		t.Fatalf("NewTableAgent() error = %v", err)
	}

	fed := []weather{sunny, rainy, sunny, cloudy, rainy}
	for i, p := range fed {
		_, _ = agent.Advance(p)

		history := agent.History()
		if len(history) != i+1 {
			t.Fatalf("History() length after %d advances = %d, want %d", i+1, len(history), i+1)
		}
		for j := 0; j <= i; j++ {
			if history[j] != fed[j] {
				t.Errorf("History()[%d] = %q, want %q", j, history[j], fed[j])
			}
		}
	}
}

func TestTableAgent_RepeatedPerceptOnlyFirstCanMatch(t *testing.T) {
	t.Parallel()

	// Against a table of length-1 keys, repeated identical percepts
	// produce strictly growing, distinct keys: only the first call can
	// succeed.
	agent, err := NewTableAgent(singleStepTable())
	if err != nil {
		t.Fatalf("NewTableAgent() error = %v", err)
	}

	if _, err := agent.Advance(sunny); err != nil {
		t.Fatalf("first Advance(sunny) error = %v, want nil", err)
	}
	for i := 2; i <= 5; i++ {
		if _, err := agent.Advance(sunny); !errors.Is(err, ErrNoMatchingHistory) {
			t.Errorf("Advance(sunny) #%d error = %v, want ErrNoMatchingHistory", i, err)
		}
	}
}

func TestTableAgent_OkIffSequenceIsKey(t *testing.T) {
	t.Parallel()

	table := NewTable[weather, window]()
	table.Put([]weather{sunny}, open)
	table.Put([]weather{sunny, rainy}, shut)
	table.Put([]weather{sunny, rainy, sunny}, open)

	agent, err := NewTableAgent(table)
	if err != nil {
		t.Fatalf("NewTableAgent() error = %v", err)
	}

	steps := []struct {
		percept weather
		want    window
		wantOK  bool
	}{
		{sunny, open, true},
		{rainy, shut, true},
		{sunny, open, true},
		{sunny, "", false}, // [sunny rainy sunny sunny] was never populated
	}

	for i, step := range steps {
		action, err := agent.Advance(step.percept)
		if step.wantOK {
			if err != nil {
				t.Fatalf("step %d: Advance(%s) error = %v, want nil", i+1, step.percept, err)
			}
			if action != step.want {
				t.Errorf("step %d: Advance(%s) = %q, want %q", i+1, step.percept, action, step.want)
			}
			continue
		}
		if !errors.Is(err, ErrNoMatchingHistory) {
			t.Errorf("step %d: Advance(%s) error = %v, want ErrNoMatchingHistory", i+1, step.percept, err)
		}
	}
}
