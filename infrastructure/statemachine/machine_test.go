package statemachine

import (
	"testing"

	"github.com/felixgeelhaar/percept-go/domain/ledger"
)

func newTestInterpreter(t *testing.T, episodeID string) (*Interpreter, *ledger.Ledger) {
	t.Helper()

	machine, err := NewEpisodeMachine()
	if err != nil {
		t.Fatalf("NewEpisodeMachine() error = %v", err)
	}

	ledg := ledger.New(episodeID)
	interp := NewInterpreter(machine, NewContext(episodeID, ledg))
	interp.Start()
	return interp, ledg
}

func TestNewContext(t *testing.T) {
	t.Parallel()

	ledg := ledger.New("ep-1")
	ctx := NewContext("ep-1", ledg)

	if ctx.EpisodeID != "ep-1" {
		t.Errorf("EpisodeID = %q, want %q", ctx.EpisodeID, "ep-1")
	}
	if ctx.Phase != PhasePending {
		t.Errorf("Phase = %s, want %s", ctx.Phase, PhasePending)
	}
	if ctx.Ledger != ledg {
		t.Error("Context.Ledger should be the provided ledger")
	}
}

func TestNewEpisodeMachine(t *testing.T) {
	t.Parallel()

	machine, err := NewEpisodeMachine()
	if err != nil {
		t.Fatalf("NewEpisodeMachine() error = %v", err)
	}
	if machine == nil {
		t.Fatal("NewEpisodeMachine() returned nil machine")
	}
}

func TestInterpreter_CompletedLifecycle(t *testing.T) {
	t.Parallel()

	interp, ledg := newTestInterpreter(t, "ep-1")

	if interp.Phase() != PhasePending {
		t.Fatalf("Phase() = %s, want %s", interp.Phase(), PhasePending)
	}
	if interp.IsTerminal() {
		t.Error("pending episode should not be terminal")
	}

	if err := interp.Begin("started"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if interp.Phase() != PhaseRunning {
		t.Fatalf("Phase() after Begin = %s, want %s", interp.Phase(), PhaseRunning)
	}

	if err := interp.Complete("source exhausted"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if interp.Phase() != PhaseCompleted {
		t.Fatalf("Phase() after Complete = %s, want %s", interp.Phase(), PhaseCompleted)
	}
	if !interp.IsTerminal() {
		t.Error("completed episode should be terminal")
	}

	changes := ledg.EntriesByType(ledger.EntryPhaseChanged)
	if len(changes) != 2 {
		t.Errorf("phase change entries = %d, want 2", len(changes))
	}
}

func TestInterpreter_FailedLifecycle(t *testing.T) {
	t.Parallel()

	interp, _ := newTestInterpreter(t, "ep-1")

	if err := interp.Begin("started"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := interp.Fail("no matching history"); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if interp.Phase() != PhaseFailed {
		t.Errorf("Phase() = %s, want %s", interp.Phase(), PhaseFailed)
	}
	if !interp.IsTerminal() {
		t.Error("failed episode should be terminal")
	}
}

func TestInterpreter_RejectsOutOfPhaseEvents(t *testing.T) {
	t.Parallel()

	interp, _ := newTestInterpreter(t, "ep-1")

	// Complete before Begin.
	if err := interp.Complete("too early"); err == nil {
		t.Error("Complete() in pending phase should return an error")
	}

	if err := interp.Begin("started"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	// Double start.
	if err := interp.Begin("again"); err == nil {
		t.Error("Begin() in running phase should return an error")
	}

	if err := interp.Complete("done"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	// Terminal phases accept nothing.
	if err := interp.Fail("too late"); err == nil {
		t.Error("Fail() in completed phase should return an error")
	}
}

func TestInterpreter_BeginRequiresEpisodeID(t *testing.T) {
	t.Parallel()

	interp, _ := newTestInterpreter(t, "")

	if err := interp.Begin("started"); err == nil {
		t.Error("Begin() without episode ID should return an error")
	}
}
