package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/percept-go/domain/agent"
)

// Configuration errors.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidFormat     = errors.New("invalid config format")
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrValidationFailed  = errors.New("config validation failed")
	ErrMissingEnvVar     = errors.New("missing environment variable")
)

// Strategy names accepted by the spec.
const (
	StrategyTable  = "table"
	StrategyReflex = "reflex"
)

// AgentSpec is the full declarative description of an agent: which
// resolution strategy it uses, the strategy's data, and how the driver
// around it behaves.
type AgentSpec struct {
	Name     string       `yaml:"name" json:"name"`
	Version  string       `yaml:"version,omitempty" json:"version,omitempty"`
	Strategy string       `yaml:"strategy" json:"strategy"`
	Table    []TableEntry `yaml:"table,omitempty" json:"table,omitempty"`
	Reflex   *ReflexSpec  `yaml:"reflex,omitempty" json:"reflex,omitempty"`
	Driver   DriverSpec   `yaml:"driver,omitempty" json:"driver,omitempty"`
	Logging  LoggingSpec  `yaml:"logging,omitempty" json:"logging,omitempty"`
	Storage  StorageSpec  `yaml:"storage,omitempty" json:"storage,omitempty"`
}

// TableEntry maps one exact percept sequence to an action.
type TableEntry struct {
	Sequence []string `yaml:"sequence" json:"sequence"`
	Action   string   `yaml:"action" json:"action"`
}

// ReflexSpec declares a reflex agent: a total percept-to-state mapping
// and a state-to-action rule set, with an optional fallback action.
type ReflexSpec struct {
	Interpret map[string]string `yaml:"interpret" json:"interpret"`
	Rules     map[string]string `yaml:"rules" json:"rules"`
	Fallback  string            `yaml:"fallback,omitempty" json:"fallback,omitempty"`
}

// DriverSpec configures the episode driver.
type DriverSpec struct {
	MaxSteps      int    `yaml:"max_steps,omitempty" json:"max_steps,omitempty"`
	DefaultAction string `yaml:"default_action,omitempty" json:"default_action,omitempty"`
}

// LoggingSpec configures structured logging.
type LoggingSpec struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// StorageSpec configures where episode ledgers are persisted.
type StorageSpec struct {
	Backend string `yaml:"backend,omitempty" json:"backend,omitempty"`
	Path    string `yaml:"path,omitempty" json:"path,omitempty"`
}

// Validate checks the spec for structural problems. All problems are
// reported together.
func (s *AgentSpec) Validate() error {
	var problems []string

	if s.Name == "" {
		problems = append(problems, "name is required")
	}

	switch s.Strategy {
	case StrategyTable:
		problems = append(problems, s.validateTable()...)
	case StrategyReflex:
		problems = append(problems, s.validateReflex()...)
	case "":
		problems = append(problems, "strategy is required")
	default:
		problems = append(problems, fmt.Sprintf("unknown strategy %q (want %q or %q)", s.Strategy, StrategyTable, StrategyReflex))
	}

	switch s.Storage.Backend {
	case "", "memory":
	case "filesystem", "badger":
		if s.Storage.Path == "" {
			problems = append(problems, fmt.Sprintf("storage backend %q requires a path", s.Storage.Backend))
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown storage backend %q", s.Storage.Backend))
	}

	if s.Driver.MaxSteps < 0 {
		problems = append(problems, "driver max_steps must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(problems, "; "))
	}
	return nil
}

func (s *AgentSpec) validateTable() []string {
	var problems []string

	if len(s.Table) == 0 {
		problems = append(problems, "table strategy requires at least one entry")
	}

	seen := make(map[string]bool)
	for i, entry := range s.Table {
		if len(entry.Sequence) == 0 {
			problems = append(problems, fmt.Sprintf("table entry %d has an empty sequence", i))
			continue
		}
		if entry.Action == "" {
			problems = append(problems, fmt.Sprintf("table entry %d has an empty action", i))
		}
		key := strings.Join(entry.Sequence, "\x00")
		if seen[key] {
			problems = append(problems, fmt.Sprintf("table entry %d duplicates sequence %v", i, entry.Sequence))
		}
		seen[key] = true
	}

	return problems
}

func (s *AgentSpec) validateReflex() []string {
	var problems []string

	if s.Reflex == nil {
		return []string{"reflex strategy requires a reflex section"}
	}
	if len(s.Reflex.Interpret) == 0 {
		problems = append(problems, "reflex interpret mapping must not be empty")
	}
	if len(s.Reflex.Rules) == 0 {
		problems = append(problems, "reflex rules must not be empty")
	}

	// A rule keyed on a state no interpretation produces can never fire.
	produced := make(map[string]bool)
	for _, state := range s.Reflex.Interpret {
		produced[state] = true
	}
	for state := range s.Reflex.Rules {
		if !produced[state] {
			problems = append(problems, fmt.Sprintf("rule for state %q is unreachable: no percept interprets to it", state))
		}
	}

	for percept, state := range s.Reflex.Interpret {
		if state == "" {
			problems = append(problems, fmt.Sprintf("percept %q interprets to an empty state", percept))
		}
	}
	for state, action := range s.Reflex.Rules {
		if action == "" {
			problems = append(problems, fmt.Sprintf("rule for state %q has an empty action", state))
		}
	}

	return problems
}

// Condition is the reflex state space a declarative spec produces. A
// percept listed in the interpret mapping becomes a named condition;
// anything else becomes a distinct unrecognized condition carrying the
// percept, so two different unknown percepts never collapse into one
// state.
type Condition struct {
	Name    string
	Unknown agent.Unrecognized[string]
}

// BuildAgent constructs the decision agent the spec declares.
func (s *AgentSpec) BuildAgent() (agent.Agent[string, string], error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	switch s.Strategy {
	case StrategyTable:
		return s.buildTableAgent()
	case StrategyReflex:
		return s.buildReflexAgent()
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrValidationFailed, s.Strategy)
	}
}

func (s *AgentSpec) buildTableAgent() (agent.Agent[string, string], error) {
	table := agent.NewTable[string, string]()
	for _, entry := range s.Table {
		table.Put(entry.Sequence, entry.Action)
	}
	return agent.NewTableAgent(table)
}

func (s *AgentSpec) buildReflexAgent() (agent.Agent[string, string], error) {
	interpret := make(map[string]string, len(s.Reflex.Interpret))
	for percept, state := range s.Reflex.Interpret {
		interpret[percept] = state
	}
	rules := make(map[string]string, len(s.Reflex.Rules))
	for state, action := range s.Reflex.Rules {
		rules[state] = action
	}

	interpretFn := func(percept string) Condition {
		if state, ok := interpret[percept]; ok {
			return Condition{Name: state}
		}
		return Condition{Unknown: agent.Unrecognized[string]{Percept: percept}}
	}

	ruleFn := func(cond Condition) (string, error) {
		if cond.Name == "" {
			return "", fmt.Errorf("%w: unrecognized percept %q", agent.ErrNoApplicableRule, cond.Unknown.Percept)
		}
		action, ok := rules[cond.Name]
		if !ok {
			return "", fmt.Errorf("%w: no rule for state %q", agent.ErrNoApplicableRule, cond.Name)
		}
		return action, nil
	}

	var opts []agent.ReflexOption[string, Condition, string]
	if s.Reflex.Fallback != "" {
		opts = append(opts, agent.WithReflexFallback[string, Condition, string](s.Reflex.Fallback))
	}

	return agent.NewReflexAgent(interpretFn, ruleFn, opts...)
}
