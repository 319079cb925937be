package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/percept-go/infrastructure/config"
)

// validateOptions holds options for the validate command.
type validateOptions struct {
	specPath string
	strict   bool
}

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an agent spec file",
		Long: `Validate an agent spec file for correctness.

This command checks:
  - File format (YAML or JSON)
  - Required fields (name, strategy)
  - Strategy data (table entries or reflex mappings)
  - Rule reachability for reflex agents
  - Environment variable references (in strict mode)

Examples:
  # Validate a spec file
  percept validate -c agent.yaml

  # Strict validation (fail on missing env vars)
  percept validate -c agent.yaml --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validateSpec(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.specPath, "config", "c", "", "Path to agent spec file")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Enable strict validation (fail on missing env vars)")

	return cmd
}

// validateSpec validates the spec file.
func (a *App) validateSpec(opts *validateOptions) error {
	if opts.specPath == "" {
		return fmt.Errorf("spec file path is required (-c flag)")
	}

	loaderOpts := []config.LoaderOption{
		config.WithValidation(true),
	}
	if opts.strict {
		loaderOpts = append(loaderOpts, config.WithStrictEnv(true))
	}

	loader := config.NewLoaderWithOptions(loaderOpts...)
	spec, err := loader.LoadFile(opts.specPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// The agent must also be constructible from the spec.
	if _, err := spec.BuildAgent(); err != nil {
		return fmt.Errorf("agent build failed: %w", err)
	}

	fmt.Fprintf(a.stdout, "✓ Spec is valid\n")
	fmt.Fprintf(a.stdout, "  Name: %s\n", spec.Name)
	if spec.Version != "" {
		fmt.Fprintf(a.stdout, "  Version: %s\n", spec.Version)
	}
	fmt.Fprintf(a.stdout, "  Strategy: %s\n", spec.Strategy)

	fmt.Fprintf(a.stdout, "\nSpec summary:\n")
	switch spec.Strategy {
	case config.StrategyTable:
		fmt.Fprintf(a.stdout, "  Table entries: %d\n", len(spec.Table))
	case config.StrategyReflex:
		fmt.Fprintf(a.stdout, "  Interpretations: %d\n", len(spec.Reflex.Interpret))
		fmt.Fprintf(a.stdout, "  Rules: %d\n", len(spec.Reflex.Rules))
		if spec.Reflex.Fallback != "" {
			fmt.Fprintf(a.stdout, "  Fallback: %s\n", spec.Reflex.Fallback)
		}
	}
	if spec.Driver.MaxSteps > 0 {
		fmt.Fprintf(a.stdout, "  Max steps: %d\n", spec.Driver.MaxSteps)
	}
	if spec.Driver.DefaultAction != "" {
		fmt.Fprintf(a.stdout, "  Default action: %s\n", spec.Driver.DefaultAction)
	}
	if spec.Storage.Backend != "" {
		fmt.Fprintf(a.stdout, "  Storage: %s\n", spec.Storage.Backend)
	}

	return nil
}
