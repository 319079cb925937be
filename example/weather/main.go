// Package main demonstrates both agent strategies on a small weather
// domain: deciding whether to open or close a window based on the
// outlook.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/felixgeelhaar/percept-go/application"
	"github.com/felixgeelhaar/percept-go/domain/agent"
)

// Outlook is what the weather sensor reports.
type Outlook string

const (
	Sunny Outlook = "sunny"
	Rainy Outlook = "rainy"
	Foggy Outlook = "foggy"
)

// WindowAction is what the actuator can do.
type WindowAction string

const (
	Open  WindowAction = "open"
	Close WindowAction = "close"
)

func main() {
	percepts := []Outlook{Sunny, Rainy, Sunny}

	// 1. Table-driven: every percept history the agent may see is
	// enumerated up front. Anything off that script is a hard error.
	table := agent.NewTable[Outlook, WindowAction]()
	table.Put([]Outlook{Sunny}, Open)
	table.Put([]Outlook{Sunny, Rainy}, Close)
	table.Put([]Outlook{Sunny, Rainy, Sunny}, Open)

	tableAgent, err := agent.NewTableAgent(table)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("table-driven agent:")
	for _, p := range percepts {
		action, err := tableAgent.Advance(p)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  %-6s -> %s\n", p, action)
	}

	// 2. Reflex: the current percept alone decides, via an
	// interpretation step and a rule lookup. Unknown outlooks fall
	// through to the configured fallback.
	type comfort struct {
		pleasant bool
		unknown  agent.Unrecognized[Outlook]
	}

	reflexAgent, err := agent.NewReflexAgent(
		func(p Outlook) comfort {
			switch p {
			case Sunny:
				return comfort{pleasant: true}
			case Rainy:
				return comfort{pleasant: false}
			default:
				return comfort{unknown: agent.Unrecognized[Outlook]{Percept: p}}
			}
		},
		func(c comfort) (WindowAction, error) {
			var zero agent.Unrecognized[Outlook]
			if c.unknown != zero {
				return "", fmt.Errorf("%w: %v", agent.ErrNoApplicableRule, c.unknown.Percept)
			}
			if c.pleasant {
				return Open, nil
			}
			return Close, nil
		},
		agent.WithReflexFallback[Outlook, comfort](Close),
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("reflex agent:")
	for _, p := range append(percepts, Foggy) {
		action, err := reflexAgent.Advance(p)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  %-6s -> %s\n", p, action)
	}

	// 3. The same reflex agent under the episode driver, which feeds
	// percepts from a source and collects the resolved actions.
	sink := &application.CollectSink[WindowAction]{}
	driver, err := application.NewDriver[Outlook, WindowAction](
		reflexAgent,
		application.NewSliceSource(Sunny, Foggy, Rainy),
		application.WithSink[Outlook, WindowAction](sink),
		application.WithStrategy[Outlook, WindowAction]("reflex"),
	)
	if err != nil {
		log.Fatal(err)
	}

	episode, err := driver.Run(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("episode %s: %d steps, %s\n", episode.ID, episode.Steps, episode.Status)
	fmt.Printf("actions: %v\n", sink.Actions())
}
