package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/lispheap/heap"
	"github.com/joshuapare/lispheap/heap/alloc"
	"github.com/joshuapare/lispheap/internal/format"
)

var (
	stressLists   int
	stressLength  int
	stressKeep    int
	stressSymbols int
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressLists, "lists", 100, "Number of lists to build")
	cmd.Flags().IntVar(&stressLength, "length", 1000, "Cells per list")
	cmd.Flags().IntVar(&stressKeep, "keep", 10, "Most recent lists kept rooted")
	cmd.Flags().IntVar(&stressSymbols, "symbols", 0, "Symbols to intern alongside the lists")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run an allocation workload and report collector statistics",
		Long: `The stress command builds a series of lists, keeps only the most recent
ones rooted, and lets the collector reclaim the rest. It ends with an explicit
collection and prints heap and collector statistics.

Example:
  heapctl stress --lists 1000 --length 500 --keep 4
  heapctl stress --preset embedded --policy targeted --layout split
  heapctl stress --cells 64 --symbols 200 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
	return cmd
}

// StressReport is the result of one stress run.
type StressReport struct {
	Preset    string
	Layout    string
	Policy    string
	Lists     int
	Length    int
	Kept      int
	Symbols   int
	LiveCells int

	Heap heap.Stats

	Collections int
	Exhausted   int
	Reclaimed   int64
	Released    int
	Grown       int
	MaxDepth    int
	PauseTotal  time.Duration
	Elapsed     time.Duration
}

func runStress() error {
	if stressLists < 0 || stressLength < 0 || stressKeep < 0 || stressSymbols < 0 {
		return fmt.Errorf("counts must not be negative")
	}

	maxDepth := 0
	s, err := newSession(func(c alloc.Cycle) {
		maxDepth = max(maxDepth, c.Mark.MaxDepth)
		printVerbose("collection %-9s reclaimed=%d released=%d grown=%d free=%d segments=%d\n",
			c.Kind, c.Sweep.Reclaimed, c.Sweep.Released, c.Sweep.Grown, c.Free, c.Segments)
	})
	if err != nil {
		return err
	}
	defer s.Close()

	start := time.Now()
	kept := 0
	err = s.run(func() error {
		if stressKeep > 0 {
			s.roots.Globals = make([]format.Value, stressKeep)
			for i := range s.roots.Globals {
				s.roots.Globals[i] = format.Nil
			}
		}
		for i := range stressLists {
			list := s.buildList(stressLength)
			if stressKeep > 0 {
				s.roots.Globals[i%stressKeep] = list
			}
		}
		for i := range stressSymbols {
			if _, err := s.syms.Intern(fmt.Sprintf("stress-symbol-%d", i)); err != nil {
				return err
			}
		}
		s.alloc.CollectExplicit(0)

		for _, list := range s.roots.Globals {
			kept += s.listLen(list)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("stress run failed: %w", err)
	}

	st := s.alloc.Stats()
	report := StressReport{
		Preset:      s.cfg.Name,
		Layout:      s.alloc.Options().Layout.String(),
		Policy:      s.alloc.Options().Policy.String(),
		Lists:       stressLists,
		Length:      stressLength,
		Kept:        min(stressKeep, stressLists),
		Symbols:     stressSymbols,
		LiveCells:   kept,
		Heap:        s.heap.Stats(),
		Collections: st.Collections,
		Exhausted:   st.Exhausted,
		Reclaimed:   st.Reclaimed,
		Released:    st.Released,
		Grown:       st.Grown,
		MaxDepth:    maxDepth,
		PauseTotal:  st.PauseTotal,
		Elapsed:     time.Since(start),
	}

	if jsonOut {
		return printJSON(report)
	}
	printStressReport(report)
	return nil
}

func printStressReport(r StressReport) {
	printInfo("\nStress Run: %s heap, %s layout, %s policy\n", r.Preset, r.Layout, r.Policy)
	printInfo("%s\n\n", strings.Repeat("=", 40))

	printInfo("Workload:\n")
	printInfo("  Lists: %s x %s cells\n", formatNumber(int64(r.Lists)), formatNumber(int64(r.Length)))
	printInfo("  Kept: %d lists (%s live cells)\n", r.Kept, formatNumber(int64(r.LiveCells)))
	if r.Symbols > 0 {
		printInfo("  Symbols: %s\n", formatNumber(int64(r.Symbols)))
	}
	printInfo("\n")

	printHeapStats(r.Heap)

	printInfo("Collector:\n")
	printInfo("  Collections: %d (%d on exhaustion)\n", r.Collections, r.Exhausted)
	printInfo("  Reclaimed: %s cells\n", formatNumber(r.Reclaimed))
	printInfo("  Segments released/grown: %d/%d\n", r.Released, r.Grown)
	printInfo("  Max mark depth: %d\n", r.MaxDepth)
	printInfo("  Pause total: %s\n", r.PauseTotal)
	printInfo("  Elapsed: %s\n", r.Elapsed)
}
