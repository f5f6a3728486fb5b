package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/lispheap/heap"
	"github.com/joshuapare/lispheap/internal/format"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show heap configurations and the statistics of an empty heap",
		Long: `The stats command lists the predefined heap configurations and the
statistics of a freshly created heap for the selected one.

Example:
  heapctl stats
  heapctl stats --preset embedded
  heapctl stats --cells 256 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
	return cmd
}

// ConfigView is the printable part of a heap.Config.
type ConfigView struct {
	Name            string
	CellsPerSegment int
	SegmentBytes    int
	MinSegments     int
	MaxSegments     int
	GoMemory        bool
}

func viewConfig(c heap.Config) ConfigView {
	return ConfigView{
		Name:            c.Name,
		CellsPerSegment: c.CellsPerSegment,
		SegmentBytes:    format.SegmentBytes(c.CellsPerSegment),
		MinSegments:     c.MinSegments,
		MaxSegments:     c.MaxSegments,
		GoMemory:        c.GoMemory,
	}
}

// HeapReport is the output of the stats command.
type HeapReport struct {
	Presets  []ConfigView
	Selected ConfigView
	Heap     heap.Stats
}

func runStats() error {
	cfg, err := heapConfig()
	if err != nil {
		return err
	}

	h, err := heap.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create heap: %w", err)
	}
	report := HeapReport{
		Selected: viewConfig(cfg),
		Heap:     h.Stats(),
	}
	if err := h.Close(); err != nil {
		return fmt.Errorf("failed to close heap: %w", err)
	}

	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		report.Presets = append(report.Presets, viewConfig(presets[name]))
	}

	if jsonOut {
		return printJSON(report)
	}

	printInfo("\nHeap Configurations:\n")
	printInfo("%s\n", strings.Repeat("=", 40))
	for _, c := range report.Presets {
		printInfo("  %-9s %s cells/segment (%s), %s\n",
			c.Name, formatNumber(int64(c.CellsPerSegment)), formatBytes(int64(c.SegmentBytes)), segmentLimit(c))
	}
	printInfo("\nSelected: %s, %s cells/segment, %s\n\n",
		report.Selected.Name, formatNumber(int64(report.Selected.CellsPerSegment)), segmentLimit(report.Selected))
	printHeapStats(report.Heap)
	return nil
}

func segmentLimit(c ConfigView) string {
	if c.MaxSegments == 0 {
		return fmt.Sprintf("%d+ segments", c.MinSegments)
	}
	return fmt.Sprintf("%d-%d segments", c.MinSegments, c.MaxSegments)
}

func printHeapStats(s heap.Stats) {
	printInfo("Heap:\n")
	printInfo("  Segments: %d (peak %d)\n", s.Segments, s.PeakSegments)
	printInfo("  Cells: %s (%s free)\n", formatNumber(int64(s.Cells)), formatNumber(int64(s.Free)))
	printInfo("  Segments grown/released: %d/%d\n\n", s.GrowCalls, s.Released)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatNumber renders n with thousands separators.
func formatNumber(n int64) string {
	digits := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(c)
	}
	return result.String()
}
