// ipcsweep parses one or more commit traces produced by r10k-sim and
// reports each run's final cycle count, retire count, and IPC
// (retire_count / cycle) — the sweep the spec's external-interfaces
// section names as the trace format's reason for existing.
package main

import (
	"fmt"
	"os"

	"github.com/TheUnknownThing/R10K-CPU/internal/trace"

	"github.com/spf13/cobra"
)

func main() {
	var csvOut bool

	rootCmd := &cobra.Command{
		Use:   "ipcsweep [trace-file ...]",
		Short: "Summarize IPC across one or more r10k-sim commit traces",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sweep(args, csvOut)
		},
	}
	rootCmd.Flags().BoolVar(&csvOut, "csv", false, "Emit CSV instead of a human-readable table")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type summary struct {
	path        string
	cycle       uint64
	retireCount uint64
	ipc         float64
}

func sweep(paths []string, csvOut bool) error {
	summaries := make([]summary, 0, len(paths))
	for _, p := range paths {
		s, err := summarize(p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		summaries = append(summaries, s)
	}

	if csvOut {
		fmt.Println("path,cycle,retire_count,ipc")
		for _, s := range summaries {
			fmt.Printf("%s,%d,%d,%.4f\n", s.path, s.cycle, s.retireCount, s.ipc)
		}
		return nil
	}

	for _, s := range summaries {
		fmt.Printf("%-40s cycles=%-10d retired=%-10d ipc=%.4f\n", s.path, s.cycle, s.retireCount, s.ipc)
	}
	return nil
}

func summarize(path string) (summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return summary{}, err
	}
	defer f.Close()

	cycle, _, retireCount, found, err := trace.ParseLast(f)
	if err != nil {
		return summary{}, err
	}
	if !found {
		return summary{}, fmt.Errorf("no commit lines found")
	}

	ipc := 0.0
	if cycle > 0 {
		ipc = float64(retireCount) / float64(cycle)
	}
	return summary{path: path, cycle: cycle, retireCount: retireCount, ipc: ipc}, nil
}
