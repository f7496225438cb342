// r10k-sim elaborates a core from a config file (or flag overrides),
// preloads instruction and data memory from hex images, and steps it
// to completion (an EBREAK retiring) or until sim_threshold/
// idle_threshold cuts the run short, writing the commit trace to
// stdout or a file.
package main

import (
	"fmt"
	"os"

	"github.com/TheUnknownThing/R10K-CPU/internal/bpred"
	"github.com/TheUnknownThing/R10K-CPU/internal/config"
	"github.com/TheUnknownThing/R10K-CPU/internal/core"
	"github.com/TheUnknownThing/R10K-CPU/internal/corelog"
	"github.com/TheUnknownThing/R10K-CPU/internal/memimage"
	"github.com/TheUnknownThing/R10K-CPU/internal/trace"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var configPath string
	var sramFile string
	var dataFile string
	var traceOut string
	var useTAGE bool
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "r10k-sim",
		Short: "Run the RV32IM out-of-order core simulator against a memory image",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if sramFile != "" {
				cfg.SRAMFile = sramFile
			}
			if dataFile != "" {
				cfg.DataFile = dataFile
			}
			cfg.Verbose = cfg.Verbose || verbose

			return run(cfg, traceOut, useTAGE)
		},
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML config file (defaults overridden by flags below)")
	rootCmd.Flags().StringVar(&sramFile, "sram-file", "", "Instruction memory hex image")
	rootCmd.Flags().StringVar(&dataFile, "data-file", "", "Data memory hex image")
	rootCmd.Flags().StringVar(&traceOut, "trace-out", "", "Commit trace output file (defaults to stdout)")
	rootCmd.Flags().BoolVar(&useTAGE, "tage", false, "Use the TAGE branch predictor instead of always-taken")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Core, traceOut string, useTAGE bool) error {
	flush, err := corelog.NewProduction()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer flush()
	log := corelog.Stage("sim")

	if cfg.SRAMFile == "" {
		return fmt.Errorf("--sram-file (or config sram_file) is required")
	}

	iImg, err := loadImage(cfg.SRAMFile)
	if err != nil {
		return fmt.Errorf("loading instruction image: %w", err)
	}
	dImg := memimage.Image{Words: map[uint32]uint32{}}
	if cfg.DataFile != "" {
		dImg, err = loadImage(cfg.DataFile)
		if err != nil {
			return fmt.Errorf("loading data image: %w", err)
		}
	}

	const memWords = 1 << 16 // 256KiB word-addressed space, generous for a test program
	iMem := memimage.NewWordMemory(iImg, memWords)
	dMem := memimage.NewWordMemory(dImg, memWords)

	var predictor = bpred.Predictor(bpred.AlwaysTaken{})
	if useTAGE {
		predictor = bpred.NewTAGE()
	}
	c := core.New(iMem, dMem, predictor)

	out := os.Stdout
	if traceOut != "" {
		f, err := os.Create(traceOut)
		if err != nil {
			return fmt.Errorf("creating trace output: %w", err)
		}
		defer f.Close()
		out = f
	}

	idleCycles := 0
	for cycle := 0; cycle < cfg.SimThreshold; cycle++ {
		result := c.Step()
		if result.Committed {
			idleCycles = 0
			if err := trace.Write(out, result.Line); err != nil {
				return fmt.Errorf("writing trace: %w", err)
			}
			if cfg.Verbose {
				log.Debug("retired", zap.Uint64("cycle", result.Line.Cycle), zap.Uint32("pc", result.Line.PC))
			}
		} else {
			idleCycles++
		}
		if result.Halted {
			log.Info("halted", zap.Uint64("cycle", c.Cycle()), zap.Uint64("retire_count", c.RetireCount()))
			return nil
		}
		if idleCycles >= cfg.IdleThreshold {
			return fmt.Errorf("no commits for %d consecutive cycles, giving up at cycle %d", idleCycles, c.Cycle())
		}
	}
	return fmt.Errorf("sim_threshold of %d cycles exceeded without halting", cfg.SimThreshold)
}

func loadImage(path string) (memimage.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return memimage.Image{}, err
	}
	defer f.Close()
	return memimage.Parse(f)
}
