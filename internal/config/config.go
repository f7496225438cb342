// Package config loads the parameters that drive a single elaboration
// of the core, mirroring the build_cpu(sram_file, verilog,
// resource_base, sim_threshold, idle_threshold) entry point: everything
// that entry point would take as arguments lives here as a struct
// loadable from YAML, with CLI flags layered on top by the commands in
// cmd/.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Core holds one run's worth of elaboration parameters.
type Core struct {
	// SRAMFile is the instruction memory image (hex, one word per line).
	SRAMFile string `yaml:"sram_file"`
	// DataFile is the data memory image, same format, loaded at reset.
	DataFile string `yaml:"data_file"`
	// Verilog, when true, is a no-op placeholder for the RTL-emission
	// path of the host DSL; this repository never emits RTL.
	Verilog bool `yaml:"verilog"`
	// ResourceBase is the directory the host DSL would use to resolve
	// relative resource paths; kept for interface compatibility.
	ResourceBase string `yaml:"resource_base"`
	// SimThreshold bounds the number of cycles a run may take before
	// the harness declares timeout.
	SimThreshold int `yaml:"sim_threshold"`
	// IdleThreshold is the number of consecutive cycles with zero
	// commits after which the harness gives up early.
	IdleThreshold int `yaml:"idle_threshold"`

	NumPhysRegs int `yaml:"num_phys_regs"`
	NumArchRegs int `yaml:"num_arch_regs"`
	ROBDepth    int `yaml:"rob_depth"`
	ALUQDepth   int `yaml:"alu_queue_depth"`
	LSQDepth    int `yaml:"lsq_depth"`

	Verbose bool `yaml:"verbose"`
}

// Default returns the configuration matching spec.md's fixed sizing:
// 64 physical registers, 32 architectural registers, 32-entry ROB,
// ALU queue, and LSQ.
func Default() Core {
	return Core{
		SimThreshold:  1_000_000,
		IdleThreshold: 10_000,
		NumPhysRegs:   64,
		NumArchRegs:   32,
		ROBDepth:      32,
		ALUQDepth:     32,
		LSQDepth:      32,
	}
}

// Load reads a YAML file into a Core seeded with Default() values, so
// a partial file only needs to specify what it's overriding.
func Load(path string) (Core, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return c, nil
}
