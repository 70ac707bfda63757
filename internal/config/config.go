// Package config loads the generator's ABI conventions, output naming and
// cross toolchain settings from a TOML file layered over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// Config is the layout of a lin-compiler TOML file.
type Config struct {
	ABI       ABI       `toml:"abi"`
	Output    Output    `toml:"output"`
	Toolchain Toolchain `toml:"toolchain"`
}

// ABI holds the calling conventions baked into emitted code.
type ABI struct {
	FrameSize         int      `toml:"frame_size"` // minimum frame size in bytes
	SlotSize          int      `toml:"slot_size"`
	ArgRegisters      []string `toml:"arg_registers"`
	OverflowRegisters []string `toml:"overflow_registers"`
	PrintHelper       string   `toml:"print_helper"`
	ReadHelper        string   `toml:"read_helper"`
	Entry             string   `toml:"entry"`
}

type Output struct {
	Extension string `toml:"extension"`
	Dir       string `toml:"dir"`
}

type Toolchain struct {
	CC     string   `toml:"cc"`
	CFlags []string `toml:"cflags"`
	// Run prefixes the built binary when verifying natively, e.g. ["spike", "pk"].
	Run []string `toml:"run"`
}

// MaxFrameSize is the largest 16-byte aligned frame whose size still fits the
// signed 12-bit immediate of addi (-2048..2047).
const MaxFrameSize = 2032

// Registers the generator uses for its own purposes.
var reservedRegisters = []string{"zero", "ra", "sp", "s0", "t0", "t1"}

func Default() *Config {
	return &Config{
		ABI: ABI{
			FrameSize:         128,
			SlotSize:          4,
			ArgRegisters:      []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7"},
			OverflowRegisters: []string{"t3", "t4", "t5", "t6"},
			PrintHelper:       "printInt",
			ReadHelper:        "readInt",
			Entry:             "main",
		},
		Output: Output{
			Extension: ".S",
			Dir:       ".",
		},
		Toolchain: Toolchain{
			CC:     "riscv32-unknown-elf-gcc",
			CFlags: []string{"-march=rv32im", "-mabi=ilp32"},
		},
	}
}

// Load reads the file at path over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as TOML.
func Save(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	abi := c.ABI

	if abi.FrameSize <= 0 || abi.FrameSize%16 != 0 {
		errs = append(errs, fmt.Errorf("abi.frame_size must be a positive multiple of 16, got %d", abi.FrameSize))
	} else if abi.FrameSize > MaxFrameSize {
		errs = append(errs, fmt.Errorf("abi.frame_size must be at most %d, got %d", MaxFrameSize, abi.FrameSize))
	}
	if abi.SlotSize < 4 || abi.SlotSize%4 != 0 {
		errs = append(errs, fmt.Errorf("abi.slot_size must be a positive multiple of 4, got %d", abi.SlotSize))
	}
	if len(abi.ArgRegisters) == 0 {
		errs = append(errs, errors.New("abi.arg_registers must not be empty"))
	}

	seen := make(map[string]bool)
	for _, reg := range append(slices.Clone(abi.ArgRegisters), abi.OverflowRegisters...) {
		if slices.Contains(reservedRegisters, reg) {
			errs = append(errs, fmt.Errorf("register %s is reserved by the generator", reg))
		}
		if seen[reg] {
			errs = append(errs, fmt.Errorf("register %s is listed twice", reg))
		}
		seen[reg] = true
	}

	if abi.PrintHelper == "" || abi.ReadHelper == "" || abi.Entry == "" {
		errs = append(errs, errors.New("abi.print_helper, abi.read_helper and abi.entry must be set"))
	}
	if c.Output.Extension == "" {
		errs = append(errs, errors.New("output.extension must not be empty"))
	}

	return errors.Join(errs...)
}

// MaxArgs is the combined size of the argument register banks.
func (a ABI) MaxArgs() int {
	return len(a.ArgRegisters) + len(a.OverflowRegisters)
}

// ArgRegister returns the register carrying argument i.
func (a ABI) ArgRegister(i int) string {
	if i < len(a.ArgRegisters) {
		return a.ArgRegisters[i]
	}
	return a.OverflowRegisters[i-len(a.ArgRegisters)]
}
