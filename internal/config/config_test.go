package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "linc.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_OverridesOnlyGivenKeys(t *testing.T) {
	path := writeFile(t, `
[abi]
frame_size = 256
overflow_registers = ["t5", "t6"]

[output]
extension = ".s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ABI.FrameSize != 256 {
		t.Errorf("expected frame size 256, got %d", cfg.ABI.FrameSize)
	}
	if !reflect.DeepEqual(cfg.ABI.OverflowRegisters, []string{"t5", "t6"}) {
		t.Errorf("unexpected overflow registers %v", cfg.ABI.OverflowRegisters)
	}
	if cfg.Output.Extension != ".s" {
		t.Errorf("expected extension .s, got %q", cfg.Output.Extension)
	}
	// Untouched keys keep their defaults.
	if cfg.ABI.PrintHelper != "printInt" || len(cfg.ABI.ArgRegisters) != 8 {
		t.Errorf("expected defaults to survive, got %+v", cfg.ABI)
	}
	if cfg.ABI.MaxArgs() != 10 {
		t.Errorf("expected 10 argument registers, got %d", cfg.ABI.MaxArgs())
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{
			name:    "syntax error",
			content: "[abi\n",
			errText: "failed to parse",
		},
		{
			name:    "frame size not aligned",
			content: "[abi]\nframe_size = 100\n",
			errText: "frame_size",
		},
		{
			name:    "frame size beyond addi range",
			content: "[abi]\nframe_size = 2048\n",
			errText: "at most 2032",
		},
		{
			name:    "reserved register",
			content: "[abi]\narg_registers = [\"a0\", \"t0\"]\n",
			errText: "reserved",
		},
		{
			name:    "duplicate register",
			content: "[abi]\noverflow_registers = [\"a0\"]\n",
			errText: "listed twice",
		},
		{
			name:    "empty extension",
			content: "[output]\nextension = \"\"\n",
			errText: "extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("expected error containing %q, got %v", tt.errText, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Errorf("expected error for a missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	cfg := Default()
	cfg.Toolchain.Run = []string{"spike", "pk"}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestArgRegister(t *testing.T) {
	abi := Default().ABI
	expected := []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7", "t3", "t4", "t5", "t6"}
	for i, reg := range expected {
		if got := abi.ArgRegister(i); got != reg {
			t.Errorf("ArgRegister(%d) = %s, want %s", i, got, reg)
		}
	}
}

func TestValidate_LargestFrameSize(t *testing.T) {
	cfg := Default()
	cfg.ABI.FrameSize = MaxFrameSize
	if err := cfg.Validate(); err != nil {
		t.Errorf("frame_size %d rejected: %v", MaxFrameSize, err)
	}
}
