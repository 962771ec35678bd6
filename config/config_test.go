package config

import (
	"path/filepath"
	"testing"

	"github.com/lookbusy1344/arm-disasm/disasm"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Output.Address || !cfg.Output.Encoded || !cfg.Output.Comment {
		t.Errorf("expected all output columns on by default, got %+v", cfg.Output)
	}
	if len(cfg.Symbols) != 0 {
		t.Errorf("expected no preloaded symbols by default, got %d", len(cfg.Symbols))
	}
}

func TestFlags(t *testing.T) {
	cfg := DefaultConfig()
	if got, want := cfg.Flags(), disasm.FlagAddress|disasm.FlagInstr|disasm.FlagComment; got != want {
		t.Errorf("Flags() = %#x, want %#x", got, want)
	}

	cfg.Output.Encoded = false
	if got, want := cfg.Flags(), disasm.FlagAddress|disasm.FlagComment; got != want {
		t.Errorf("Flags() with Encoded off = %#x, want %#x", got, want)
	}
}

func TestLoadFromMissingFileReturnsDefault(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: unexpected error: %v", err)
	}
	if !cfg.Output.Address {
		t.Error("expected default config when file is missing")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "armdisasm.toml")

	cfg := DefaultConfig()
	cfg.Output.Encoded = false
	cfg.Symbols = []SymbolEntry{
		{Name: "reset_handler", Address: 0x08000100, Mode: "thumb"},
	}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Output.Encoded {
		t.Error("expected Encoded=false to round-trip")
	}
	if len(loaded.Symbols) != 1 || loaded.Symbols[0].Name != "reset_handler" {
		t.Fatalf("unexpected symbols after round-trip: %+v", loaded.Symbols)
	}
}

func TestApplySymbolsRejectsUnknownMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Symbols = []SymbolEntry{{Name: "bogus", Address: 4, Mode: "weird"}}

	state := disasm.NewState(disasm.FlagAddress)
	if err := cfg.ApplySymbols(state); err == nil {
		t.Fatal("expected error for unknown symbol mode")
	}
}

func TestApplySymbolsPreloadsThumbSymbol(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Symbols = []SymbolEntry{
		{Name: "handler", Address: 0x1000, Mode: "thumb"},
	}

	state := disasm.NewState(disasm.FlagAddress)
	if err := cfg.ApplySymbols(state); err != nil {
		t.Fatalf("ApplySymbols: %v", err)
	}
	if _, ok := state.LookupSymbol(0x1000); !ok {
		t.Error("expected symbol to be preloaded")
	}
}
