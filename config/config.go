// Package config loads disassembler session presets: which optional text
// columns to emit and which symbols to preload before decoding starts. Both
// concerns sit outside the decoder itself (disasm.State has no notion of a
// config file) but are the ambient setup a caller typically wants.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/lookbusy1344/arm-disasm/disasm"
)

// Config represents a disassembler run's presets.
type Config struct {
	// Output controls which text columns disasm.State prepends to each
	// decoded line.
	Output struct {
		Address bool `toml:"address"`
		Encoded bool `toml:"encoded"`
		Comment bool `toml:"comment"`
	} `toml:"output"`

	// Symbols lists known names to preload with disasm.State.AddSymbol
	// before decoding, so branch/load targets resolve to names instead of
	// bare addresses.
	Symbols []SymbolEntry `toml:"symbols"`
}

// SymbolEntry is one preloaded symbol-table row.
type SymbolEntry struct {
	Name    string `toml:"name"`
	Address uint32 `toml:"address"`
	// Mode is one of "unknown", "arm", "thumb", "data".
	Mode string `toml:"mode"`
}

// DefaultConfig returns a configuration with the teacher's own defaults:
// all three output columns on, no preloaded symbols.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Output.Address = true
	cfg.Output.Encoded = true
	cfg.Output.Comment = true
	return cfg
}

// Flags converts the output presets to the disasm.Flags bitfield expected
// by disasm.NewState.
func (c *Config) Flags() disasm.Flags {
	var f disasm.Flags
	if c.Output.Address {
		f |= disasm.FlagAddress
	}
	if c.Output.Encoded {
		f |= disasm.FlagInstr
	}
	if c.Output.Comment {
		f |= disasm.FlagComment
	}
	return f
}

// symbolModes maps the TOML spelling to disasm.SymbolMode.
var symbolModes = map[string]disasm.SymbolMode{
	"":       disasm.SymbolUnknown,
	"unknown": disasm.SymbolUnknown,
	"arm":     disasm.SymbolARM,
	"thumb":   disasm.SymbolThumb,
	"data":    disasm.SymbolData,
}

// ApplySymbols preloads every configured symbol into state.
func (c *Config) ApplySymbols(state *disasm.State) error {
	for _, sym := range c.Symbols {
		mode, ok := symbolModes[sym.Mode]
		if !ok {
			return fmt.Errorf("config: symbol %q: unknown mode %q", sym.Name, sym.Mode)
		}
		state.AddSymbol(sym.Name, sym.Address, mode)
	}
	return nil
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "armdisasm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "armdisasm.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "armdisasm")

	default:
		return "armdisasm.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "armdisasm.toml"
	}

	return filepath.Join(configDir, "armdisasm.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file. A missing file is
// not an error: it yields DefaultConfig().
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("config: create directory for %s: %w", path, err)
	}

	f, err := os.Create(path) // #nosec G304 -- caller-controlled config path
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("config: close %s: %w", path, closeErr)
		}
	}()

	if encErr := toml.NewEncoder(f).Encode(c); encErr != nil {
		return fmt.Errorf("config: encode %s: %w", path, encErr)
	}

	return nil
}
