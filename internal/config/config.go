package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

//go:embed sample_config.toml
var sampleConfig string

// Preview contains the pools used to resolve representative structures and
// the profile synthesis parameters.
type Preview struct {
	ResolvingPower  float64  `toml:"resolving_power"`
	SamplingDensity float64  `toml:"sampling_density"`
	IsotopeMode     bool     `toml:"isotope_mode"`
	AcylPool        []string `toml:"acyl_pool"`
	EtherPool       []string `toml:"ether_pool"`
	VinylPool       []string `toml:"vinyl_pool"`
}

// Registry points at optional replacements for the built-in definitions.
type Registry struct {
	Path      string `toml:"path"`       // YAML class registry; empty uses the embedded one
	AdductCSV string `toml:"adduct_csv"` // extra adducts merged over the defaults
}

// Export contains filtering applied to exported spectra.
type Export struct {
	TopN   int     `toml:"top_n"`
	Cutoff float64 `toml:"cutoff"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for LipidKey.
type Config struct {
	Preview  Preview  `toml:"preview"`
	Registry Registry `toml:"registry"`
	Export   Export   `toml:"export"`
	Logging  Logging  `toml:"logging"`
}

// Load parses and validates a configuration file. An empty path looks for
// lipidkey.toml in the working directory and then in ~/.config/lipidkey. A
// missing file yields the defaults; the bool reports whether a file was read.
func Load(path string) (*Config, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return &cfg, exists, nil
}

// Pools parses the configured tail pools. Empty pools are omitted so the
// resolver falls back to its defaults.
func (c *Config) Pools() (map[core.ChainType][]core.Tail, error) {
	pools := make(map[core.ChainType][]core.Tail)
	for _, p := range []struct {
		chain core.ChainType
		key   string
		specs []string
	}{
		{core.Acyl, "preview.acyl_pool", c.Preview.AcylPool},
		{core.Ether, "preview.ether_pool", c.Preview.EtherPool},
		{core.Vinyl, "preview.vinyl_pool", c.Preview.VinylPool},
	} {
		if len(p.specs) == 0 {
			continue
		}
		tails, err := core.ParseTails(p.specs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.key, err)
		}
		for _, t := range tails {
			if t.Type != p.chain {
				return nil, fmt.Errorf("%s: %s is not a %s chain", p.key, t, p.chain)
			}
		}
		pools[p.chain] = tails
	}
	return pools, nil
}

// CreateSample writes the commented sample configuration to path. It refuses
// to overwrite an existing file.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config %s already exists", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	if c.Registry.Path, err = expandPath(strings.TrimSpace(c.Registry.Path)); err != nil {
		return err
	}
	if c.Registry.AdductCSV, err = expandPath(strings.TrimSpace(c.Registry.AdductCSV)); err != nil {
		return err
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config %s: %w", expanded, err)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs("lipidkey.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lipidkey/config.toml")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
