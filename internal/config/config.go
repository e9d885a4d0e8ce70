// Package config holds the server configuration. Values come from defaults,
// an optional YAML file and SCENES_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr         = "0.0.0.0:8080"
	DefaultWebRoot      = "wwwroot"
	DefaultSceneDir     = "Scenes/SME"
	DefaultCoordsFile   = "scenesCoords.json"
	DefaultMaxBodyBytes = 1 << 20
)

// Config is passed explicitly to every component at construction.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Scenes ScenesConfig `yaml:"scenes"`
	Coords CoordsConfig `yaml:"coords"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	WebRoot         string        `yaml:"web_root"` // static-asset root
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	SSL             bool          `yaml:"ssl"`
}

type ScenesConfig struct {
	// Dir is relative to the web root and uses forward slashes.
	Dir string `yaml:"dir"`
}

type CoordsConfig struct {
	// File is relative to the web root.
	File string `yaml:"file"`
}

type LogConfig struct {
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
}

// Production reports whether Mode selects production logging. The mode is
// matched case-insensitively, as logger.New does.
func (l LogConfig) Production() bool {
	switch strings.ToLower(strings.TrimSpace(l.Mode)) {
	case "prod", "production":
		return true
	}
	return false
}

// Default returns a configuration matching the original deployment layout.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			WebRoot:         DefaultWebRoot,
			MaxBodyBytes:    DefaultMaxBodyBytes,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Scenes: ScenesConfig{Dir: DefaultSceneDir},
		Coords: CoordsConfig{File: DefaultCoordsFile},
		Log:    LogConfig{Mode: "development", Level: "info"},
	}
}

// Load reads defaults, then the YAML file at filePath (skipped when empty),
// then environment overrides, and validates the result.
func Load(filePath string) (*Config, error) {
	cfg := Default()
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", filePath, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("SCENES_ADDR", &c.Server.Addr)
	str("SCENES_WEB_ROOT", &c.Server.WebRoot)
	str("SCENES_DIR", &c.Scenes.Dir)
	str("SCENES_COORDS_FILE", &c.Coords.File)
	str("SCENES_LOG_MODE", &c.Log.Mode)
	str("SCENES_LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup("SCENES_CORS_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.CORSOrigins = origins
	}
	if v, ok := lookup("SCENES_MAX_BODY_BYTES"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SCENES_MAX_BODY_BYTES %q: %w", v, err)
		}
		c.Server.MaxBodyBytes = n
	}
	return nil
}

// ApplyFlags overrides the listen port and web root from command-line flags
// (empty values leave the loaded settings alone) and validates the result.
func (c *Config) ApplyFlags(port, webRoot string) error {
	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("invalid port %q", port)
		}
		c.Server.Addr = "0.0.0.0:" + port
	}
	if webRoot != "" {
		c.Server.WebRoot = webRoot
	}
	return c.Validate()
}

// Validate rejects configurations the components cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if strings.TrimSpace(c.Server.WebRoot) == "" {
		errs = append(errs, errors.New("server.web_root is required"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if err := checkRelative("scenes.dir", c.Scenes.Dir); err != nil {
		errs = append(errs, err)
	}
	if err := checkRelative("coords.file", c.Coords.File); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// checkRelative requires p to be a non-empty path that stays inside the web root.
func checkRelative(name, p string) error {
	p = filepath.ToSlash(strings.TrimSpace(p))
	if p == "" {
		return fmt.Errorf("%s is required", name)
	}
	if path.IsAbs(p) || filepath.IsAbs(p) {
		return fmt.Errorf("%s must be relative to the web root, got %q", name, p)
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%s must stay inside the web root, got %q", name, p)
	}
	return nil
}

// SceneDirRel is the scene directory relative to the web root, forward-slashed.
func (c *Config) SceneDirRel() string {
	return path.Clean(filepath.ToSlash(c.Scenes.Dir))
}

// SceneDir is the scene directory on disk.
func (c *Config) SceneDir() string {
	return filepath.Join(c.Server.WebRoot, filepath.FromSlash(c.SceneDirRel()))
}

// CoordsPath is the persisted coordinates file on disk.
func (c *Config) CoordsPath() string {
	return filepath.Join(c.Server.WebRoot, filepath.FromSlash(path.Clean(filepath.ToSlash(c.Coords.File))))
}
