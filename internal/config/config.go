// Package config loads the todors TOML configuration and resolves it
// against the environment: flag beats env beats file beats default.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// EnvConfigFile names the config file when the -d flag is absent.
const EnvConfigFile = "TODORS_CFG_FILE"

// Config mirrors the TOML schema.
type Config struct {
	General General `toml:"general"`
	Styles  []Style `toml:"styles"`
}

// General holds file locations and behavior toggles.
type General struct {
	TodoFile      string   `toml:"todo_file"`
	DoneFile      string   `toml:"done_file"`
	ReportFile    string   `toml:"report_file"`
	DateOnAdd     bool     `toml:"date_on_add"`
	DefaultAction string   `toml:"default_action"`
	Sort          []string `toml:"sort"`
}

// Style maps one named element (pri_a..pri_z, project, context, done) to
// ANSI-256 colors and attributes. Nil color fields stay unset.
type Style struct {
	Name      string `toml:"name"`
	ColorFG   *int   `toml:"color_fg"`
	ColorBG   *int   `toml:"color_bg"`
	Bold      bool   `toml:"bold"`
	Intense   bool   `toml:"intense"`
	Underline bool   `toml:"underline"`
}

// Default returns the built-in configuration before any file or environment
// is applied.
func Default() *Config {
	return &Config{
		General: General{
			DefaultAction: "ls",
		},
	}
}

// Discover returns the config file path the environment points at, or the
// conventional location, or "" when no candidate exists.
func Discover() string {
	if env := os.Getenv(EnvConfigFile); env != "" {
		return ExpandPath(env)
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "todors", "todors.toml")
}

// Load reads an explicitly requested config file. A missing file is an
// error here; the user named it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(ExpandPath(path), cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.resolve()
	return cfg, nil
}

// LoadDefault discovers the config file and tolerates its absence.
func LoadDefault() (*Config, error) {
	cfg := Default()
	path := Discover()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config %s: %w", path, err)
			}
		}
	}
	cfg.resolve()
	return cfg, nil
}

// resolve expands environment references and fills derived defaults.
func (c *Config) resolve() {
	c.General.TodoFile = ExpandPath(c.General.TodoFile)
	if c.General.TodoFile == "" {
		c.General.TodoFile = ExpandPath(os.Getenv("TODO_FILE"))
	}
	if c.General.TodoFile == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			c.General.TodoFile = filepath.Join(home, "todo.txt")
		} else {
			c.General.TodoFile = "todo.txt"
		}
	}

	dir := filepath.Dir(c.General.TodoFile)
	c.General.DoneFile = ExpandPath(c.General.DoneFile)
	if c.General.DoneFile == "" {
		c.General.DoneFile = filepath.Join(dir, "done.txt")
	}
	c.General.ReportFile = ExpandPath(c.General.ReportFile)
	if c.General.ReportFile == "" {
		c.General.ReportFile = filepath.Join(dir, "report.txt")
	}

	if strings.TrimSpace(c.General.DefaultAction) == "" {
		c.General.DefaultAction = "ls"
	}
}

// ExpandPath expands $VAR, ${VAR} and a leading ~ in a file path.
func ExpandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
		}
	}
	return p
}
