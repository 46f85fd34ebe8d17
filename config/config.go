// Package config loads runtime settings from a TOML file, the environment
// and command-line flags, in that order of precedence (flags win).
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/muesli/termenv"

	"github.com/lixenwraith/tickterm/component"
	"github.com/lixenwraith/tickterm/engine"
	"github.com/lixenwraith/tickterm/markup"
)

// Config is the on-disk and command-line configuration
type Config struct {
	FPS             int     `toml:"fps"`
	Fullscreen      bool    `toml:"fullscreen"`
	Output          string  `toml:"output"`
	Markup          bool    `toml:"markup"`
	Color           string  `toml:"color"`
	Mouse           bool    `toml:"mouse"`
	Title           string  `toml:"title"`
	QueryCursor     bool    `toml:"query_cursor"`
	CursorTimeoutMS int     `toml:"cursor_timeout_ms"`
	MaxLines        int     `toml:"max_lines"`
	Sound           bool    `toml:"sound"`
	Volume          float64 `toml:"volume"`
	Spinner         string  `toml:"spinner"`

	Log LogConfig `toml:"log"`
}

// LogConfig controls debug logging
type LogConfig struct {
	Debug bool   `toml:"debug"`
	File  string `toml:"file"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		FPS:             engine.DefaultFPS,
		Output:          "stdout",
		Markup:          true,
		Color:           "auto",
		QueryCursor:     true,
		CursorTimeoutMS: 50,
		MaxLines:        128,
		Volume:          0.5,
		Spinner:         component.SpinnerLine.String(),
	}
}

// LoadFile decodes path over c, a missing file is not an error
// Keys the struct does not know are reported so typos surface
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Load returns the defaults overlaid with the file at path
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies TICKTERM_* variables and NO_COLOR
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("TICKTERM_FPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FPS = n
		}
	}
	if v, ok := envBool("TICKTERM_FULLSCREEN"); ok {
		c.Fullscreen = v
	}
	if v, ok := envBool("TICKTERM_DEBUG"); ok {
		c.Log.Debug = v
	}
	if v, ok := envBool("TICKTERM_SOUND"); ok {
		c.Sound = v
	}
	if v := os.Getenv("TICKTERM_COLOR"); v != "" {
		c.Color = strings.ToLower(v)
	}
	// https://no-color.org
	if os.Getenv("NO_COLOR") != "" {
		c.Color = "none"
	}
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// RegisterFlags binds flags to c, current values become the flag defaults
func (c *Config) RegisterFlags(flags *flag.FlagSet) {
	flags.IntVar(&c.FPS, "fps", c.FPS, "frames per second")
	flags.BoolVar(&c.Fullscreen, "fullscreen", c.Fullscreen, "redraw from the top of the screen")
	flags.StringVar(&c.Output, "output", c.Output, "stdout, stderr or a terminal device path")
	flags.BoolVar(&c.Markup, "markup", c.Markup, "expand style tags")
	flags.StringVar(&c.Color, "color", c.Color, "color mode: auto, truecolor, 256, 16, none")
	flags.BoolVar(&c.Mouse, "mouse", c.Mouse, "report mouse events")
	flags.StringVar(&c.Title, "title", c.Title, "window title")
	flags.BoolVar(&c.QueryCursor, "query-cursor", c.QueryCursor, "detect soft wraps with cursor reports")
	flags.IntVar(&c.CursorTimeoutMS, "cursor-timeout", c.CursorTimeoutMS, "cursor report timeout in milliseconds")
	flags.IntVar(&c.MaxLines, "max-lines", c.MaxLines, "maximum frame height in rows")
	flags.BoolVar(&c.Sound, "sound", c.Sound, "audible bell")
	flags.Float64Var(&c.Volume, "volume", c.Volume, "bell volume, 0 to 1")
	flags.StringVar(&c.Spinner, "spinner", c.Spinner, "initial spinner preset")
	flags.BoolVar(&c.Log.Debug, "debug", c.Log.Debug, "write a debug log")
	flags.StringVar(&c.Log.File, "log", c.Log.File, "debug log path")
}

// Parse builds the configuration for a command: defaults, then the file
// named by -config or TICKTERM_CONFIG, then the environment, then flags
// It returns the remaining positional arguments
func Parse(name string, args []string) (*Config, []string, error) {
	path := configPathFromArgs(args)
	if path == "" {
		path = os.Getenv("TICKTERM_CONFIG")
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	cfg.ApplyEnvOverrides()

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.String("config", path, "TOML configuration file")
	cfg.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, flags.Args(), nil
}

// configPathFromArgs finds -config ahead of flag parsing, the file must be
// loaded before flags override it
func configPathFromArgs(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		name := strings.TrimLeft(a, "-")
		if len(a)-len(name) < 1 || len(a)-len(name) > 2 {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// ValidationError is one invalid setting
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid setting
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

var validColors = map[string]bool{"auto": true, "truecolor": true, "256": true, "16": true, "none": true}

// Validate reports every setting outside its range
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.FPS < 1 || c.FPS > 240 {
		add("fps", "%d is outside 1-240", c.FPS)
	}
	if c.Output == "" {
		add("output", "must not be empty")
	}
	if !validColors[c.Color] {
		add("color", "invalid mode '%s', must be one of: auto, truecolor, 256, 16, none", c.Color)
	}
	if c.CursorTimeoutMS < 1 || c.CursorTimeoutMS > 5000 {
		add("cursor_timeout_ms", "%d is outside 1-5000", c.CursorTimeoutMS)
	}
	if c.MaxLines < 1 || c.MaxLines > 4096 {
		add("max_lines", "%d is outside 1-4096", c.MaxLines)
	}
	if c.Volume < 0 || c.Volume > 1 {
		add("volume", "%g is outside 0-1", c.Volume)
	}
	if _, err := component.ParseSpinnerKind(c.Spinner); err != nil {
		add("spinner", "%v", err)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Profile maps the color setting to a termenv profile
func (c *Config) Profile() termenv.Profile {
	switch c.Color {
	case "truecolor":
		return termenv.TrueColor
	case "256":
		return termenv.ANSI256
	case "16":
		return termenv.ANSI
	case "none":
		return termenv.Ascii
	default:
		return termenv.EnvColorProfile()
	}
}

// CursorTimeout returns the cursor report wait as a duration
func (c *Config) CursorTimeout() time.Duration {
	return time.Duration(c.CursorTimeoutMS) * time.Millisecond
}

// OpenOutput resolves the output setting
// The returned close function is a no-op for stdout and stderr
func (c *Config) OpenOutput() (*os.File, func() error, error) {
	switch c.Output {
	case "", "stdout", "-":
		return os.Stdout, func() error { return nil }, nil
	case "stderr":
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(c.Output, os.O_WRONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}
	return f, f.Close, nil
}

// RuntimeOptions converts the configuration for engine.New
func (c *Config) RuntimeOptions(out *os.File) engine.Options {
	profile := c.Profile()
	if !c.Markup {
		profile = termenv.Ascii
	}
	opts := engine.Options{
		FPS:           c.FPS,
		Fullscreen:    c.Fullscreen,
		Expander:      markup.New(profile),
		Mouse:         c.Mouse,
		Title:         c.Title,
		NoCursorQuery: !c.QueryCursor,
		CursorTimeout: c.CursorTimeout(),
		MaxLines:      c.MaxLines,
	}
	if out != nil {
		opts.Output = out
	}
	return opts
}
