package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tickterm.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// clearEnv unsets the variables the loader reads
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TICKTERM_FPS", "TICKTERM_FULLSCREEN", "TICKTERM_DEBUG", "TICKTERM_SOUND", "TICKTERM_COLOR", "TICKTERM_CONFIG", "NO_COLOR"} {
		t.Setenv(k, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 60, cfg.FPS)
	assert.Equal(t, "stdout", cfg.Output)
	assert.True(t, cfg.Markup)
	assert.True(t, cfg.QueryCursor)
	assert.Equal(t, 50*time.Millisecond, cfg.CursorTimeout())
	assert.Equal(t, "line", cfg.Spinner)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
fps = 30
fullscreen = true
color = "256"
title = "demo"
spinner = "moon"

[log]
debug = true
file = "/tmp/x.log"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.FPS)
	assert.True(t, cfg.Fullscreen)
	assert.Equal(t, "256", cfg.Color)
	assert.Equal(t, "demo", cfg.Title)
	assert.Equal(t, "moon", cfg.Spinner)
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, "/tmp/x.log", cfg.Log.File)
	// untouched keys keep their defaults
	assert.True(t, cfg.Markup)
	assert.Equal(t, 128, cfg.MaxLines)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "fsp = 30\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fsp")
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, "fps = = 3\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TICKTERM_FPS", "24")
	t.Setenv("TICKTERM_FULLSCREEN", "true")
	t.Setenv("TICKTERM_DEBUG", "1")
	t.Setenv("TICKTERM_SOUND", "yes-please")
	t.Setenv("TICKTERM_COLOR", "TrueColor")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 24, cfg.FPS)
	assert.True(t, cfg.Fullscreen)
	assert.True(t, cfg.Log.Debug)
	assert.False(t, cfg.Sound, "unparseable booleans are ignored")
	assert.Equal(t, "truecolor", cfg.Color)
}

func TestNoColorWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("TICKTERM_COLOR", "truecolor")
	t.Setenv("NO_COLOR", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "none", cfg.Color)
	assert.Equal(t, termenv.Ascii, cfg.Profile())
}

func TestParseLayering(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "fps = 30\ntitle = \"file\"\n")
	t.Setenv("TICKTERM_FPS", "40")

	cfg, rest, err := Parse("test", []string{"-config", path, "-title", "flag", "extra"})
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.FPS, "environment overrides the file")
	assert.Equal(t, "flag", cfg.Title, "flags override the file")
	assert.Equal(t, []string{"extra"}, rest)

	cfg, _, err = Parse("test", []string{"--config=" + path, "-fps", "90"})
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.FPS, "flags override the environment")
	assert.Equal(t, "file", cfg.Title)
}

func TestParseConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TICKTERM_CONFIG", writeConfig(t, "mouse = true\n"))

	cfg, _, err := Parse("test", nil)
	require.NoError(t, err)
	assert.True(t, cfg.Mouse)
}

func TestParseRejectsInvalid(t *testing.T) {
	clearEnv(t)
	_, _, err := Parse("test", []string{"-fps", "0"})
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs), "got %v", err)
	assert.Equal(t, "fps", verrs[0].Field)
}

func TestValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.FPS = 1000
	cfg.Output = ""
	cfg.Color = "sepia"
	cfg.CursorTimeoutMS = 0
	cfg.MaxLines = 0
	cfg.Volume = 2
	cfg.Spinner = "nope"

	err := cfg.Validate()
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, len(verrs))
	for i, e := range verrs {
		fields[i] = e.Field
	}
	assert.Equal(t, []string{"fps", "output", "color", "cursor_timeout_ms", "max_lines", "volume", "spinner"}, fields)
	assert.Contains(t, err.Error(), "sepia")
}

func TestProfile(t *testing.T) {
	tests := map[string]termenv.Profile{
		"truecolor": termenv.TrueColor,
		"256":       termenv.ANSI256,
		"16":        termenv.ANSI,
		"none":      termenv.Ascii,
	}
	for color, want := range tests {
		cfg := Default()
		cfg.Color = color
		assert.Equal(t, want, cfg.Profile(), color)
	}
}

func TestConfigPathFromArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-config", "a.toml"}, "a.toml"},
		{[]string{"--config", "b.toml"}, "b.toml"},
		{[]string{"-config=c.toml"}, "c.toml"},
		{[]string{"-fps", "30"}, ""},
		{[]string{"--", "-config", "d.toml"}, ""},
		{[]string{"-config"}, ""},
		{[]string{"config", "e.toml"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, configPathFromArgs(tt.args), "%v", tt.args)
	}
}

func TestOpenOutput(t *testing.T) {
	cfg := Default()
	f, closeFn, err := cfg.OpenOutput()
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)
	assert.NoError(t, closeFn())

	cfg.Output = "stderr"
	f, _, err = cfg.OpenOutput()
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, f)

	cfg.Output = filepath.Join(t.TempDir(), "missing", "tty")
	_, _, err = cfg.OpenOutput()
	assert.Error(t, err)
}

func TestRuntimeOptions(t *testing.T) {
	cfg := Default()
	cfg.FPS = 30
	cfg.Fullscreen = true
	cfg.Mouse = true
	cfg.QueryCursor = false
	cfg.Markup = false
	cfg.CursorTimeoutMS = 20

	opts := cfg.RuntimeOptions(nil)
	assert.Equal(t, 30, opts.FPS)
	assert.True(t, opts.Fullscreen)
	assert.True(t, opts.Mouse)
	assert.True(t, opts.NoCursorQuery)
	assert.Equal(t, 20*time.Millisecond, opts.CursorTimeout)
	assert.Nil(t, opts.Output)
	require.NotNil(t, opts.Expander)
	assert.Equal(t, "x", opts.Expander.Expand("<red>x</>"), "markup off strips tags")

	opts = cfg.RuntimeOptions(os.Stdout)
	assert.Equal(t, os.Stdout, opts.Output)
}
