// Package config loads the host configuration file and the rhythm settings
// file it points at.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/ingyamilmolinar/polyrhythm/core/model"
)

const DefaultFileName = "polyrhythm.yaml"

type Config struct {
	LogLevel string       `yaml:"log_level,omitempty"`
	Window   WindowConfig `yaml:"window"`
	Audio    AudioConfig  `yaml:"audio"`
	Voices   VoiceConfig  `yaml:"voices"`

	// SettingsFile is the rhythm settings JSON loaded at startup and written
	// by export. Empty means built-in defaults.
	SettingsFile string `yaml:"settings_file,omitempty"`
}

type WindowConfig struct {
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Title  string `yaml:"title,omitempty"`
	TPS    int    `yaml:"tps,omitempty"`
}

type AudioConfig struct {
	Mute       bool `yaml:"mute,omitempty"`
	SampleRate int  `yaml:"sample_rate,omitempty"`
}

type VoiceConfig struct {
	Max           int           `yaml:"max,omitempty"`
	Grace         time.Duration `yaml:"grace,omitempty"`
	SweepInterval time.Duration `yaml:"sweep_interval,omitempty"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Window:   WindowConfig{Width: 960, Height: 540, Title: "polyrhythm", TPS: 60},
		Audio:    AudioConfig{SampleRate: 44100},
		Voices:   VoiceConfig{Max: 16, Grace: 500 * time.Millisecond, SweepInterval: time.Second},
	}
}

// withDefaults fills every unset or invalid field from Default.
func (c Config) withDefaults() Config {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Window.Width <= 0 {
		c.Window.Width = d.Window.Width
	}
	if c.Window.Height <= 0 {
		c.Window.Height = d.Window.Height
	}
	if c.Window.Title == "" {
		c.Window.Title = d.Window.Title
	}
	if c.Window.TPS <= 0 {
		c.Window.TPS = d.Window.TPS
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
	if c.Voices.Max <= 0 {
		c.Voices.Max = d.Voices.Max
	}
	if c.Voices.Grace <= 0 {
		c.Voices.Grace = d.Voices.Grace
	}
	if c.Voices.SweepInterval <= 0 {
		c.Voices.SweepInterval = d.Voices.SweepInterval
	}
	return c
}

// ResolvePath expands a leading "~/" to the user's home directory.
func ResolvePath(p string) (string, error) {
	if !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find user home dir: %w", err)
	}
	return filepath.Join(home, p[2:]), nil
}

// Load reads a YAML config. An empty path or a missing file yields the
// defaults; a file that exists but does not parse is an error.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	p, err := ResolvePath(path)
	if err != nil {
		return Config{}, err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var c Config
	if err := yaml.NewDecoder(f).Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", p, err)
	}
	c = c.withDefaults()
	if c.SettingsFile != "" {
		if c.SettingsFile, err = ResolvePath(c.SettingsFile); err != nil {
			return Config{}, err
		}
		if !filepath.IsAbs(c.SettingsFile) {
			c.SettingsFile = filepath.Join(filepath.Dir(p), c.SettingsFile)
		}
	}
	return c, nil
}

// Marshal encodes c as YAML.
func Marshal(c Config) ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return b, nil
}

// LoadSettings reads a settings blob. An empty path or a missing file yields
// model.Defaults.
func LoadSettings(path string) (model.Settings, error) {
	if path == "" {
		return model.Defaults(), nil
	}
	p, err := ResolvePath(path)
	if err != nil {
		return model.Settings{}, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return model.Defaults(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	s, err := model.Unmarshal(b)
	if err != nil {
		return model.Settings{}, fmt.Errorf("settings %s: %w", p, err)
	}
	return s, nil
}

// SaveSettings writes s to path, creating parent directories.
func SaveSettings(path string, s model.Settings) error {
	p, err := ResolvePath(path)
	if err != nil {
		return err
	}
	b, err := model.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
