package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// EnvValidation overrides Validation.Enabled when set.
const EnvValidation = "VK_VALIDATION"

var ErrInvalid = errors.New("invalid config")

type Window struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Title     string `yaml:"title"`
	Resizable bool   `yaml:"resizable"`
}

type Validation struct {
	Enabled bool     `yaml:"enabled"`
	Layers  []string `yaml:"layers"`
}

type Shaders struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

type Pipeline struct {
	Preset string `yaml:"preset"`
	// Samples is only read by the msaa preset.
	Samples int `yaml:"samples"`
	// DepthFormat adds a depth attachment to the render pass when set,
	// e.g. "d32_sfloat".
	DepthFormat string `yaml:"depth_format"`
}

type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Config struct {
	AppName          string     `yaml:"app_name"`
	Window           Window     `yaml:"window"`
	Validation       Validation `yaml:"validation"`
	DeviceExtensions []string   `yaml:"device_extensions"`
	Shaders          Shaders    `yaml:"shaders"`
	Pipeline         Pipeline   `yaml:"pipeline"`
	Log              Log        `yaml:"log"`
	FramesPerSecond  int        `yaml:"fps"`
}

func Default() *Config {
	return &Config{
		AppName: "Vulkan App",
		Window: Window{
			Width:  800,
			Height: 600,
			Title:  "Vulkan App",
		},
		Validation: Validation{
			Enabled: true,
			Layers:  []string{"VK_LAYER_KHRONOS_validation"},
		},
		DeviceExtensions: []string{"VK_KHR_swapchain"},
		Shaders: Shaders{
			Vertex:   "assets/shaders/vertex/simple_shader.vert.spv",
			Fragment: "assets/shaders/fragment/simple_shader.frag.spv",
		},
		Pipeline: Pipeline{
			Preset:  "basic",
			Samples: 4,
		},
		Log: Log{
			Level: "info",
		},
		FramesPerSecond: 60,
	}
}

// Load reads the YAML file at path on top of the defaults. An empty path
// yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		p, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path: %w", err)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	v, ok := os.LookupEnv(EnvValidation)
	if !ok || v == "" {
		return nil
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, EnvValidation, v)
	}
	c.Validation.Enabled = enabled
	return nil
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Shaders.Vertex, &c.Shaders.Fragment, &c.Log.File} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside start-up.
// presets is the list of known pipeline preset names.
func (c *Config) Validate(presets []string) error {
	var problems []string
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		problems = append(problems, fmt.Sprintf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Shaders.Vertex == "" || c.Shaders.Fragment == "" {
		problems = append(problems, "both vertex and fragment shader paths are required")
	}
	if c.Validation.Enabled && len(c.Validation.Layers) == 0 {
		problems = append(problems, "validation enabled without any layers")
	}
	if !contains(presets, c.Pipeline.Preset) {
		problems = append(problems, fmt.Sprintf("unknown pipeline preset %q", c.Pipeline.Preset))
	}
	switch c.Pipeline.Samples {
	case 1, 2, 4, 8, 16, 32, 64:
	default:
		problems = append(problems, fmt.Sprintf("sample count %d is not a power of two up to 64", c.Pipeline.Samples))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	if c.FramesPerSecond <= 0 {
		problems = append(problems, "fps must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
