package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Source      Source      `yaml:"source"`
	Render      Render      `yaml:"render"`
	Publish     Publish     `yaml:"publish"`
	Credentials Credentials `yaml:"credentials"`
	Hosting     Hosting     `yaml:"hosting"`
	Output      Output      `yaml:"output"`
	Server      Server      `yaml:"server"`
	Schedule    Schedule    `yaml:"schedule"`
}

// Source describes the page the AQI reading is scraped from.
type Source struct {
	City      string        `yaml:"city" validate:"required"`
	URL       string        `yaml:"url" validate:"required,url"`
	UserAgent string        `yaml:"user_agent" validate:"required"`
	Selector  string        `yaml:"selector" validate:"required"`
	Marker    string        `yaml:"marker" validate:"required"`
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
}

type Render struct {
	AssetsDir string `yaml:"assets_dir" validate:"required"`
	OutputDir string `yaml:"output_dir" validate:"required"`
	Title     string `yaml:"title"`
	Fonts     Fonts  `yaml:"fonts"`
	Layout    Layout `yaml:"layout"`
}

// Fonts holds font file paths. An empty path selects the embedded Go font.
type Fonts struct {
	Regular     string  `yaml:"regular"`
	Large       string  `yaml:"large"`
	RegularSize float64 `yaml:"regular_size" validate:"gt=0"`
	LargeSize   float64 `yaml:"large_size" validate:"gt=0"`
}

// Layout holds vertical offsets in pixels.
type Layout struct {
	Top      int `yaml:"top" validate:"gte=0"`
	TitleGap int `yaml:"title_gap" validate:"gte=0"`
	LineGap  int `yaml:"line_gap" validate:"gte=0"`
	LabelGap int `yaml:"label_gap" validate:"gte=0"`
}

type Publish struct {
	ImagesDir  string        `yaml:"images_dir" validate:"required"`
	GraphURL   string        `yaml:"graph_url" validate:"required,url"`
	APIVersion string        `yaml:"api_version" validate:"required"`
	Delay      time.Duration `yaml:"delay" validate:"gte=0"`
}

// Credentials names the environment variables holding publish secrets.
type Credentials struct {
	TokenEnv  string `yaml:"token_env" validate:"required"`
	UserIDEnv string `yaml:"user_id_env" validate:"required"`
}

type Hosting struct {
	Provider string        `yaml:"provider" validate:"oneof=github s3"`
	GitHub   GitHubHosting `yaml:"github"`
	S3       S3Hosting     `yaml:"s3"`
}

type GitHubHosting struct {
	Repository    string `yaml:"repository"`
	RepositoryEnv string `yaml:"repository_env"`
	Branch        string `yaml:"branch"`
	BranchEnv     string `yaml:"branch_env"`
}

type S3Hosting struct {
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	Prefix        string `yaml:"prefix"`
	PublicBaseURL string `yaml:"public_base_url" validate:"omitempty,url"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port" validate:"gt=0,lt=65536"`
}

type Schedule struct {
	Cron string `yaml:"cron" validate:"required"`
}

var validate = validator.New()

// ConfigDir returns the XDG config directory for smogstory.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "smogstory")
}

// DataDir returns the XDG data directory for smogstory.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "smogstory")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/smogstory/config.yaml > ./config.yaml.
// An empty result means the embedded defaults apply.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path loads the
// embedded defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(DefaultConfigYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// LoadEnv loads a .env file from the working directory if one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Ignoring .env file: %v", err)
	}
}

// parse parses YAML bytes into a Config on top of the embedded defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(DefaultConfigYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing default config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Hosting.Provider == "s3" && c.Hosting.S3.Bucket == "" {
		return fmt.Errorf("invalid config: hosting.s3.bucket is required for the s3 provider")
	}
	return nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
