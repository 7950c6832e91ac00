// Package config loads the calibration run configuration from defaults, an
// optional YAML file, a .env file and FLUXCAL_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment variable, e.g. FLUXCAL_PATHS_CATALOG_DIR.
const EnvPrefix = "FLUXCAL"

// DefaultFile is looked up in the working directory when Load gets no path.
const DefaultFile = "fluxcal.yaml"

// Config is the complete run configuration.
type Config struct {
	Paths       PathsConfig       `yaml:"paths" envconfig:"PATHS"`
	Calibration CalibrationConfig `yaml:"calibration" envconfig:"CALIBRATION"`
	Master      MasterConfig      `yaml:"master" envconfig:"MASTER"`
	Outputs     OutputsConfig     `yaml:"outputs" envconfig:"OUTPUTS"`
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
}

// PathsConfig holds input and output locations.
type PathsConfig struct {
	CatalogDir     string `yaml:"catalog_dir" envconfig:"CATALOG_DIR"`
	MaskDir        string `yaml:"mask_dir" envconfig:"MASK_DIR"`
	OutputDir      string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	Ledger         string `yaml:"ledger" envconfig:"LEDGER" validate:"required"`
	DiagnosticsDir string `yaml:"diagnostics_dir" envconfig:"DIAGNOSTICS_DIR"`
	PlotDir        string `yaml:"plot_dir" envconfig:"PLOT_DIR"`
}

// CalibrationConfig holds the numerical parameters.
type CalibrationConfig struct {
	Order        int     `yaml:"order" envconfig:"ORDER" validate:"min=1,max=15"`
	GridStep     float64 `yaml:"grid_step" envconfig:"GRID_STEP" validate:"gt=0"`
	Oversampling int     `yaml:"oversampling" envconfig:"OVERSAMPLING" validate:"min=1"`
	Extinction   bool    `yaml:"extinction" envconfig:"EXTINCTION"`
	ZeroPoint    float64 `yaml:"zero_point" envconfig:"ZERO_POINT" validate:"gt=0"`
}

// MasterConfig selects master-response mode.
type MasterConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	Dir         string `yaml:"dir" envconfig:"DIR" validate:"required_if=Enabled true"`
	NightlyList string `yaml:"nightly_list" envconfig:"NIGHTLY_LIST"`
}

// OutputsConfig toggles optional outputs.
type OutputsConfig struct {
	ExportCurves bool   `yaml:"export_curves" envconfig:"EXPORT_CURVES"`
	CurveDir     string `yaml:"curve_dir" envconfig:"CURVE_DIR"`
	Workbook     bool   `yaml:"workbook" envconfig:"WORKBOOK"`
}

// LoggingConfig mirrors the logger settings.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Ledger: "sensitivity_params.txt",
		},
		Calibration: CalibrationConfig{
			Order:        4,
			GridStep:     0.05,
			Oversampling: 200,
			Extinction:   true,
			ZeroPoint:    3.68e-20,
		},
		Master: MasterConfig{
			NightlyList: "response_curves.txt",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "console",
			FilePath: "logs/fluxcal.log",
		},
	}
}

// Override adjusts a loaded configuration before it is validated.
type Override func(*Config)

// Load builds the configuration. An explicit path must exist; with an
// empty path DefaultFile is used when present. Overrides run after the
// file and environment are applied and before validation, so they see
// the merged values and their result is what gets checked.
func Load(path string, overrides ...Override) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		if err := loadFromFile(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, o := range overrides {
		if o != nil {
			o(cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file
// keep their current value.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s not found", path)
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
