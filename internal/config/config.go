package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/seatcall/seatcall/pkg/core/quota"
)

// StoreConfig selects where the session is kept between commands
type StoreConfig struct {
	Driver string `yaml:"driver" validate:"required,oneof=postgres sqlite"`
	DSN    string `yaml:"dsn,omitempty" validate:"required_if=Driver postgres"`
	Path   string `yaml:"path,omitempty" validate:"required_if=Driver sqlite"`
}

// SheetsConfig points at the spreadsheets candidates are imported from and calls are
// published to. Both are optional.
type SheetsConfig struct {
	CandidateSheetID string `yaml:"candidateSheetID,omitempty"`
	CandidatesTab    string `yaml:"candidatesTab,omitempty" validate:"required_with=CandidateSheetID"`
	CallSheetID      string `yaml:"callSheetID,omitempty"`
}

// HTTPConfig configures the serve command
type HTTPConfig struct {
	Addr           string   `yaml:"addr,omitempty" validate:"omitempty,hostname_port"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty" validate:"dive,required"`
}

// Config represents the application configuration
type Config struct {
	Store StoreConfig `yaml:"store"`

	// DefaultMultiplier is used when a call is generated without an explicit multiplier
	DefaultMultiplier float64 `yaml:"defaultMultiplier,omitempty" validate:"omitempty,gt=0"`

	// TieBreakByID orders equal scores by CPF instead of file order
	TieBreakByID bool `yaml:"tieBreakByID,omitempty"`

	// QuotaMatrix overrides rows of the legal eligibility/fallback table, keyed by quota code
	QuotaMatrix map[string]quota.RuleOverride `yaml:"quotaMatrix,omitempty" validate:"dive,keys,quotacode,endkeys"`

	Sheets SheetsConfig `yaml:"sheets,omitempty"`

	GmailSender string `yaml:"gmailSender,omitempty" validate:"omitempty,email"`

	// CallSchedule is an RRULE for the dates calls are published on. The next occurrence
	// is announced to called candidates as their enrolment deadline.
	CallSchedule string `yaml:"callSchedule,omitempty"`

	HTTP HTTPConfig `yaml:"http,omitempty"`
}

const (
	configFileBase  = "seatcall_config"
	defaultHTTPAddr = ":8080"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := quota.RegisterValidation(validate); err != nil {
		panic(err)
	}
}

// Load loads and validates seatcall_config.yaml from the current or home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration for an environment. For example, env="test" looks
// for seatcall_config.test.yaml.
func LoadWithEnv(env string) (*Config, error) {
	path, err := locateEnvFile(configFileBase, env, ".yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(path)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	var cfg Config
	if err := decodeFile(path, "config", yaml.Unmarshal, &cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, the quota matrix overrides and the
// call schedule
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := quota.BuildMatrix(cfg.QuotaMatrix); err != nil {
		return fmt.Errorf("invalid quotaMatrix: %w", err)
	}

	if cfg.CallSchedule != "" {
		if _, err := rrule.StrToRRule(cfg.CallSchedule); err != nil {
			return fmt.Errorf("invalid rrule in callSchedule: %w", err)
		}
	}

	return nil
}

// Multiplier returns the configured default multiplier, or 1
func (c *Config) Multiplier() float64 {
	if c.DefaultMultiplier > 0 {
		return c.DefaultMultiplier
	}
	return 1
}

// Matrix builds the quota matrix with the configured overrides applied
func (c *Config) Matrix() (*quota.Matrix, error) {
	return quota.BuildMatrix(c.QuotaMatrix)
}

// HTTPAddr returns the listen address of the HTTP API
func (c *Config) HTTPAddr() string {
	if c.HTTP.Addr != "" {
		return c.HTTP.Addr
	}
	return defaultHTTPAddr
}

// NextCallDate returns the first scheduled call date strictly after the given time.
// ok is false when no schedule is configured or the schedule has ended.
func (c *Config) NextCallDate(after time.Time) (next time.Time, ok bool, err error) {
	if c.CallSchedule == "" {
		return time.Time{}, false, nil
	}

	rule, err := rrule.StrToRRule(c.CallSchedule)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid rrule in callSchedule: %w", err)
	}

	next = rule.After(after, false)
	return next, !next.IsZero(), nil
}
