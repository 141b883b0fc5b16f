package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/weixin008/dutyroster/pkg/core/calendar"
)

// BusinessRules configures the built-in business-rule registry
type BusinessRules struct {
	// SupervisorMaxLevel marks levels at or below it as supervisory
	SupervisorMaxLevel int `yaml:"supervisorMaxLevel,omitempty" validate:"omitempty,min=1"`

	// MinStaffRoles/MinStaffCount require a minimum head count across the
	// named role categories
	MinStaffRoles []string `yaml:"minStaffRoles,omitempty"`
	MinStaffCount int      `yaml:"minStaffCount,omitempty" validate:"omitempty,min=1"`

	MaxConsecutiveDays int `yaml:"maxConsecutiveDays,omitempty" validate:"omitempty,min=1"`
	MinRestHours       int `yaml:"minRestHours,omitempty" validate:"omitempty,min=1"`

	// EnforceGroupIntegrity enables the critical full-group rule
	EnforceGroupIntegrity bool `yaml:"enforceGroupIntegrity,omitempty"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// OrgType scopes which business rules apply; defaults to general
	OrgType string `yaml:"orgType,omitempty"`

	// HolidayRules are RRULE strings; dates they produce are skipped by
	// the generator
	HolidayRules []string `yaml:"holidayRules,omitempty"`

	BusinessRules BusinessRules `yaml:"businessRules,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from dutyroster.yaml.
// It looks for the config file in the current directory first, then in the
// user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	if cfg.OrgType == "" {
		cfg.OrgType = "general"
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, rule := range cfg.HolidayRules {
		if _, err := rrule.StrToRRule(rule); err != nil {
			return fmt.Errorf("invalid rrule in holidayRules[%d]: %w", i, err)
		}
	}

	return nil
}

// HolidaySkipper builds the generator's skip predicate from the configured
// holiday rules, expanded over [start, end]
func (c *Config) HolidaySkipper(start, end time.Time) (func(time.Time) bool, error) {
	holidays := make(map[string]bool)

	for i, ruleStr := range c.HolidayRules {
		r, err := rrule.StrToRRule(ruleStr)
		if err != nil {
			return nil, fmt.Errorf("invalid rrule in holidayRules[%d]: %w", i, err)
		}
		// Anchor the recurrence at the window start; without this the rule
		// defaults its DTSTART to now and produces nothing for past windows
		r.DTStart(calendar.Midnight(start))
		for _, d := range r.Between(calendar.Midnight(start), calendar.Midnight(end), true) {
			holidays[calendar.DateKey(d)] = true
		}
	}

	return func(date time.Time) bool {
		return holidays[calendar.DateKey(date)]
	}, nil
}

// findConfigFile searches for dutyroster.yaml in current directory and home
// directory
func findConfigFile() (string, error) {
	configFileName := "dutyroster.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
