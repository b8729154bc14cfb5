package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DriveCount is the number of drive roots a deployment exposes.
const DriveCount = 4

// FileConfig is the deployment-time configuration loaded from YAML.
//
// It enumerates the drive roots exposed to users and the users seeded into
// the store on first start. Sources (in order of precedence):
//  1. Environment variables (DRIVEKEEP_*)
//  2. Configuration file (YAML)
type FileConfig struct {
	Drives []DriveConfig `mapstructure:"drives" validate:"required,dive"`
	Users  []SeedUser    `mapstructure:"users" validate:"dive"`
}

// DriveConfig maps a semantic drive label to a directory root on the host.
type DriveConfig struct {
	Label string `mapstructure:"label" validate:"required"`
	Root  string `mapstructure:"root" validate:"required"`
}

// SeedUser is a user created on first start if absent from the store.
// The password is hashed before it is persisted.
type SeedUser struct {
	Username string `mapstructure:"username" validate:"required,min=3,max=64"`
	Password string `mapstructure:"password" validate:"required,min=8"`
	Admin    bool   `mapstructure:"admin"`
}

var validate = validator.New()

// LoadFile reads and validates the drive registry file at path.
func LoadFile(path string) (*FileConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("DRIVEKEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read drives config: %w", err)
	}

	var cfg FileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse drives config: %w", err)
	}

	if err := ValidateFile(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateFile validates the file configuration using struct tags plus
// rules that cannot be expressed in tags.
func ValidateFile(cfg *FileConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if len(cfg.Drives) != DriveCount {
		return fmt.Errorf("drives: expected %d drive roots, got %d", DriveCount, len(cfg.Drives))
	}

	labels := make(map[string]bool, len(cfg.Drives))
	for i, d := range cfg.Drives {
		if strings.ContainsAny(d.Label, "/\\") {
			return fmt.Errorf("drives[%d]: label %q must not contain path separators", i, d.Label)
		}
		if labels[d.Label] {
			return fmt.Errorf("drives[%d]: duplicate label %q", i, d.Label)
		}
		labels[d.Label] = true
	}

	names := make(map[string]bool, len(cfg.Users))
	for i, u := range cfg.Users {
		if names[u.Username] {
			return fmt.Errorf("users[%d]: duplicate username %q", i, u.Username)
		}
		names[u.Username] = true
	}

	return nil
}

func formatValidationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		e := errs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
