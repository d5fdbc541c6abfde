package config

import (
	"fmt"
	"net/url"
)

const (
	DefaultLoginURL      = "https://alpha.c930.net/api/users/login"
	DefaultVariablesPath = "integration-tests/variables.yaml"
	DefaultAccounts      = 2
)

// Config represents the configuration of a refresh run
type Config struct {
	LoginURL      string // Full URL of the login endpoint
	VariablesPath string // Path of the YAML variables file shared with the integration tests
	Accounts      int    // Number of accounts to refresh, numbered from 1
}

// Default returns the configuration used by the integration-test pipeline.
func Default() Config {
	return Config{
		LoginURL:      DefaultLoginURL,
		VariablesPath: DefaultVariablesPath,
		Accounts:      DefaultAccounts,
	}
}

// Validate the Config making sure all required fields are present and valid
func (c Config) Validate() error {
	if c.LoginURL == "" {
		return fmt.Errorf("login URL is required")
	}

	u, err := url.ParseRequestURI(c.LoginURL)
	if err != nil {
		return fmt.Errorf("could not parse login URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("login URL must use http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("login URL must include a host")
	}

	if c.VariablesPath == "" {
		return fmt.Errorf("variables file path is required")
	}

	if c.Accounts < 1 {
		return fmt.Errorf("at least one account is required")
	}

	return nil
}
