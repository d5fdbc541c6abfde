package cmd

import (
	"github.com/spf13/viper"

	"github.com/wwi21seb-projekt/alpha-services/internal/config"
)

const (
	defaultLoginURL      = config.DefaultLoginURL
	defaultVariablesPath = config.DefaultVariablesPath
	defaultAccounts      = config.DefaultAccounts
)

// LoadConfigFromCLI loads the Config from the CLI flags, the environment and the optional config file
func LoadConfigFromCLI() config.Config {
	return config.Config{
		LoginURL:      viper.GetString("url"),
		VariablesPath: viper.GetString("variables"),
		Accounts:      viper.GetInt("accounts"),
	}
}
