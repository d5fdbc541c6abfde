package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wwi21seb-projekt/alpha-services/internal/auth"
	"github.com/wwi21seb-projekt/alpha-services/internal/refresher"
	"github.com/wwi21seb-projekt/alpha-services/internal/utils"
	"github.com/wwi21seb-projekt/alpha-services/internal/variables"
)

// SuccessMessage is printed on stdout once every token has been written.
const SuccessMessage = "JWT tokens updated successfully."

// Design notes:
// - The variables file belongs to the integration-test suite. It must exist, it is never created or deleted here
// - Accounts are refreshed one after the other: load credentials -> login 1 -> write jwt1 -> login 2 -> write jwt2
// - The first error stops the run. Tokens already written stay in the file
// - Each login is a single POST, no retry
var rootCmd = &cobra.Command{
	Use:   "jwt-refresher",
	Short: "Refresh the JWTs of the integration-test accounts",
	Long: `Log in every integration-test account and store its JWT in the shared variables file.

The credentials are read from the 'username<N>' and 'password<N>' keys of the variables file.
The token returned by the login endpoint is written back under 'jwt<N>'. Every other key is kept as-is.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: RootCmdPersistentPreRunE,
	RunE:              RootCmdRunE,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

var (
	validLogLevels = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	validLogLevelsStr = strings.Join(utils.SortedKeys(validLogLevels), "|")
)

func init() {
	SetupRootCmdFlags(rootCmd)

	viper.AddConfigPath("./")
	viper.SetConfigName("refresher")

	viper.SetEnvPrefix("refresher")
	viper.AutomaticEnv()
}

func SetupRootCmdFlags(command *cobra.Command) {
	command.PersistentFlags().StringP("logLevel", "l", "info", fmt.Sprintf("set log level (%s)", validLogLevelsStr))
	if err := viper.BindPFlag("logLevel", command.PersistentFlags().Lookup("logLevel")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}

	command.PersistentFlags().StringP("url", "u", defaultLoginURL, "URL of the login endpoint")
	if err := viper.BindPFlag("url", command.PersistentFlags().Lookup("url")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}

	command.PersistentFlags().StringP("variables", "f", defaultVariablesPath, "Path of the YAML variables file")
	if err := viper.BindPFlag("variables", command.PersistentFlags().Lookup("variables")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}

	command.PersistentFlags().IntP("accounts", "n", defaultAccounts, "Number of accounts to refresh")
	if err := viper.BindPFlag("accounts", command.PersistentFlags().Lookup("accounts")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}
}

func RootCmdPersistentPreRunE(cmd *cobra.Command, args []string) error {
	if err := readConfigFile(); err != nil {
		return err
	}

	logLevelArg := viper.GetString("logLevel")
	if err := setLogLevel(logLevelArg); err != nil {
		return err
	}

	if file := viper.ConfigFileUsed(); file != "" {
		slog.Debug("Using config file", "file", file)
	}
	slog.Debug("Application initialized", "logLevel", logLevelArg, "url", viper.GetString("url"))

	return nil
}

func RootCmdRunE(cmd *cobra.Command, args []string) error {
	config := LoadConfigFromCLI()
	slog.Debug("args", "config", config)
	if err := config.Validate(); err != nil {
		return err
	}

	client := CreateRestClient(cmd.Context())
	fetcher := auth.NewClient(config.LoginURL, client)
	store := variables.NewOsStore(config.VariablesPath)

	if err := refresher.New(config, fetcher, store).Run(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), SuccessMessage)
	return nil
}

// readConfigFile loads the optional refresher.{yaml,json,toml} from the working directory
func readConfigFile() error {
	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}

	return fmt.Errorf("could not read config file: %w", err)
}

// setLogLevel installs a JSON logger on stderr with the given level
func setLogLevel(logLevel string) error {
	level, exists := validLogLevels[logLevel]
	if !exists {
		return fmt.Errorf("invalid log level: %s. Valid log levels are: %s", logLevel, validLogLevelsStr)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})).With("run", uuid.NewString())
	slog.SetDefault(logger)

	return nil
}
