// Package commands implements the CLI command structure using Cobra.
package commands

import (
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/petal-labs/mistral"
	"github.com/petal-labs/mistral/cli/config"
	"github.com/petal-labs/mistral/cli/keystore"
)

// ConfigLoader loads CLI config from a path.
type ConfigLoader func(path string) (*config.Config, error)

// ClientFactory creates an API client for the given key and config.
type ClientFactory func(apiKey string, cfg *config.Config) *mistral.Client

// KeystoreFactory creates a keystore instance.
type KeystoreFactory func() (keystore.Keystore, error)

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	loadConfig  ConfigLoader
	newClient   ClientFactory
	newKeystore KeystoreFactory
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer

	cfgFile    string
	model      string
	jsonOutput bool
	verbose    bool
	cfg        *config.Config

	chatPrompt      string
	chatSystem      string
	chatTemperature float64
	chatMaxTokens   int
	chatStream      bool
	chatSafePrompt  bool

	transcribeURL        string
	transcribeLanguage   string
	transcribeTimestamps bool
	transcribeDiarize    bool
	transcribeStream     bool

	modelsRemote bool

	initModel string
}

// WithConfigLoader injects a config loader dependency.
func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

// WithClientFactory injects a client factory dependency.
func WithClientFactory(factory ClientFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newClient = factory
		}
	}
}

// WithKeystoreFactory injects a keystore factory dependency.
func WithKeystoreFactory(factory KeystoreFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newKeystore = factory
		}
	}
}

// WithIO injects process I/O streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// NewApp creates a new CLI app with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig:  config.LoadConfig,
		newClient:   defaultClientFactory,
		newKeystore: keystore.NewKeystore,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.root = a.newRootCommand()
	return a
}

// defaultClientFactory builds a client honoring the config's base URL.
func defaultClientFactory(apiKey string, cfg *config.Config) *mistral.Client {
	var opts []mistral.Option
	if cfg != nil && cfg.BaseURL != "" {
		opts = append(opts, mistral.WithBaseURL(cfg.BaseURL))
	}
	return mistral.New(apiKey, opts...)
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mistral",
		Short: "Mistral - CLI for the Mistral AI platform",
		Long: `Mistral is a command-line interface for the Mistral AI platform.

Use it to manage API keys, chat with models, and transcribe audio.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		SilenceUsage: true,
	}

	// Global flags available to all commands.
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.mistral/config.yaml)")
	root.PersistentFlags().StringVar(&a.model, "model", "", "model ID (e.g. mistral-small-latest)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit JSON output")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(a.newChatCommand())
	root.AddCommand(a.newTranscribeCommand())
	root.AddCommand(a.newModelsCommand())
	root.AddCommand(a.newKeysCommand())
	root.AddCommand(a.newInitCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// Execute runs the root command.
func (a *App) Execute() error {
	return a.root.Execute()
}

func (a *App) initConfig() error {
	// A local .env can supply MISTRAL_API_KEY during development.
	// Missing files are fine.
	_ = godotenv.Load()

	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := a.loadConfig(path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Apply config default if the flag is not set.
	if a.model == "" && cfg.DefaultModel != "" {
		a.model = cfg.DefaultModel
	}

	return nil
}

// resolveAPIKey finds the API key: environment first, then the keystore.
func (a *App) resolveAPIKey() (string, error) {
	if key := os.Getenv(mistral.DefaultAPIKeyEnvVar); key != "" {
		return key, nil
	}

	ks, err := a.newKeystore()
	if err != nil {
		return "", err
	}

	name := "default"
	if a.cfg != nil && a.cfg.KeyName != "" {
		name = a.cfg.KeyName
	}
	return ks.Get(name)
}

var defaultApp = NewApp()

// Execute runs the default app root command.
func Execute() error {
	return defaultApp.Execute()
}
