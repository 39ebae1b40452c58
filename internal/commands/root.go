package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bunnyapp/bunny-cli/internal/buildinfo"
	"github.com/bunnyapp/bunny-cli/internal/config"
	"github.com/bunnyapp/bunny-cli/internal/logging"
	"github.com/bunnyapp/bunny-cli/internal/platform"
)

// app carries the global flags and per-invocation state shared by every
// subcommand. It is populated in the root PersistentPreRunE.
type app struct {
	profile string
	verbose bool
	yes     bool
	unsafe  bool

	env config.Env
	log zerolog.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{in: os.Stdin, out: os.Stdout, errOut: os.Stderr, log: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:     "bunny",
		Short:   "Import and migrate billing data into Bunny",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.in = cmd.InOrStdin()
			a.out = cmd.OutOrStdout()
			a.errOut = cmd.ErrOrStderr()
			return a.setup()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.profile, "profile", "", "profile to use (default \"default\" or $BUNNY_PROFILE)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging and keep migration artifacts")
	flags.BoolVarP(&a.yes, "yes", "y", false, "skip confirmation prompts")
	flags.BoolVar(&a.unsafe, "unsafe", false, "skip TLS certificate verification")

	rootCmd.AddCommand(
		newConfigureCommand(a),
		newProfilesCommand(a),
		newDoctorCommand(a),
		newImportCommand(a),
		newMigrateCommand(a),
		newBootstrapCommand(a),
	)

	return rootCmd
}

func (a *app) setup() error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	a.env = env
	if a.profile == "" {
		a.profile = env.Profile
	}

	level := logging.ParseLevel(env.LogLevel)
	if a.verbose {
		level = zerolog.DebugLevel
	}
	a.log = logging.New(logging.Options{
		Level:  level,
		Format: logging.ParseFormat(env.LogFormat),
		Output: a.errOut,
	})
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	return config.Load(a.env.ConfigPath)
}

// loadProfile reads and validates the named profile, or the selected one
// when name is empty.
func (a *app) loadProfile(name string) (config.Profile, error) {
	if name == "" {
		name = a.profile
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return config.Profile{}, err
	}
	p, err := cfg.Profile(name)
	if err != nil {
		return config.Profile{}, err
	}
	if err := p.Validate(); err != nil {
		return config.Profile{}, fmt.Errorf("profile %q: %w", name, err)
	}
	return p, nil
}

func (a *app) client(ctx context.Context, p config.Profile) *platform.Client {
	return platform.New(ctx, platform.Options{
		BaseURL:      p.BaseURL,
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Scopes:       p.Scopes(),
		Timeout:      a.env.HTTPTimeout,
		Insecure:     a.unsafe,
		Log:          a.log,
	})
}

// profileClient loads a profile and returns a client for it.
func (a *app) profileClient(ctx context.Context, name string) (*platform.Client, error) {
	p, err := a.loadProfile(name)
	if err != nil {
		return nil, err
	}
	return a.client(ctx, p), nil
}

func (a *app) httpClient() *http.Client {
	return &http.Client{Timeout: a.env.HTTPTimeout}
}
