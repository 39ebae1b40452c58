package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bunnyapp/bunny-cli/internal/config"
)

func newConfigureCommand(a *app) *cobra.Command {
	var p config.Profile

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Create or update a profile",
		Long: "Stores instance credentials under a profile. Flags left unset keep the\n" +
			"profile's current values.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigure(a, p)
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.BaseURL, "base-url", "", "instance URL, e.g. https://acme.bunny.com")
	f.StringVar(&p.ClientID, "client-id", "", "API client id")
	f.StringVar(&p.ClientSecret, "client-secret", "", "API client secret")
	f.StringVar(&p.Scope, "scope", "", "space separated OAuth scopes")
	f.StringVar(&p.StripeSecretKey, "stripe-secret-key", "", "Stripe secret or restricted key for migrations")
	f.StringVar(&p.LLMProvider, "llm-provider", "", "LLM provider for bootstrap (openai or anthropic)")
	f.StringVar(&p.LLMAPIKey, "llm-api-key", "", "LLM API key for bootstrap")

	return cmd
}

func runConfigure(a *app, in config.Profile) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	p := cfg.Profiles[a.profile]
	merge(&p.BaseURL, in.BaseURL)
	merge(&p.ClientID, in.ClientID)
	merge(&p.ClientSecret, in.ClientSecret)
	merge(&p.Scope, in.Scope)
	merge(&p.StripeSecretKey, in.StripeSecretKey)
	merge(&p.LLMProvider, in.LLMProvider)
	merge(&p.LLMAPIKey, in.LLMAPIKey)

	if err := cfg.SetProfile(a.profile, p); err != nil {
		return err
	}
	if err := config.Save(a.env.ConfigPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved profile %q to %s\n", a.profile, a.env.ConfigPath)
	return nil
}

func merge(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func newProfilesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage saved profiles",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List profiles",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runProfilesList(a)
			},
		},
		&cobra.Command{
			Use:   "inspect",
			Short: "Show a profile with secrets masked",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runProfilesInspect(a)
			},
		},
		&cobra.Command{
			Use:   "remove",
			Short: "Delete a profile",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runProfilesRemove(a)
			},
		},
	)
	return cmd
}

func runProfilesList(a *app) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	names := cfg.Names()
	if len(names) == 0 {
		fmt.Fprintln(a.out, "No profiles configured. Run `bunny configure` to add one.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBASE URL")
	for _, n := range names {
		fmt.Fprintf(tw, "%s\t%s\n", n, cfg.Profiles[n].BaseURL)
	}
	return tw.Flush()
}

func runProfilesInspect(a *app) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	p, err := cfg.Profile(a.profile)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Profile:\t%s\n", a.profile)
	fmt.Fprintf(tw, "Base URL:\t%s\n", p.BaseURL)
	fmt.Fprintf(tw, "Client ID:\t%s\n", p.ClientID)
	fmt.Fprintf(tw, "Client secret:\t%s\n", config.Mask(p.ClientSecret))
	fmt.Fprintf(tw, "Scopes:\t%s\n", orNone(p.Scope))
	fmt.Fprintf(tw, "Stripe key:\t%s\n", orNone(config.Mask(p.StripeSecretKey)))
	fmt.Fprintf(tw, "LLM provider:\t%s\n", orNone(p.LLMProvider))
	fmt.Fprintf(tw, "LLM API key:\t%s\n", orNone(config.Mask(p.LLMAPIKey)))
	return tw.Flush()
}

func runProfilesRemove(a *app) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RemoveProfile(a.profile); err != nil {
		return err
	}
	if err := config.Save(a.env.ConfigPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed profile %q\n", a.profile)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
