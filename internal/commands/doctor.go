package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bunnyapp/bunny-cli/internal/stripedata"
)

func newDoctorCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check a profile's connectivity and credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(a, cmd)
		},
	}
}

func runDoctor(a *app, cmd *cobra.Command) error {
	p, err := a.loadProfile("")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile %q: %s\n", a.profile, p.BaseURL)

	if err := a.client(cmd.Context(), p).Ping(cmd.Context()); err != nil {
		return fmt.Errorf("connecting to %s: %w", p.BaseURL, err)
	}
	fmt.Fprintln(a.out, "  API:     ok")

	if p.StripeSecretKey != "" {
		mode, err := stripedata.ValidateKey(p.StripeSecretKey)
		if err != nil {
			fmt.Fprintf(a.out, "  Stripe:  %v\n", err)
		} else {
			fmt.Fprintf(a.out, "  Stripe:  key configured (%s mode)\n", mode)
		}
	}
	if p.LLMProvider != "" {
		fmt.Fprintf(a.out, "  LLM:     %s\n", p.LLMProvider)
	}
	return nil
}
