package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bunnyapp/bunny-cli/internal/bootstrap"
	"github.com/bunnyapp/bunny-cli/internal/buildinfo"
)

func newBootstrapCommand(a *app) *cobra.Command {
	var domain, entity string

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Brand an entity from its company website",
		Long: "Scrapes the website, asks the profile's LLM provider for a logo and brand\n" +
			"colors, rewrites the entity's email template, then uploads the logo and\n" +
			"updates the entity.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBootstrap(cmd.Context(), a, domain, entity)
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "company website, e.g. acme.com (required)")
	cmd.Flags().StringVar(&entity, "entity", "", "id or name of the entity to brand")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func runBootstrap(ctx context.Context, a *app, domain, entity string) error {
	p, err := a.loadProfile("")
	if err != nil {
		return err
	}
	if p.LLMProvider == "" {
		return fmt.Errorf("profile %q has no LLM provider (run `bunny configure --llm-provider openai|anthropic --llm-api-key ...`)", a.profile)
	}
	llm, err := bootstrap.NewLLM(bootstrap.LLMOptions{Provider: p.LLMProvider, APIKey: p.LLMAPIKey})
	if err != nil {
		return err
	}

	svc := &bootstrap.Service{
		HTTP:      a.httpClient(),
		LLM:       llm,
		Platform:  a.client(ctx, p),
		UserAgent: buildinfo.UserAgent(),
		Log:       a.log,
	}

	fmt.Fprintf(a.out, "Analyzing %s with %s...\n", domain, p.LLMProvider)
	plan, err := svc.Prepare(ctx, domain, entity)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	plan.WritePreview(a.out)

	ok, err := a.confirm("Apply these changes?")
	if err != nil || !ok {
		return errOrCancel(a, err)
	}
	if err := svc.Apply(ctx, plan); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Branding applied to %s\n", plan.Entity.Name)
	return nil
}
