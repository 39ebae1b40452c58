package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bunnyapp/bunny-cli/internal/batch"
	"github.com/bunnyapp/bunny-cli/internal/model"
	"github.com/bunnyapp/bunny-cli/internal/platform"
	"github.com/bunnyapp/bunny-cli/internal/scratch"
	"github.com/bunnyapp/bunny-cli/internal/stripedata"
	"github.com/bunnyapp/bunny-cli/internal/transform"
)

// Scratch artifact names.
const (
	stripeProductsFile      = "stripe_products.json"
	bunnyProductsFile       = "bunny_products.json"
	stripeSubscriptionsFile = "stripe_subscriptions.json"
	bunnySubscriptionsFile  = "bunny_subscriptions.json"
)

func newMigrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate data from another Bunny instance or Stripe",
	}

	stripeCmd := &cobra.Command{
		Use:   "stripe",
		Short: "Migrate from Stripe",
	}
	stripeCmd.AddCommand(
		&cobra.Command{
			Use:   "products",
			Short: "Migrate active Stripe products and prices",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrateStripeProducts(cmd.Context(), a)
			},
		},
		&cobra.Command{
			Use:   "subscriptions",
			Short: "Migrate active Stripe subscriptions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrateStripeSubscriptions(cmd.Context(), a)
			},
		},
	)

	cmd.AddCommand(newMigrateBunnyCommand(a), stripeCmd)
	return cmd
}

func newMigrateBunnyCommand(a *app) *cobra.Command {
	var source, product string

	cmd := &cobra.Command{
		Use:   "bunny",
		Short: "Copy a product from one Bunny instance to another",
		Long: "Copies a product with its features, plans, price lists and charges from\n" +
			"the --source-profile instance into the --profile instance.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateBunny(cmd.Context(), a, source, product)
		},
	}
	cmd.Flags().StringVar(&source, "source-profile", "", "profile of the instance to copy from (required)")
	cmd.Flags().StringVar(&product, "product", "", "code or id of the product to copy")
	_ = cmd.MarkFlagRequired("source-profile")
	return cmd
}

func runMigrateBunny(ctx context.Context, a *app, source, product string) error {
	if source == a.profile {
		return errors.New("source and destination profiles must differ")
	}
	src, err := a.profileClient(ctx, source)
	if err != nil {
		return err
	}
	dst, err := a.profileClient(ctx, "")
	if err != nil {
		return err
	}

	products, err := src.AllProducts(ctx)
	if err != nil {
		return fmt.Errorf("listing source products: %w", err)
	}
	if len(products) == 0 {
		return fmt.Errorf("no products found in %s", src.BaseURL())
	}
	var match *platform.ProductSummary
	for i := range products {
		if product != "" && (products[i].ID == product || strings.EqualFold(products[i].Code, product)) {
			match = &products[i]
			break
		}
	}
	if match == nil {
		writeProducts(a.out, products)
		if product == "" {
			return errors.New("choose a product with --product")
		}
		return fmt.Errorf("product %q not found in %s", product, src.BaseURL())
	}

	graph, err := src.Product(ctx, match.ID, "")
	if err != nil {
		return fmt.Errorf("fetching product %s: %w", match.Code, err)
	}
	a.log.Debug().Interface("product", graph).Msg("fetched source product")

	platformID := ""
	if graph.PlatformID == "" {
		plat, err := dst.DefaultPlatform(ctx)
		if err != nil {
			return err
		}
		platformID = plat.ID
	}
	doc := transform.FromInstance(graph, platformID)

	fmt.Fprintf(a.out, "Copying %q (%d plans, %d price lists) from %s to %s\n",
		graph.Name, len(doc.Products[0].Plans), countPriceLists(doc), src.BaseURL(), dst.BaseURL())
	ok, err := a.confirm("Proceed?")
	if err != nil || !ok {
		return errOrCancel(a, err)
	}

	if _, err := dst.ImportProducts(ctx, doc); err != nil {
		return fmt.Errorf("importing product: %s", batch.ErrorMessage(err))
	}
	fmt.Fprintf(a.out, "Product %q migrated successfully\n", graph.Name)
	return nil
}

func writeProducts(w io.Writer, products []platform.ProductSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Code, p.Name)
	}
	_ = tw.Flush()
}

func countPriceLists(doc model.ImportDocument) int {
	n := 0
	for _, p := range doc.Products {
		for _, pl := range p.Plans {
			n += len(pl.PriceLists)
		}
	}
	return n
}

// stripeRun holds what both Stripe migrations need up front.
type stripeRun struct {
	fetcher *stripedata.Fetcher
	client  *platform.Client
	dir     *scratch.Dir
}

func (a *app) startStripeRun(ctx context.Context) (*stripeRun, error) {
	p, err := a.loadProfile("")
	if err != nil {
		return nil, err
	}
	if p.StripeSecretKey == "" {
		return nil, fmt.Errorf("profile %q has no Stripe key (run `bunny configure --stripe-secret-key`)", a.profile)
	}
	f, err := stripedata.NewFetcher(p.StripeSecretKey, a.log)
	if err != nil {
		return nil, err
	}
	if f.Mode() == stripedata.ModeLive {
		a.log.Warn().Msg("using a live Stripe key")
	}
	dir, err := scratch.New(a.env.ScratchDir)
	if err != nil {
		return nil, err
	}
	a.log.Debug().Str("run_id", dir.RunID).Str("path", dir.Path).Msg("scratch directory")
	return &stripeRun{fetcher: f, client: a.client(ctx, p), dir: dir}, nil
}

// finish removes the scratch directory unless the run failed or is verbose.
func (a *app) finishStripeRun(r *stripeRun, err error) error {
	kept, rmErr := r.dir.Finish(err, a.verbose)
	if rmErr != nil {
		a.log.Warn().Err(rmErr).Msg("cleaning up")
	}
	if kept {
		fmt.Fprintf(a.errOut, "Migration files kept in %s\n", r.dir.Path)
	}
	return err
}

func (a *app) writeArtifact(r *stripeRun, name string, v any) error {
	path, err := r.dir.WriteJSON(name, v)
	if err != nil {
		return err
	}
	a.log.Debug().Str("path", path).Msg("wrote artifact")
	return nil
}

func (a *app) reportSkips(noun string, skips []transform.Skip) {
	if len(skips) == 0 {
		return
	}
	fmt.Fprintf(a.out, "Skipping %d %s:\n", len(skips), noun)
	for _, s := range skips {
		fmt.Fprintf(a.out, "  - %s: %s\n", s.Record, s.Reason)
	}
}

func runMigrateStripeProducts(ctx context.Context, a *app) (err error) {
	r, err := a.startStripeRun(ctx)
	if err != nil {
		return err
	}
	defer func() { err = a.finishStripeRun(r, err) }()

	plat, err := r.client.DefaultPlatform(ctx)
	if err != nil {
		return err
	}

	cat, err := r.fetcher.Catalog(ctx)
	if err != nil {
		return err
	}
	if err := a.writeArtifact(r, stripeProductsFile, cat); err != nil {
		return err
	}

	doc, skips := transform.FromStripeCatalog(cat, plat.ID, a.log)
	if err := a.writeArtifact(r, bunnyProductsFile, doc); err != nil {
		return err
	}
	a.reportSkips("prices", skips)

	product := doc.Products[0]
	fmt.Fprintf(a.out, "Prepared %q with %d features, %d plans and %d price lists for platform %s\n",
		product.Name, len(product.Features), len(product.Plans), countPriceLists(doc), plat.Name)
	if len(product.Plans) == 0 {
		fmt.Fprintln(a.out, "Nothing to migrate.")
		return nil
	}

	ok, err := a.confirm("Import into Bunny?")
	if err != nil || !ok {
		return errOrCancel(a, err)
	}
	if _, err := r.client.ImportProducts(ctx, doc); err != nil {
		return fmt.Errorf("importing products: %s", batch.ErrorMessage(err))
	}
	fmt.Fprintln(a.out, "Stripe products migrated successfully")
	return nil
}

func runMigrateStripeSubscriptions(ctx context.Context, a *app) (err error) {
	r, err := a.startStripeRun(ctx)
	if err != nil {
		return err
	}
	defer func() { err = a.finishStripeRun(r, err) }()

	set, err := r.fetcher.Subscriptions(ctx)
	if err != nil {
		return err
	}
	if err := a.writeArtifact(r, stripeSubscriptionsFile, set); err != nil {
		return err
	}

	records, skips := transform.FromStripeSubscriptions(set, time.Now(), a.log)
	if err := a.writeArtifact(r, bunnySubscriptionsFile, records); err != nil {
		return err
	}
	a.reportSkips("subscriptions", skips)

	if len(records) == 0 {
		fmt.Fprintln(a.out, "Nothing to migrate.")
		return nil
	}
	fmt.Fprintf(a.out, "Prepared %d subscriptions from %d Stripe subscriptions\n", len(records), len(set.Subscriptions))

	ok, err := a.confirm(fmt.Sprintf("Import %d subscriptions into Bunny?", len(records)))
	if err != nil || !ok {
		return errOrCancel(a, err)
	}

	res := batch.Run(ctx, records, func(ctx context.Context, rec transform.SubscriptionRecord) (string, error) {
		sub, err := r.client.CreateSubscription(ctx, rec.Attributes)
		if err != nil {
			return "", err
		}
		return sub.ID, nil
	}, batch.Options[transform.SubscriptionRecord]{
		Identify: func(_ int, rec transform.SubscriptionRecord) string { return rec.SourceID },
		Progress: a.progress("Importing subscriptions"),
		Log:      a.log,
	})
	batch.WriteSummary(a.out, res, "subscriptions")
	return res.Err()
}
