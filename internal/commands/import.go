package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bunnyapp/bunny-cli/internal/accounts"
	"github.com/bunnyapp/bunny-cli/internal/batch"
	"github.com/bunnyapp/bunny-cli/internal/contacts"
	"github.com/bunnyapp/bunny-cli/internal/importer"
	"github.com/bunnyapp/bunny-cli/internal/mapper"
	"github.com/bunnyapp/bunny-cli/internal/outputlog"
	"github.com/bunnyapp/bunny-cli/internal/subscription"
)

func newImportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import records from a file",
	}
	cmd.AddCommand(
		newImportAccountsCommand(a),
		newImportContactsCommand(a),
		newImportSubscriptionsCommand(a),
		newImportProductsCommand(a),
		newImportMRRCommand(a),
	)
	return cmd
}

func newImportAccountsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts <file.csv>",
		Short: "Import accounts from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportAccounts(cmd.Context(), a, args[0])
		},
	}
}

func runImportAccounts(ctx context.Context, a *app, path string) error {
	t, err := importer.DefaultRegistry().ReadFile(path)
	if err != nil {
		return err
	}
	recs := accounts.Schema.Map(t)
	if len(recs) == 0 {
		return fmt.Errorf("no accounts found in %s", filepath.Base(path))
	}
	fmt.Fprintf(a.out, "Found %d accounts in %s\n", len(recs), filepath.Base(path))

	ok, err := a.confirm(fmt.Sprintf("Import %d accounts?", len(recs)))
	if err != nil || !ok {
		return errOrCancel(a, err)
	}

	c, err := a.profileClient(ctx, "")
	if err != nil {
		return err
	}
	res := batch.Run(ctx, recs, func(ctx context.Context, rec mapper.Record) (string, error) {
		acc, err := c.CreateAccount(ctx, rec.Attributes)
		if err != nil {
			return "", err
		}
		return acc.ID, nil
	}, batch.Options[mapper.Record]{
		Identify: func(_ int, rec mapper.Record) string { return accounts.Identifier(rec.Attributes) },
		Progress: a.progress("Importing accounts"),
		Log:      a.log,
	})
	batch.WriteSummary(a.out, res, "accounts")
	return res.Err()
}

func newImportContactsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "contacts <file.csv>",
		Short: "Import contacts from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportContacts(cmd.Context(), a, args[0])
		},
	}
}

func runImportContacts(ctx context.Context, a *app, path string) error {
	t, err := importer.DefaultRegistry().ReadFile(path)
	if err != nil {
		return err
	}
	valid, skipped := contacts.Prepare(contacts.Schema.Map(t))
	if len(skipped) > 0 {
		fmt.Fprintf(a.out, "Skipping %d contacts:\n", len(skipped))
		for _, s := range skipped {
			fmt.Fprintf(a.out, "  - %s: %s\n", s.Identifier, s.Reason)
			a.log.Warn().Int("row", s.Row).Str("record", s.Identifier).Str("reason", s.Reason).Msg("contact skipped")
		}
	}
	if len(valid) == 0 {
		return errors.New("no valid contacts to import")
	}
	fmt.Fprintf(a.out, "Found %d valid contacts in %s\n", len(valid), filepath.Base(path))

	ok, err := a.confirm(fmt.Sprintf("Import %d contacts?", len(valid)))
	if err != nil || !ok {
		return errOrCancel(a, err)
	}

	c, err := a.profileClient(ctx, "")
	if err != nil {
		return err
	}
	res := batch.Run(ctx, valid, func(ctx context.Context, rec mapper.Record) (string, error) {
		ct, err := c.CreateContact(ctx, rec.Attributes)
		if err != nil {
			return "", err
		}
		return ct.ID, nil
	}, batch.Options[mapper.Record]{
		Identify: func(_ int, rec mapper.Record) string { return contacts.Identifier(rec.Attributes) },
		Progress: a.progress("Importing contacts"),
		Log:      a.log,
	})
	batch.WriteSummary(a.out, res, "contacts")
	return res.Err()
}

func newImportSubscriptionsCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "subscriptions <file.csv>",
		Short: "Import subscriptions from a CSV file",
		Long: "Creates one subscription per row, creating accounts inline when needed.\n" +
			"Every row and its outcome is written to an output log as it is processed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportSubscriptions(cmd.Context(), a, args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output log path (default subscriptions_output_<timestamp>.csv)")
	return cmd
}

type subscriptionRow struct {
	n   int
	row importer.Row
}

func runImportSubscriptions(ctx context.Context, a *app, path, output string) error {
	reg := importer.DefaultRegistry()
	n, err := reg.CountFile(path)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no subscriptions found in %s", filepath.Base(path))
	}
	fmt.Fprintf(a.out, "Found %d subscriptions in %s\n", n, filepath.Base(path))

	ok, err := a.confirm(fmt.Sprintf("Import %d subscriptions?", n))
	if err != nil || !ok {
		return errOrCancel(a, err)
	}

	t, err := reg.ReadFile(path)
	if err != nil {
		return err
	}
	c, err := a.profileClient(ctx, "")
	if err != nil {
		return err
	}

	if output == "" {
		output = outputlog.FileName(time.Now())
	}
	olog, err := outputlog.Create(output, t.Header)
	if err != nil {
		return err
	}
	defer olog.Close()

	rows := make([]subscriptionRow, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = subscriptionRow{n: i + 1, row: r}
	}
	accountIDs := make([]string, len(rows)+1)

	b := subscription.NewBuilder()
	res := batch.Run(ctx, rows, func(ctx context.Context, r subscriptionRow) (string, error) {
		attrs, err := b.Build(r.row)
		if err != nil {
			return "", err
		}
		sub, err := c.CreateSubscription(ctx, attrs)
		if err != nil {
			return "", err
		}
		accountIDs[r.n] = sub.Account.ID
		if src := r.row.Trimmed(subscription.ColAccountID); src != "" && attrs.AccountID == "" {
			b.Cache.Store(src, sub.Account.ID)
		}
		return sub.ID, nil
	}, batch.Options[subscriptionRow]{
		Identify: func(_ int, r subscriptionRow) string { return subscription.Identifier(r.row, r.n) },
		Progress: a.progress("Importing subscriptions"),
		OnResult: func(_ int, r subscriptionRow, rr batch.RecordResult) {
			err := olog.Append(outputlog.Entry{
				Row:            t.Record(r.row),
				AccountID:      accountIDs[r.n],
				SubscriptionID: rr.Ref,
				Success:        rr.Success,
			})
			if err != nil {
				a.log.Error().Err(err).Str("path", olog.Path()).Msg("writing output log")
			}
		},
		Log: a.log,
	})

	batch.WriteSummary(a.out, res, "subscriptions")
	fmt.Fprintf(a.out, "Output log: %s\n", olog.Path())
	return res.Err()
}

func newImportProductsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "products <file.json>",
		Short: "Import products from a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportProducts(cmd.Context(), a, args[0])
		},
	}
}

func runImportProducts(ctx context.Context, a *app, path string) error {
	doc, err := importer.ReadDocument(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Found %d products in %s\n", len(doc.Products), filepath.Base(path))

	ok, err := a.confirm(fmt.Sprintf("Import %d products?", len(doc.Products)))
	if err != nil || !ok {
		return errOrCancel(a, err)
	}

	c, err := a.profileClient(ctx, "")
	if err != nil {
		return err
	}
	res := batch.Run(ctx, doc.Products, func(ctx context.Context, p importer.Product) (string, error) {
		resp, err := c.ImportRawProduct(ctx, p.Raw)
		if err != nil {
			return "", err
		}
		return resp.Status, nil
	}, batch.Options[importer.Product]{
		Identify: func(_ int, p importer.Product) string { return p.Name },
		Progress: a.progress("Importing products"),
		Log:      a.log,
	})
	batch.WriteSummary(a.out, res, "products")
	return res.Err()
}

func newImportMRRCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mrr <file.csv>",
		Short: "Import legacy recurring revenue from a CSV file",
		Long:  "Sends the file as-is to the legacy recurring revenue import.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportMRR(cmd.Context(), a, args[0])
		},
	}
}

func runImportMRR(ctx context.Context, a *app, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	n, err := importer.DefaultRegistry().CountFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Found %d recurring revenue rows in %s\n", n, filepath.Base(path))

	ok, err := a.confirm("Import recurring revenue?")
	if err != nil || !ok {
		return errOrCancel(a, err)
	}

	c, err := a.profileClient(ctx, "")
	if err != nil {
		return err
	}
	if err := c.ImportRecurringRevenue(ctx, string(data)); err != nil {
		return fmt.Errorf("importing recurring revenue: %s", batch.ErrorMessage(err))
	}
	fmt.Fprintln(a.out, "Recurring revenue import submitted")
	return nil
}

// errOrCancel returns err, or reports cancellation when the answer was no.
func errOrCancel(a *app, err error) error {
	if err != nil {
		return err
	}
	return a.cancelled()
}
