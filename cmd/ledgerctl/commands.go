package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"finledger/internal/cli"
	"finledger/internal/core"
	"finledger/internal/export"
	apphttp "finledger/internal/http"
	"finledger/internal/ledger"
	"finledger/internal/log"
	"finledger/internal/record"
	"finledger/internal/services"
)

// session is what every subcommand works on.
type session struct {
	ledger   *services.LedgerService
	exporter *export.Exporter
	close    func() error
}

type opener func(ctx context.Context) (*session, error)

func openFromEnv(ctx context.Context) (*session, error) {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, err
	}
	// keep stdout for command output
	logger := cli.SetupLoggerTo(os.Stderr, log.ComponentCLI, cfg.LogLevel)

	res, err := cli.OpenLedger(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}
	loc, _ := cfg.Location()
	return &session{
		ledger:   res.Ledger,
		exporter: export.New(record.Codec{Location: loc}),
		close:    res.Cleanup,
	}, nil
}

// newRootCmd builds the command tree. The returned func closes whatever
// session a command opened; cobra skips post-run hooks when RunE fails, so
// callers release it through execute instead.
func newRootCmd(open opener) (*cobra.Command, func() error) {
	var sess *session
	closeSession := func() error {
		s := sess
		sess = nil
		if s == nil || s.close == nil {
			return nil
		}
		return s.close()
	}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Record and report personal income, expenses and savings",
		Long: `ledgerctl works on the same ledger as the finledger server: it appends
transactions, lists and summarises them, and exports them as CSV or XML.
Configuration comes from the environment (and .env) exactly as for the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context())
			if err != nil {
				return err
			}
			sess = s
			return nil
		},
	}
	get := func() *session { return sess }

	root.AddCommand(
		newAddCmd(get),
		newListCmd(get),
		newSummaryCmd(get),
		newExportCmd(get),
		newClearCmd(get),
	)
	return root, closeSession
}

// execute runs cmd and always closes the session, reporting the command
// error first.
func execute(ctx context.Context, cmd *cobra.Command, closeSession func() error) error {
	err := cmd.ExecuteContext(ctx)
	if cerr := closeSession(); cerr != nil && err == nil {
		err = fmt.Errorf("close ledger: %w", cerr)
	}
	return err
}

func addRangeFlags(cmd *cobra.Command, from, to *string) {
	cmd.Flags().StringVar(from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(to, "to", "", "last day to include (YYYY-MM-DD)")
}

func parseRange(from, to string) (ledger.DateRange, error) {
	return apphttp.ParseRange(map[string][]string{"from": {from}, "to": {to}})
}

func newAddCmd(get func() *session) *cobra.Command {
	var raw services.RawInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a transaction",
		Example: `  ledgerctl add --type expense --category Food --amount 12.50 --description Lunch
  ledgerctl add --type income --category Work --amount 1000 --date 2025-01-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := services.ParseInput(raw)
			if err != nil {
				return err
			}
			tx, err := get().ledger.Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s in %s on %s\n",
				tx.Type, tx.Amount.StringFixed(2), tx.Category, tx.Date())
			return nil
		},
	}
	cmd.Flags().StringVar(&raw.Date, "date", "", "transaction day (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&raw.Description, "description", "", "free text")
	cmd.Flags().StringVar(&raw.Category, "category", "", "one of the fixed categories")
	cmd.Flags().StringVar(&raw.Amount, "amount", "", "non-negative amount")
	cmd.Flags().StringVar(&raw.Type, "type", "", "income, expense or savings")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newListCmd(get func() *session) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := parseRange(from, to)
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), get().ledger.History(r))
		},
	}
	addRangeFlags(cmd, &from, &to)
	return cmd
}

func writeTable(out io.Writer, txs []core.Transaction) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION\t")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			tx.Date(), tx.Type, tx.Category, tx.Amount.StringFixed(2), tx.Description)
	}
	return tw.Flush()
}

func newSummaryCmd(get func() *session) *cobra.Command {
	var from, to, goal string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals, category breakdown and savings progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := parseRange(from, to)
			if err != nil {
				return err
			}
			g, err := apphttp.ParseGoal(map[string][]string{"goal": {goal}})
			if err != nil {
				return err
			}
			rep, err := get().ledger.Report(r, g)
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), rep)
		},
	}
	addRangeFlags(cmd, &from, &to)
	cmd.Flags().StringVar(&goal, "goal", "", "savings goal, defaults to SAVINGS_GOAL")
	return cmd
}

func writeSummary(out io.Writer, rep ledger.Report) error {
	s := rep.Summary
	fmt.Fprintf(out, "Transactions: %d\n", rep.Count)
	fmt.Fprintf(out, "Income:       %s\n", core.FormatDollars(s.Income))
	fmt.Fprintf(out, "Expenses:     %s\n", core.FormatDollars(s.Expenses))
	fmt.Fprintf(out, "Savings:      %s\n", core.FormatDollars(s.Savings))
	fmt.Fprintf(out, "Net balance:  %s\n", core.FormatDollars(s.NetBalance))
	fmt.Fprintln(out, ledger.ProgressText(s.Savings, rep.Goal))

	if rep.Categories.NoData {
		fmt.Fprintln(out, "No expense data.")
		return nil
	}
	fmt.Fprintln(out, "Expenses by category:")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, c := range rep.Categories.Totals {
		fmt.Fprintf(tw, "  %s\t%s\n", c.Category, core.FormatDollars(c.Total))
	}
	return tw.Flush()
}

func newExportCmd(get func() *session) *cobra.Command {
	var from, to, format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered ledger as CSV or XML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			r, err := parseRange(from, to)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				var file *os.File
				if file, err = os.Create(output); err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer func() {
					if cerr := file.Close(); err == nil {
						err = cerr
					}
				}()
				out = file
			}
			return get().exporter.Write(out, f, get().ledger.Transactions(r))
		},
	}
	addRangeFlags(cmd, &from, &to)
	cmd.Flags().StringVar(&format, "format", string(export.CSV), "csv or xml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write, defaults to stdout")
	return cmd
}

func newClearCmd(get func() *session) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear the ledger without --yes")
			}
			if err := get().ledger.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Ledger cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}
