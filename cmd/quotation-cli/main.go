package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/antstech/quotation-service/internal/config"
	"github.com/antstech/quotation-service/internal/excel"
	"github.com/antstech/quotation-service/internal/pdf"
	"github.com/antstech/quotation-service/internal/pricing"
	"github.com/antstech/quotation-service/internal/repository"
	"github.com/antstech/quotation-service/internal/service"
	"github.com/antstech/quotation-service/internal/sheet/xlsx"
)

var workbookPath string

func main() {
	root := &cobra.Command{
		Use:           "quotation-cli",
		Short:         "Inspect and export quotations from a local workbook",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&workbookPath, "workbook", "quotations.xlsx", "path to the quotation workbook")
	root.AddCommand(listCommand(), showCommand(), exportCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newService() (*service.QuoteService, *config.Config, error) {
	wb, err := xlsx.Open(workbookPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook %s: %w", workbookPath, err)
	}
	cfg := config.Default()
	return service.NewQuoteService(repository.NewQuotationRepository(wb), pdf.NewGenerator(), excel.NewGenerator(), cfg), cfg, nil
}

func listCommand() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quotations in the workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService()
			if err != nil {
				return err
			}
			names, err := svc.List(cmd.Context(), query)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter names by substring")
	return cmd
}

func showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print a quotation with its computed totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := newService()
			if err != nil {
				return err
			}
			view, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printQuotation(cmd, view, cfg.Quotes.Currency)
			return nil
		},
	}
}

func exportCommand() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export NAME",
		Short: "Export a quotation as a PDF or xlsx document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService()
			if err != nil {
				return err
			}

			var result *service.ExportResult
			switch strings.ToLower(format) {
			case "pdf":
				result, err = svc.ExportPDF(cmd.Context(), args[0])
			case "xlsx":
				result, err = svc.ExportExcel(cmd.Context(), args[0])
			default:
				return fmt.Errorf("unknown format %q, expected pdf or xlsx", format)
			}
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = result.FileName
			}
			if err := os.WriteFile(path, result.Content, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "pdf", "export format: pdf or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (defaults to the generated file name)")
	return cmd
}

func printQuotation(cmd *cobra.Command, view *service.QuotationView, currency string) {
	out := cmd.OutOrStdout()
	q := view.Quotation
	exp := pricing.MinorUnits(currency)

	fmt.Fprintf(out, "Quotation: %s\n\n", q.Name)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPart Number\tDescription\tQty\tUnit\tUnit Price\tSubtotal")
	for _, item := range q.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.Number, item.PartNumber, item.Description,
			item.Quantity.String(), item.Unit,
			item.UnitPrice.StringFixed(exp), item.Subtotal.StringFixed(exp))
	}
	w.Flush()

	totals := view.Totals
	fmt.Fprintf(out, "\nSubtotal:  %s %s\n", currency, totals.Subtotal.StringFixed(exp))
	if totals.Discount.IsPositive() {
		fmt.Fprintf(out, "Discount:  %s %s\n", currency, totals.Discount.StringFixed(exp))
	}
	fmt.Fprintf(out, "VAT (%s%%): %s %s\n", totals.VATRate.String(), currency, totals.VAT.StringFixed(exp))
	fmt.Fprintf(out, "Total due: %s %s\n", currency, totals.AmountDue.StringFixed(exp))

	terms := q.Terms
	lines := []struct {
		label string
		value string
	}{
		{"Terms of Payment", terms.TermsOfPayment},
		{"Delivery", terms.Delivery},
		{"Warranty", terms.Warranty},
		{"Price Validity", terms.PriceValidity},
	}
	printed := false
	for _, line := range lines {
		if line.value == "" {
			continue
		}
		if !printed {
			fmt.Fprintln(out, "\nTerms:")
			printed = true
		}
		fmt.Fprintf(out, "  %s: %s\n", line.label, line.value)
	}
}
