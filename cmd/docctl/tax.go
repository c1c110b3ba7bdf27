package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"docflow/internal/domain/tax"
	"docflow/internal/infrastructure/http/v1/dto"
)

var taxCmd = &cobra.Command{
	Use:   "tax",
	Short: "Consumption tax utilities",
}

var taxComputeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute 8%/10% consumption tax for a list of lines",
	Long: `Compute subtotal, per-rate tax and total for line items read from a
JSON file shaped like the /tax/compute request body:

  {"items": [{"itemName": "Rice", "quantity": 3, "unitPrice": "333", "taxRate": "0.08"}]}

Use --file - to read from stdin. No database is needed.`,
	RunE: runTaxCompute,
}

func init() {
	rootCmd.AddCommand(taxCmd)
	taxCmd.AddCommand(taxComputeCmd)

	taxComputeCmd.Flags().StringP("file", "f", "", "JSON file with line items, - for stdin")
	_ = taxComputeCmd.MarkFlagRequired("file")
}

func runTaxCompute(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open items file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req dto.ComputeTaxRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("decode items: %w", err)
	}

	summary, err := tax.Compute(dto.ToLineItems(req.Items))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), dto.FromTaxSummary(summary))
}
