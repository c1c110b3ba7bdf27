// Package tax computes Japanese consumption tax over document line items.
//
// Two rates are supported: the standard 10% and the reduced 8%. Tax is
// computed per line and rounded down to whole yen before being grouped by rate.
package tax

import (
	"sort"

	"github.com/shopspring/decimal"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/types"
)

var (
	// StandardRate is the 10% consumption tax rate.
	StandardRate = decimal.RequireFromString("0.10")
	// ReducedRate is the 8% rate for food and newspapers.
	ReducedRate = decimal.RequireFromString("0.08")

	supportedRates = []types.Rate{ReducedRate, StandardRate}
)

// RateGroup holds the sums for one tax rate.
type RateGroup struct {
	Rate    types.Rate  `json:"rate"`
	Taxable types.Money `json:"taxable"`
	Tax     types.Money `json:"tax"`
}

// Summary is the result of Compute.
type Summary struct {
	Subtotal types.Money          `json:"subtotal"`
	ByRate   map[string]RateGroup `json:"byRate"`
	TotalTax types.Money          `json:"totalTax"`
	Total    types.Money          `json:"total"`
}

// RateKey returns the canonical map key for a rate ("0.08", "0.10").
func RateKey(rate types.Rate) string {
	return rate.StringFixed(2)
}

// IsSupportedRate reports whether rate is one of the consumption tax rates.
// Comparison is numeric, so 0.1 and 0.10 are the same rate.
func IsSupportedRate(rate types.Rate) bool {
	for _, r := range supportedRates {
		if rate.Equal(r) {
			return true
		}
	}
	return false
}

// Validate checks every item without computing anything. An unsupported
// rate on any line wins over structural errors; otherwise the first failing
// item determines the error.
func Validate(items []entity.LineItem) error {
	for i := range items {
		if !IsSupportedRate(items[i].TaxRate) {
			return apperror.NewInvalidTaxRate(items[i].TaxRate.String(), i+1)
		}
	}
	for i := range items {
		if err := items[i].Validate(i + 1); err != nil {
			return err
		}
	}
	return nil
}

// Compute validates items and returns per-rate and overall totals.
// An empty list yields an all-zero summary.
func Compute(items []entity.LineItem) (Summary, error) {
	if err := Validate(items); err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Subtotal: decimal.Zero,
		ByRate:   make(map[string]RateGroup, len(supportedRates)),
		TotalTax: decimal.Zero,
		Total:    decimal.Zero,
	}

	for _, item := range items {
		taxable := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lineTax := types.FloorYen(taxable.Mul(item.TaxRate))

		key := RateKey(item.TaxRate)
		group, ok := summary.ByRate[key]
		if !ok {
			group = RateGroup{Rate: item.TaxRate.Round(2), Taxable: decimal.Zero, Tax: decimal.Zero}
		}
		group.Taxable = group.Taxable.Add(taxable)
		group.Tax = group.Tax.Add(lineTax)
		summary.ByRate[key] = group

		summary.Subtotal = summary.Subtotal.Add(taxable)
		summary.TotalTax = summary.TotalTax.Add(lineTax)
	}

	summary.Total = summary.Subtotal.Add(summary.TotalTax)
	return summary, nil
}

// Rates returns the rate keys present in the summary in ascending order.
func (s Summary) Rates() []string {
	keys := make([]string, 0, len(s.ByRate))
	for k := range s.ByRate {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply recomputes totals for doc from its current items.
func Apply(doc *entity.Document) (Summary, error) {
	summary, err := Compute(doc.Items)
	if err != nil {
		return Summary{}, err
	}
	doc.ApplyTotals(summary.Subtotal, summary.TotalTax, summary.Total)
	return summary, nil
}
