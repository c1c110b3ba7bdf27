package tax

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/core/types"
)

func item(name string, qty int, price, rate string) entity.LineItem {
	return entity.LineItem{
		ItemName:  name,
		Quantity:  qty,
		UnitPrice: types.MustMoney(price),
		TaxRate:   types.MustMoney(rate),
	}
}

func assertMoney(t *testing.T, want string, got types.Money) {
	t.Helper()
	assert.True(t, types.MustMoney(want).Equal(got), "want %s, got %s", want, got)
}

func TestCompute_MixedRates(t *testing.T) {
	summary, err := Compute([]entity.LineItem{
		item("Copy paper", 2, "1000", "0.10"),
		item("Coffee beans", 1, "800", "0.08"),
	})
	require.NoError(t, err)

	assertMoney(t, "2800", summary.Subtotal)
	assertMoney(t, "264", summary.TotalTax)
	assertMoney(t, "3064", summary.Total)

	require.Len(t, summary.ByRate, 2)
	assertMoney(t, "2000", summary.ByRate["0.10"].Taxable)
	assertMoney(t, "200", summary.ByRate["0.10"].Tax)
	assertMoney(t, "800", summary.ByRate["0.08"].Taxable)
	assertMoney(t, "64", summary.ByRate["0.08"].Tax)
	assert.Equal(t, []string{"0.08", "0.10"}, summary.Rates())
}

func TestCompute_FloorsPerLine(t *testing.T) {
	// 3 x 333 = 999, 999 x 0.08 = 79.92 -> 79
	// 1 x 55 = 55, 55 x 0.10 = 5.5 -> 5
	summary, err := Compute([]entity.LineItem{
		item("Tea", 3, "333", "0.08"),
		item("Pen", 1, "55", "0.10"),
	})
	require.NoError(t, err)

	assertMoney(t, "79", summary.ByRate["0.08"].Tax)
	assertMoney(t, "5", summary.ByRate["0.10"].Tax)
	assertMoney(t, "84", summary.TotalTax)
	assertMoney(t, "1138", summary.Total)
}

func TestCompute_FloorsEachLineBeforeSumming(t *testing.T) {
	// Two lines of 5.5 tax each sum to 10, not floor(11) = 11.
	summary, err := Compute([]entity.LineItem{
		item("Pen", 1, "55", "0.10"),
		item("Pen", 1, "55", "0.10"),
	})
	require.NoError(t, err)
	assertMoney(t, "10", summary.TotalTax)
}

func TestCompute_Empty(t *testing.T) {
	summary, err := Compute(nil)
	require.NoError(t, err)

	assert.True(t, summary.Subtotal.IsZero())
	assert.True(t, summary.TotalTax.IsZero())
	assert.True(t, summary.Total.IsZero())
	assert.Empty(t, summary.ByRate)
}

func TestCompute_InvalidRateFailsWithoutPartialResult(t *testing.T) {
	summary, err := Compute([]entity.LineItem{
		item("Desk", 1, "1000", "0.10"),
		item("Chair", 1, "500", "0.05"),
	})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTaxRate, appErr.Code)
	assert.Equal(t, 2, appErr.Details["lineNo"])
	assert.Nil(t, summary.ByRate)
	assert.True(t, summary.Total.IsZero())
}

func TestCompute_RateComparisonIsNumeric(t *testing.T) {
	summary, err := Compute([]entity.LineItem{
		item("a", 1, "100", "0.1"),
		item("b", 1, "100", "0.100"),
	})
	require.NoError(t, err)
	require.Len(t, summary.ByRate, 1)
	assertMoney(t, "200", summary.ByRate["0.10"].Taxable)
}

func TestCompute_StructuralValidation(t *testing.T) {
	_, err := Compute([]entity.LineItem{item("", 1, "100", "0.10")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = Compute([]entity.LineItem{item("x", 0, "100", "0.10")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestValidate_RateErrorOutranksEarlierStructuralError(t *testing.T) {
	err := Validate([]entity.LineItem{
		item("", 1, "100", "0.10"),
		item("Chair", 1, "500", "0.05"),
	})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTaxRate, appErr.Code)
	assert.Equal(t, 2, appErr.Details["lineNo"])
}

func TestCompute_FractionalUnitPrice(t *testing.T) {
	// 3 x 99.99 = 299.97, tax 29.997 -> 29
	summary, err := Compute([]entity.LineItem{item("Cable", 3, "99.99", "0.10")})
	require.NoError(t, err)
	assertMoney(t, "299.97", summary.Subtotal)
	assertMoney(t, "29", summary.TotalTax)
	assertMoney(t, "328.97", summary.Total)
}

func TestApply_SetsDocumentTotals(t *testing.T) {
	doc := entity.NewDocument(id.New(), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	doc.SetItems([]entity.LineItem{
		item("Copy paper", 2, "1000", "0.10"),
		item("Coffee beans", 1, "800", "0.08"),
	})

	_, err := Apply(&doc)
	require.NoError(t, err)
	assertMoney(t, "2800", doc.Subtotal)
	assertMoney(t, "264", doc.TaxAmount)
	assertMoney(t, "3064", doc.TotalAmount)
}
