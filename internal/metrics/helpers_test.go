package metrics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/perfdash/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func assertNull(t *testing.T, got decimal.NullDecimal, msgAndArgs ...any) {
	t.Helper()
	assert.Falsef(t, got.Valid, "want null, got %s %v", got.Decimal.String(), msgAndArgs)
}

func assertNullDec(t *testing.T, want string, got decimal.NullDecimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, got.Valid, "want %s, got null %v", want, msgAndArgs)
	assertDec(t, want, got.Decimal, msgAndArgs...)
}

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func rev(date, revenue string, orders int64) models.DailyRecord {
	return models.DailyRecord{Date: date, Revenue: dec(revenue), Orders: orders}
}

func spend(date, amount string) models.DailyRecord {
	return models.DailyRecord{Date: date, Spend: dec(amount)}
}

func someDec(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func nullDec() decimal.NullDecimal { return decimal.NullDecimal{} }
