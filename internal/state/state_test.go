package state

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storegg/internal/models"
)

var backpack = models.Product{
	ID:    1,
	Title: "Fjallraven - Foldsack No. 1 Backpack, Fits 15 Laptops",
	Price: decimal.RequireFromString("109.95"),
}

func TestApply_BuyScenario(t *testing.T) {
	s := New(decimal.NewFromInt(500), nil)

	next, out, err := Apply(s, Buy{Product: backpack}, Policy{})
	require.NoError(t, err)

	assert.True(t, out.Applied)
	assert.True(t, out.LedgerChanged)
	assert.True(t, next.Balance.Equal(decimal.RequireFromString("390.05")), next.Balance.String())
	assert.True(t, next.Owned.Contains(1))
	assert.Equal(t, 1, next.Owned.Len())
	assert.Equal(t, backpack.Title+" was bought successfully! Your current balance is 390.", out.Message)

	// the input state is untouched
	assert.True(t, s.Balance.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 0, s.Owned.Len())
}

func TestApply_SellScenario(t *testing.T) {
	s := New(decimal.RequireFromString("390.05"), []models.Product{backpack})

	next, out, err := Apply(s, Sell{Product: backpack}, Policy{})
	require.NoError(t, err)

	assert.True(t, out.Applied)
	assert.True(t, next.Balance.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 0, next.Owned.Len())
	assert.Equal(t, backpack.Title+" was sold successfully! Your current balance is 500.", out.Message)
}

func TestApply_BuyThenSellRoundTrip(t *testing.T) {
	prices := []string{"0", "0.01", "7.95", "109.95", "999.99", "12345.678"}
	for _, price := range prices {
		p := models.Product{ID: 7, Title: "thing", Price: decimal.RequireFromString(price)}
		start := New(decimal.NewFromInt(500), []models.Product{{ID: 3, Price: decimal.NewFromInt(1)}})

		afterBuy, _, err := Apply(start, Buy{Product: p}, Policy{})
		require.NoError(t, err)
		assert.True(t, afterBuy.Balance.Equal(start.Balance.Sub(p.Price)), price)

		afterSell, _, err := Apply(afterBuy, Sell{Product: p}, Policy{})
		require.NoError(t, err)
		assert.True(t, afterSell.Balance.Equal(start.Balance), price)
		assert.Equal(t, start.Owned.List(), afterSell.Owned.List(), price)
	}
}

func TestApply_SellNotOwnedIsSkipped(t *testing.T) {
	s := New(decimal.NewFromInt(500), []models.Product{{ID: 2}})

	next, out, err := Apply(s, Sell{Product: backpack}, Policy{})
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.False(t, out.LedgerChanged)
	assert.Empty(t, out.Message)
	assert.True(t, next.Balance.Equal(s.Balance))
	assert.Equal(t, s.Owned.List(), next.Owned.List())
}

func TestApply_BuyMayGoNegativeByDefault(t *testing.T) {
	s := New(decimal.NewFromInt(100), nil)
	next, out, err := Apply(s, Buy{Product: backpack}, Policy{})
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.True(t, next.Balance.IsNegative())
	assert.Contains(t, out.Message, "Your current balance is -10.")
}

func TestApply_StrictFunds(t *testing.T) {
	s := New(decimal.NewFromInt(100), nil)
	next, out, err := Apply(s, Buy{Product: backpack}, Policy{StrictFunds: true})
	require.ErrorIs(t, err, ErrNotEnoughCoins)
	assert.False(t, out.Applied)
	assert.True(t, next.Balance.Equal(s.Balance))
	assert.Equal(t, 0, next.Owned.Len())
}

func TestApply_DuplicateBuy(t *testing.T) {
	s := New(decimal.NewFromInt(500), []models.Product{backpack})

	next, _, err := Apply(s, Buy{Product: backpack}, Policy{})
	require.NoError(t, err)
	assert.Equal(t, 2, next.Owned.Len())

	_, _, err = Apply(s, Buy{Product: backpack}, Policy{UniqueOwnership: true})
	require.ErrorIs(t, err, ErrAlreadyOwned)
}

func TestApply_Reward(t *testing.T) {
	s := New(decimal.NewFromInt(500), []models.Product{backpack})

	next, out, err := Apply(s, Reward{Value: 100}, Policy{})
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.False(t, out.LedgerChanged)
	assert.True(t, next.Balance.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, 1, next.Owned.Len())

	_, _, err = Apply(s, Reward{Value: -1}, Policy{})
	require.ErrorIs(t, err, ErrNegativeReward)
}

type bogus struct{}

func (bogus) isCommand() {}

func TestApply_UnknownCommand(t *testing.T) {
	s := New(decimal.NewFromInt(1), nil)
	_, _, err := Apply(s, bogus{}, Policy{})
	require.ErrorIs(t, err, ErrUnknownCommand)
}

func TestFormatBalance(t *testing.T) {
	assert.Equal(t, "390", FormatBalance(decimal.RequireFromString("390.05")))
	assert.Equal(t, "391", FormatBalance(decimal.RequireFromString("390.5")))
	assert.Equal(t, "500", FormatBalance(decimal.NewFromInt(500)))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeBuy, m)

	m, err = ParseMode("sell")
	require.NoError(t, err)
	assert.Equal(t, ModeSell, m)

	_, err = ParseMode("steal")
	require.ErrorIs(t, err, ErrInvalidView)
}
