// Package state holds a player's wallet and ledger and the pure transition
// function that buy, sell and reward commands go through.
package state

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"storegg/internal/ledger"
	"storegg/internal/models"
)

var (
	ErrNotEnoughCoins = errors.New("not enough coins")
	ErrAlreadyOwned   = errors.New("item already owned")
	ErrUnknownCommand = errors.New("unknown command")
	ErrNegativeReward = errors.New("reward value must not be negative")
)

// Policy toggles the checks the reference storefront never made. The zero
// value reproduces it: balances may go negative and the same item may be
// bought twice.
type Policy struct {
	StrictFunds     bool
	UniqueOwnership bool
}

// State is everything a command may change.
type State struct {
	Balance decimal.Decimal
	Owned   ledger.Ledger
}

func New(balance decimal.Decimal, owned []models.Product) State {
	return State{Balance: balance, Owned: ledger.New(owned)}
}

// Command is one of Buy, Sell or Reward.
type Command interface {
	isCommand()
}

type Buy struct {
	Product models.Product
}

type Sell struct {
	Product models.Product
}

type Reward struct {
	Value int
}

func (Buy) isCommand()    {}
func (Sell) isCommand()   {}
func (Reward) isCommand() {}

// Outcome describes what Apply did.
type Outcome struct {
	Applied       bool
	LedgerChanged bool
	Message       string
	Balance       decimal.Decimal
}

// Apply evaluates cmd against s and returns the next state. s is never
// modified; on error or a skipped command the returned state equals s.
func Apply(s State, cmd Command, p Policy) (State, Outcome, error) {
	switch c := cmd.(type) {
	case Buy:
		return applyBuy(s, c.Product, p)
	case Sell:
		return applySell(s, c.Product)
	case Reward:
		if c.Value < 0 {
			return s, skipped(s), ErrNegativeReward
		}
		next := State{Balance: s.Balance.Add(decimal.NewFromInt(int64(c.Value))), Owned: s.Owned}
		return next, Outcome{Applied: true, Balance: next.Balance}, nil
	default:
		return s, skipped(s), fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

func applyBuy(s State, p models.Product, pol Policy) (State, Outcome, error) {
	if pol.UniqueOwnership && s.Owned.Contains(p.ID) {
		return s, skipped(s), ErrAlreadyOwned
	}
	balance := s.Balance.Sub(p.Price)
	if pol.StrictFunds && balance.IsNegative() {
		return s, skipped(s), ErrNotEnoughCoins
	}
	next := State{Balance: balance, Owned: s.Owned.Add(p)}
	return next, Outcome{
		Applied:       true,
		LedgerChanged: true,
		Message:       fmt.Sprintf("%s was bought successfully! Your current balance is %s.", p.Title, FormatBalance(balance)),
		Balance:       balance,
	}, nil
}

func applySell(s State, p models.Product) (State, Outcome, error) {
	owned, ok := s.Owned.Remove(p.ID)
	if !ok {
		return s, skipped(s), nil
	}
	balance := s.Balance.Add(p.Price)
	next := State{Balance: balance, Owned: owned}
	return next, Outcome{
		Applied:       true,
		LedgerChanged: true,
		Message:       fmt.Sprintf("%s was sold successfully! Your current balance is %s.", p.Title, FormatBalance(balance)),
		Balance:       balance,
	}, nil
}

func skipped(s State) Outcome {
	return Outcome{Balance: s.Balance}
}

// FormatBalance renders a balance the way it is shown to players: rounded to
// whole coins.
func FormatBalance(d decimal.Decimal) string {
	return d.StringFixed(0)
}
