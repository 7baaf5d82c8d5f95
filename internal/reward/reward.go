// Package reward implements the egg mini-game: a one-shot uniform draw mapped
// to a coin tier.
package reward

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrEggAlreadyBroken = errors.New("egg already broken")

type Tier string

const (
	Bronze Tier = "bronze"
	Silver Tier = "silver"
	Gold   Tier = "gold"
)

const (
	BronzeValue = 20
	SilverValue = 50
	GoldValue   = 100
)

// Result is the outcome of breaking an egg.
type Result struct {
	Tier  Tier `json:"tier"`
	Value int  `json:"value"`
}

// TierFor maps a sample in [0, 1) to a prize. Thresholds are exclusive:
// exactly 0.8 is silver and exactly 0.4 is bronze.
func TierFor(r float64) Result {
	switch {
	case r > 0.8:
		return Result{Tier: Gold, Value: GoldValue}
	case r > 0.4:
		return Result{Tier: Silver, Value: SilverValue}
	default:
		return Result{Tier: Bronze, Value: BronzeValue}
	}
}

// Egg is a single mini-game instance. It can be broken once.
type Egg struct {
	ID uuid.UUID

	mu     sync.Mutex
	result *Result
}

func NewEgg() *Egg {
	return &Egg{ID: uuid.New()}
}

// Break draws a prize with rnd and hands its value to report before
// returning. Any later call returns ErrEggAlreadyBroken and does not call
// report again.
func (e *Egg) Break(rnd func() float64, report func(value int)) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.result != nil {
		return *e.result, ErrEggAlreadyBroken
	}
	res := TierFor(rnd())
	if report != nil {
		report(res.Value)
	}
	e.result = &res
	return res, nil
}

// Result returns the prize if the egg has been broken.
func (e *Egg) Result() (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result == nil {
		return Result{}, false
	}
	return *e.result, true
}
