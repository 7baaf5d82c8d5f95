package state

import (
	"errors"

	"github.com/google/uuid"

	"storegg/internal/models"
)

var ErrInvalidView = errors.New("invalid view")

// Mode selects what the item detail action does.
type Mode string

const (
	ModeBuy  Mode = "buy"
	ModeSell Mode = "sell"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeBuy:
		return ModeBuy, nil
	case ModeSell:
		return ModeSell, nil
	default:
		return "", ErrInvalidView
	}
}

// View is the screen a player is on: Catalog, ItemDetail, Owned or MiniGame.
type View interface {
	Name() string
	isView()
}

type Catalog struct{}

type ItemDetail struct {
	Item models.Product
	Mode Mode
}

type Owned struct{}

// MiniGame carries the egg that was laid when the player entered the view.
type MiniGame struct {
	EggID uuid.UUID
}

const (
	ViewCatalog    = "catalog"
	ViewItemDetail = "item_detail"
	ViewOwned      = "owned"
	ViewMiniGame   = "minigame"
)

func (Catalog) Name() string    { return ViewCatalog }
func (ItemDetail) Name() string { return ViewItemDetail }
func (Owned) Name() string      { return ViewOwned }
func (MiniGame) Name() string   { return ViewMiniGame }

func (Catalog) isView()    {}
func (ItemDetail) isView() {}
func (Owned) isView()      {}
func (MiniGame) isView()   {}
