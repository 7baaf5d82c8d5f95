package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storegg/internal/catalog"
	"storegg/internal/ledger"
	"storegg/internal/metrics"
	"storegg/internal/models"
	"storegg/internal/reward"
	"storegg/internal/state"
	"storegg/pkg"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNoItemSelected  = errors.New("no item selected")
	ErrEggNotFound     = errors.New("egg not found")
)

type Info struct {
	Coins decimal.Decimal
	Owned []models.Product
	View  state.View
}

// Receipt is what a buy or sell hands back for display. Applied is false when
// a sale was skipped because the item is not owned.
type Receipt struct {
	Applied bool
	Message string
	Balance decimal.Decimal
}

// Intent asks to move a player to another view.
type Intent struct {
	View      string
	ProductID int
	Mode      string
}

// Screen is a player's current view plus the prize of the current egg, once
// it has been broken.
type Screen struct {
	View  state.View
	Prize *reward.Result
}

type ShopService interface {
	Products(query string) []models.Product
	Product(id int) (models.Product, error)

	Info(ctx context.Context, player string) (Info, error)

	Buy(ctx context.Context, player string, productID int) (Receipt, error)
	Sell(ctx context.Context, player string, productID int) (Receipt, error)

	Navigate(ctx context.Context, player string, intent Intent) (Screen, error)
	CurrentScreen(ctx context.Context, player string) (Screen, error)
	// Transact runs the action of the item detail view the player is on.
	Transact(ctx context.Context, player string) (Receipt, error)

	StartMiniGame(ctx context.Context, player string) (uuid.UUID, error)
	Draw(ctx context.Context, player string, eggID uuid.UUID) (reward.Result, error)
}

type Options struct {
	StartingBalance decimal.Decimal
	Policy          state.Policy
	// Rand samples [0, 1) for the mini-game. Defaults to math/rand/v2.
	Rand func() float64
}

// session is one player's application state. mu serialises every command for
// that player.
type session struct {
	mu    sync.Mutex
	state state.State
	view  state.View
	egg   *reward.Egg
}

type shopService struct {
	catalog  *catalog.Store
	ledgers  ledger.Persister
	log      pkg.Logger
	opts     Options
	sessions *xsync.MapOf[string, *session]
}

func NewShopService(store *catalog.Store, ledgers ledger.Persister, log pkg.Logger, opts Options) ShopService {
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	return &shopService{
		catalog:  store,
		ledgers:  ledgers,
		log:      log,
		opts:     opts,
		sessions: xsync.NewMapOf[*session](),
	}
}

func (s *shopService) Products(query string) []models.Product {
	return s.catalog.Search(query)
}

func (s *shopService) Product(id int) (models.Product, error) {
	p, ok := s.catalog.Get(id)
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (s *shopService) Info(ctx context.Context, player string) (Info, error) {
	sess, err := s.session(ctx, player)
	if err != nil {
		return Info{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return Info{
		Coins: sess.state.Balance,
		Owned: sess.state.Owned.List(),
		View:  sess.view,
	}, nil
}

func (s *shopService) Buy(ctx context.Context, player string, productID int) (Receipt, error) {
	p, ok := s.catalog.Get(productID)
	if !ok {
		return Receipt{}, ErrProductNotFound
	}
	sess, err := s.session(ctx, player)
	if err != nil {
		return Receipt{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return s.transaction(ctx, player, sess, state.Buy{Product: p})
}

func (s *shopService) Sell(ctx context.Context, player string, productID int) (Receipt, error) {
	sess, err := s.session(ctx, player)
	if err != nil {
		return Receipt{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	p, ok := sess.state.Owned.Get(productID)
	if !ok {
		p, ok = s.catalog.Get(productID)
	}
	if !ok {
		return Receipt{}, ErrProductNotFound
	}
	return s.transaction(ctx, player, sess, state.Sell{Product: p})
}

func (s *shopService) Transact(ctx context.Context, player string) (Receipt, error) {
	sess, err := s.session(ctx, player)
	if err != nil {
		return Receipt{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	detail, ok := sess.view.(state.ItemDetail)
	if !ok {
		return Receipt{}, ErrNoItemSelected
	}
	if detail.Mode == state.ModeSell {
		return s.transaction(ctx, player, sess, state.Sell{Product: detail.Item})
	}
	return s.transaction(ctx, player, sess, state.Buy{Product: detail.Item})
}

func (s *shopService) Navigate(ctx context.Context, player string, intent Intent) (Screen, error) {
	sess, err := s.session(ctx, player)
	if err != nil {
		return Screen{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var next state.View
	switch intent.View {
	case state.ViewCatalog:
		next = state.Catalog{}
	case state.ViewOwned:
		next = state.Owned{}
	case state.ViewItemDetail:
		mode, err := state.ParseMode(intent.Mode)
		if err != nil {
			return Screen{}, fmt.Errorf("%w: mode %q", err, intent.Mode)
		}
		item, ok := s.lookup(sess, intent.ProductID, mode)
		if !ok {
			return Screen{}, ErrProductNotFound
		}
		next = state.ItemDetail{Item: item, Mode: mode}
	case state.ViewMiniGame:
		// every visit lays a fresh egg
		sess.egg = reward.NewEgg()
		next = state.MiniGame{EggID: sess.egg.ID}
	default:
		return Screen{}, fmt.Errorf("%w: %q", state.ErrInvalidView, intent.View)
	}

	sess.view = next
	s.log.Debug("player navigated", zap.String("player", player), zap.String("view", next.Name()))
	return screenOf(sess), nil
}

func (s *shopService) CurrentScreen(ctx context.Context, player string) (Screen, error) {
	sess, err := s.session(ctx, player)
	if err != nil {
		return Screen{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return screenOf(sess), nil
}

func (s *shopService) StartMiniGame(ctx context.Context, player string) (uuid.UUID, error) {
	screen, err := s.Navigate(ctx, player, Intent{View: state.ViewMiniGame})
	if err != nil {
		return uuid.Nil, err
	}
	return screen.View.(state.MiniGame).EggID, nil
}

func (s *shopService) Draw(ctx context.Context, player string, eggID uuid.UUID) (reward.Result, error) {
	sess, err := s.session(ctx, player)
	if err != nil {
		return reward.Result{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.egg == nil || sess.egg.ID != eggID {
		return reward.Result{}, ErrEggNotFound
	}
	res, err := sess.egg.Break(s.opts.Rand, func(value int) {
		if _, err := s.apply(ctx, player, sess, state.Reward{Value: value}); err != nil {
			s.log.Error("failed to apply reward", zap.String("player", player), zap.Int("value", value), zap.Error(err))
		}
	})
	if err != nil {
		return res, err
	}

	metrics.Rewards.WithLabelValues(string(res.Tier)).Inc()
	metrics.RewardCoins.Add(float64(res.Value))
	s.log.Info("Egg broken",
		zap.String("player", player),
		zap.String("egg", eggID.String()),
		zap.String("tier", string(res.Tier)),
		zap.Int("value", res.Value))
	return res, nil
}

// session returns the player's session, restoring the ledger from the
// persister the first time the player is seen.
func (s *shopService) session(ctx context.Context, player string) (*session, error) {
	if sess, ok := s.sessions.Load(player); ok {
		return sess, nil
	}

	items, err := s.ledgers.Load(ctx, player)
	if err != nil {
		s.log.Error("failed to restore ledger", zap.String("player", player), zap.Error(err))
		return nil, fmt.Errorf("failed to restore ledger: %w", err)
	}
	fresh := &session{
		state: state.New(s.opts.StartingBalance, items),
		view:  state.Catalog{},
	}
	sess, loaded := s.sessions.LoadOrStore(player, fresh)
	if !loaded {
		metrics.Sessions.Inc()
		s.log.Info("Session opened", zap.String("player", player), zap.Int("owned", len(items)))
	}
	return sess, nil
}

// transaction applies a buy or sell and records it.
func (s *shopService) transaction(ctx context.Context, player string, sess *session, cmd state.Command) (Receipt, error) {
	r, err := s.apply(ctx, player, sess, cmd)
	switch {
	case err != nil:
		metrics.Transactions.WithLabelValues("rejected").Inc()
		return r, err
	case !r.Applied:
		metrics.Transactions.WithLabelValues("skipped").Inc()
		s.log.Info("Sale skipped: item not owned", zap.String("player", player))
		return r, nil
	}

	switch c := cmd.(type) {
	case state.Buy:
		metrics.Transactions.WithLabelValues("bought").Inc()
		s.log.Info("Item purchased successfully", zap.String("player", player), zap.Int("productID", c.Product.ID), zap.String("balance", r.Balance.String()))
	case state.Sell:
		metrics.Transactions.WithLabelValues("sold").Inc()
		s.log.Info("Item sold successfully", zap.String("player", player), zap.Int("productID", c.Product.ID), zap.String("balance", r.Balance.String()))
	}
	return r, nil
}

// apply runs cmd through the state transition. A ledger change is persisted
// before the new state replaces the old one, so a failed save leaves the
// session untouched.
func (s *shopService) apply(ctx context.Context, player string, sess *session, cmd state.Command) (Receipt, error) {
	next, out, err := state.Apply(sess.state, cmd, s.opts.Policy)
	if err != nil {
		return Receipt{Balance: sess.state.Balance}, err
	}
	if out.LedgerChanged {
		if err := s.ledgers.Save(ctx, player, next.Owned.List()); err != nil {
			s.log.Error("failed to persist ledger", zap.String("player", player), zap.Error(err))
			return Receipt{Balance: sess.state.Balance}, fmt.Errorf("failed to persist ledger: %w", err)
		}
	}
	sess.state = next
	return Receipt{Applied: out.Applied, Message: out.Message, Balance: out.Balance}, nil
}

// lookup resolves the item for a detail view. Sell mode prefers the owned
// copy, buy mode the catalog one.
func (s *shopService) lookup(sess *session, id int, mode state.Mode) (models.Product, bool) {
	if mode == state.ModeSell {
		if p, ok := sess.state.Owned.Get(id); ok {
			return p, true
		}
		return s.catalog.Get(id)
	}
	if p, ok := s.catalog.Get(id); ok {
		return p, true
	}
	return sess.state.Owned.Get(id)
}

func screenOf(sess *session) Screen {
	sc := Screen{View: sess.view}
	if _, ok := sess.view.(state.MiniGame); ok && sess.egg != nil {
		if res, broken := sess.egg.Result(); broken {
			sc.Prize = &res
		}
	}
	return sc
}
