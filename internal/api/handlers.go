package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storegg/internal/middleware"
	"storegg/internal/reward"
	"storegg/internal/service"
	"storegg/internal/state"
	"storegg/pkg"
)

var errUnauthorized = errors.New("unauthorized")

type Handlers struct {
	AuthService service.AuthService
	ShopService service.ShopService
	Logger      pkg.Logger
}

func (h *Handlers) PostApiAuth(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "Invalid request body"})
		return
	}

	token, err := h.AuthService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Errors: "Invalid credentials"})
			return
		}
		h.Logger.Error("failed to authenticate", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Errors: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

func (h *Handlers) GetApiProducts(c *gin.Context) {
	c.JSON(http.StatusOK, toProductResponses(h.ShopService.Products(c.Query("q"))))
}

func (h *Handlers) GetApiProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	p, err := h.ShopService.Product(id)
	if err != nil {
		h.fail(c, "failed to get product", err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *Handlers) GetApiInfo(c *gin.Context) {
	player, ok := playerFromContext(c)
	if !ok {
		return
	}
	info, err := h.ShopService.Info(c.Request.Context(), player)
	if err != nil {
		h.fail(c, "failed to get player info", err, zap.String("player", player))
		return
	}
	c.JSON(http.StatusOK, toInfoResponse(info))
}

func (h *Handlers) PostApiBuyItem(c *gin.Context) {
	player, ok := playerFromContext(c)
	if !ok {
		return
	}
	id, ok := productID(c)
	if !ok {
		return
	}
	r, err := h.ShopService.Buy(c.Request.Context(), player, id)
	if err != nil {
		h.fail(c, "failed to buy item", err, zap.String("player", player), zap.Int("productID", id))
		return
	}
	c.JSON(http.StatusOK, toTransactionResponse(r))
}

func (h *Handlers) PostApiSellItem(c *gin.Context) {
	player, ok := playerFromContext(c)
	if !ok {
		return
	}
	id, ok := productID(c)
	if !ok {
		return
	}
	r, err := h.ShopService.Sell(c.Request.Context(), player, id)
	if err != nil {
		h.fail(c, "failed to sell item", err, zap.String("player", player), zap.Int("productID", id))
		return
	}
	c.JSON(http.StatusOK, toTransactionResponse(r))
}

func (h *Handlers) GetApiView(c *gin.Context) {
	player, ok := playerFromContext(c)
	if !ok {
		return
	}
	sc, err := h.ShopService.CurrentScreen(c.Request.Context(), player)
	if err != nil {
		h.fail(c, "failed to get view", err, zap.String("player", player))
		return
	}
	c.JSON(http.StatusOK, toViewResponse(sc))
}

func (h *Handlers) PostApiView(c *gin.Context) {
	player, ok := playerFromContext(c)
	if !ok {
		return
	}
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "Invalid request body"})
		return
	}
	sc, err := h.ShopService.Navigate(c.Request.Context(), player, service.Intent{
		View:      req.View,
		ProductID: req.ProductID,
		Mode:      req.Mode,
	})
	if err != nil {
		h.fail(c, "failed to navigate", err, zap.String("player", player), zap.String("view", req.View))
		return
	}
	c.JSON(http.StatusOK, toViewResponse(sc))
}

func (h *Handlers) PostApiTransact(c *gin.Context) {
	player, ok := playerFromContext(c)
	if !ok {
		return
	}
	r, err := h.ShopService.Transact(c.Request.Context(), player)
	if err != nil {
		h.fail(c, "failed to run transaction", err, zap.String("player", player))
		return
	}
	c.JSON(http.StatusOK, toTransactionResponse(r))
}

func (h *Handlers) PostApiMiniGame(c *gin.Context) {
	player, ok := playerFromContext(c)
	if !ok {
		return
	}
	eggID, err := h.ShopService.StartMiniGame(c.Request.Context(), player)
	if err != nil {
		h.fail(c, "failed to start mini-game", err, zap.String("player", player))
		return
	}
	c.JSON(http.StatusCreated, MiniGameResponse{EggID: eggID.String()})
}

func (h *Handlers) PostApiDraw(c *gin.Context) {
	player, ok := playerFromContext(c)
	if !ok {
		return
	}
	eggID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "Invalid egg id"})
		return
	}
	res, err := h.ShopService.Draw(c.Request.Context(), player, eggID)
	if err != nil {
		h.fail(c, "failed to draw reward", err, zap.String("player", player), zap.String("egg", eggID.String()))
		return
	}
	c.JSON(http.StatusOK, DrawResponse{
		Tier:    res.Tier,
		Value:   res.Value,
		Message: fmt.Sprintf("%d coins have been added to your balance", res.Value),
	})
}

// fail maps service errors to responses. Anything unrecognised is logged and
// reported as a 500.
func (h *Handlers) fail(c *gin.Context, msg string, err error, fields ...zap.Field) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Errors: "Item not found"})
	case errors.Is(err, state.ErrNotEnoughCoins):
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "Not enough coins"})
	case errors.Is(err, state.ErrAlreadyOwned):
		c.JSON(http.StatusConflict, ErrorResponse{Errors: "Item already owned"})
	case errors.Is(err, state.ErrInvalidView):
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "Invalid view"})
	case errors.Is(err, service.ErrNoItemSelected):
		c.JSON(http.StatusConflict, ErrorResponse{Errors: "No item selected"})
	case errors.Is(err, service.ErrEggNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Errors: "Egg not found"})
	case errors.Is(err, reward.ErrEggAlreadyBroken):
		c.JSON(http.StatusConflict, ErrorResponse{Errors: "Egg already broken"})
	default:
		h.Logger.Error(msg, append(fields, zap.Error(err))...)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Errors: "Internal server error"})
	}
}

func productID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "Invalid product id"})
		return 0, false
	}
	return id, true
}

func playerFromContext(c *gin.Context) (string, bool) {
	player, err := getUsernameFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Errors: err.Error()})
		return "", false
	}
	return player, true
}

func getUsernameFromContext(c *gin.Context) (string, error) {
	claims, ok := c.Get(middleware.ClaimsKey)
	if !ok {
		return "", errUnauthorized
	}
	jwtClaims, ok := claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid token claims", errUnauthorized)
	}
	username, ok := jwtClaims["username"].(string)
	if !ok || username == "" {
		return "", fmt.Errorf("%w: invalid token claims", errUnauthorized)
	}
	return username, nil
}
