package api

import (
	"storegg/internal/models"
	"storegg/internal/reward"
	"storegg/internal/service"
	"storegg/internal/state"
)

type ErrorResponse struct {
	Errors string `json:"errors"`
}

type AuthRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type ProductResponse struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

type InfoResponse struct {
	Coins     float64           `json:"coins"`
	Display   string            `json:"coinsDisplay"`
	Inventory []ProductResponse `json:"inventory"`
	View      string            `json:"view"`
}

type TransactionResponse struct {
	Applied bool    `json:"applied"`
	Message string  `json:"message,omitempty"`
	Balance float64 `json:"balance"`
}

type NavigateRequest struct {
	View      string `json:"view" binding:"required"`
	ProductID int    `json:"productId"`
	Mode      string `json:"mode"`
}

type ViewResponse struct {
	View  string           `json:"view"`
	Item  *ProductResponse `json:"item,omitempty"`
	Mode  string           `json:"mode,omitempty"`
	EggID string           `json:"eggId,omitempty"`
	Prize *reward.Result   `json:"prize,omitempty"`
}

type MiniGameResponse struct {
	EggID string `json:"eggId"`
}

type DrawResponse struct {
	Tier    reward.Tier `json:"tier"`
	Value   int         `json:"value"`
	Message string      `json:"message"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Image:       p.Image,
		Price:       p.Price.InexactFloat64(),
		Description: p.Description,
	}
}

func toProductResponses(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toInfoResponse(info service.Info) InfoResponse {
	resp := InfoResponse{
		Coins:     info.Coins.InexactFloat64(),
		Display:   state.FormatBalance(info.Coins),
		Inventory: toProductResponses(info.Owned),
	}
	if info.View != nil {
		resp.View = info.View.Name()
	}
	return resp
}

func toTransactionResponse(r service.Receipt) TransactionResponse {
	return TransactionResponse{
		Applied: r.Applied,
		Message: r.Message,
		Balance: r.Balance.InexactFloat64(),
	}
}

func toViewResponse(sc service.Screen) ViewResponse {
	resp := ViewResponse{View: sc.View.Name(), Prize: sc.Prize}
	switch v := sc.View.(type) {
	case state.ItemDetail:
		item := toProductResponse(v.Item)
		resp.Item = &item
		resp.Mode = string(v.Mode)
	case state.MiniGame:
		resp.EggID = v.EggID.String()
	}
	return resp
}
