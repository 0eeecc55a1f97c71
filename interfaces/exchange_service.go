package interfaces

import (
	"context"

	"gitlab.com/aoterocom/AORiskTrader/models"
)

type ExchangeService interface {
	PlaceOrder(ctx context.Context, order models.Order) (models.TradeResult, error)
	Klines(ctx context.Context, symbol string, interval string, limit int) ([]models.Bar, error)
}
