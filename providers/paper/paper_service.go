package paper

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
	"gitlab.com/aoterocom/AORiskTrader/models"
)

// PaperService simulates fills. Every order is fully filled.
type PaperService struct {
	feePct      float64
	slippagePct float64
	marketData  interfaces.MarketData
}

func NewPaperService(feePct float64, slippagePct float64, marketData interfaces.MarketData) *PaperService {
	return &PaperService{
		feePct:      feePct,
		slippagePct: slippagePct,
		marketData:  marketData,
	}
}

// Fill simulates the execution of the order at the market price. Market orders pay
// the slippage against their side, limit orders fill at their own price.
func (paperService *PaperService) Fill(order models.Order, marketPrice float64) (models.TradeResult, error) {
	var filledPrice, slippage float64
	switch order.Type {
	case models.OrderTypeMarket:
		slippage = paperService.slippagePct
		switch order.Side {
		case models.SideTypeBuy:
			filledPrice = marketPrice * (1 + slippage)
		case models.SideTypeSell:
			filledPrice = marketPrice * (1 - slippage)
		default:
			return models.TradeResult{}, fmt.Errorf("paper fill: unknown side %q", order.Side)
		}
	case models.OrderTypeLimit:
		filledPrice = order.Price
	default:
		return models.TradeResult{}, fmt.Errorf("paper fill: unknown order type %q", order.Type)
	}
	if filledPrice <= 0 {
		return models.TradeResult{}, fmt.Errorf("paper fill: invalid price %f", filledPrice)
	}

	fee := order.Quantity * filledPrice * paperService.feePct
	helpers.Logger.WithFields(log.Fields{
		"symbol":   order.Symbol,
		"side":     order.Side,
		"quantity": order.Quantity,
		"price":    filledPrice,
		"fee":      fee,
	}).Infoln("Paper trade executed")

	return models.TradeResult{
		OrderID:        "PAPER_" + uuid.NewString(),
		Status:         models.OrderStatusTypeFilled,
		FilledPrice:    filledPrice,
		FilledQuantity: order.Quantity,
		Fee:            fee,
		FeeCurrency:    helpers.QuoteAsset(order.Symbol),
		SlippagePct:    slippage,
	}, nil
}

// PlaceOrder fills at the order price
func (paperService *PaperService) PlaceOrder(ctx context.Context, order models.Order) (models.TradeResult, error) {
	return paperService.Fill(order, order.Price)
}

// Klines replays the stored bar history
func (paperService *PaperService) Klines(ctx context.Context, symbol string, interval string,
	limit int) ([]models.Bar, error) {
	if paperService.marketData == nil {
		return nil, fmt.Errorf("paper klines: no market data configured")
	}
	return paperService.marketData.RecentBars(ctx, symbol, interval, limit)
}
