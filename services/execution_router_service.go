package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
	"gitlab.com/aoterocom/AORiskTrader/models"
	"gitlab.com/aoterocom/AORiskTrader/providers/paper"
)

// ExecutionRouterService dispatches accepted orders to the execution path of their mode
type ExecutionRouterService struct {
	paperService    *paper.PaperService
	exchangeService interfaces.ExchangeService
}

func NewExecutionRouterService(paperService *paper.PaperService,
	exchangeService interfaces.ExchangeService) *ExecutionRouterService {
	return &ExecutionRouterService{
		paperService:    paperService,
		exchangeService: exchangeService,
	}
}

// Execute returns a rejected result together with an ErrExecutionFailure error when
// the execution path fails
func (ers *ExecutionRouterService) Execute(ctx context.Context, order models.Order,
	marketPrice float64) (models.TradeResult, error) {
	var result models.TradeResult
	var err error

	switch order.Mode {
	case models.TradingModePaper:
		if ers.paperService == nil {
			err = fmt.Errorf("no paper service configured")
			break
		}
		result, err = ers.paperService.Fill(order, marketPrice)
	case models.TradingModeLive:
		if ers.exchangeService == nil {
			err = fmt.Errorf("no exchange service configured")
			break
		}
		result, err = ers.exchangeService.PlaceOrder(ctx, order)
	case models.TradingModeShadow:
		helpers.Logger.WithFields(log.Fields{
			"order":  order.ID,
			"symbol": order.Symbol,
			"side":   order.Side,
			"qty":    order.Quantity,
			"price":  marketPrice,
		}).Infoln("Shadow order not executed")
		return models.TradeResult{
			OrderID:     order.ID,
			Status:      models.OrderStatusTypeCancelled,
			FeeCurrency: helpers.QuoteAsset(order.Symbol),
			Shadow:      true,
		}, nil
	default:
		err = fmt.Errorf("unknown trading mode %q", order.Mode)
	}

	if err != nil {
		err = fmt.Errorf("%w: order %s (%s): %v", models.ErrExecutionFailure, order.ID, order.Mode, err)
		return models.NewFailedTradeResult(order.ID, err), err
	}
	return result, nil
}
