package binance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	log "github.com/sirupsen/logrus"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/models"
)

type BinanceService struct {
	binanceClient *binance.Client
}

func NewBinanceService(apiKey string, apiSecret string, testnet bool) *BinanceService {
	binance.UseTestnet = testnet
	return &BinanceService{
		binanceClient: binance.NewClient(apiKey, apiSecret),
	}
}

// PlaceOrder sends the order to the exchange. Quantity is sent with 8 decimals.
func (binanceService *BinanceService) PlaceOrder(ctx context.Context, order models.Order) (models.TradeResult, error) {
	var sideType binance.SideType
	switch order.Side {
	case models.SideTypeBuy:
		sideType = binance.SideTypeBuy
	case models.SideTypeSell:
		sideType = binance.SideTypeSell
	default:
		return models.TradeResult{}, fmt.Errorf("binance: unknown side %q", order.Side)
	}

	preparedOrder := binanceService.binanceClient.NewCreateOrderService().Symbol(order.Symbol).
		Side(sideType).Quantity(strconv.FormatFloat(order.Quantity, 'f', 8, 64)).
		NewClientOrderID(order.ID)

	var response *binance.CreateOrderResponse
	var err error
	switch order.Type {
	case models.OrderTypeMarket:
		response, err = preparedOrder.Type(binance.OrderTypeMarket).Do(ctx)
	case models.OrderTypeLimit:
		response, err = preparedOrder.Type(binance.OrderTypeLimit).TimeInForce(binance.TimeInForceTypeGTC).
			Price(strconv.FormatFloat(order.Price, 'f', -1, 64)).Do(ctx)
	default:
		return models.TradeResult{}, fmt.Errorf("binance: unknown order type %q", order.Type)
	}
	if err != nil {
		return models.TradeResult{}, fmt.Errorf("binance: create order %s: %w", order.ID, err)
	}

	result := orderResponseToTradeResult(response, order.Price)
	helpers.Logger.WithFields(log.Fields{
		"symbol":   order.Symbol,
		"side":     order.Side,
		"orderId":  result.OrderID,
		"status":   result.Status,
		"price":    result.FilledPrice,
		"quantity": result.FilledQuantity,
	}).Infoln("Live order placed")
	return result, nil
}

// Klines returns the last closed and open klines as bars
func (binanceService *BinanceService) Klines(ctx context.Context, symbol string, interval string,
	limit int) ([]models.Bar, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	klines, err := binanceService.binanceClient.NewKlinesService().Symbol(symbol).
		Interval(interval).Limit(limit).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance: klines %s %s: %w", symbol, interval, err)
	}

	bars := make([]models.Bar, 0, len(klines))
	for _, k := range klines {
		bar, err := klineToBar(symbol, interval, k)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func klineToBar(symbol string, interval string, k *binance.Kline) (models.Bar, error) {
	values := make([]float64, 6)
	for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume, k.QuoteAssetVolume} {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.Bar{}, fmt.Errorf("binance: invalid kline value %q: %w", raw, err)
		}
		values[i] = value
	}
	quoteVolume := values[5]
	tradesCount := k.TradeNum
	return models.Bar{
		Symbol:      symbol,
		Interval:    interval,
		Timestamp:   time.UnixMilli(k.OpenTime).UTC(),
		Open:        values[0],
		High:        values[1],
		Low:         values[2],
		Close:       values[3],
		Volume:      values[4],
		QuoteVolume: &quoteVolume,
		TradesCount: &tradesCount,
	}, nil
}

// orderResponseToTradeResult averages the fills; partially filled orders report the executed part
func orderResponseToTradeResult(o *binance.CreateOrderResponse, referencePrice float64) models.TradeResult {
	result := models.TradeResult{
		OrderID: strconv.FormatInt(o.OrderID, 10),
		Status:  orderStatus(o.Status),
	}

	var notional, quantity float64
	for _, fill := range o.Fills {
		price, _ := strconv.ParseFloat(fill.Price, 64)
		qty, _ := strconv.ParseFloat(fill.Quantity, 64)
		commission, _ := strconv.ParseFloat(fill.Commission, 64)
		notional += price * qty
		quantity += qty
		result.Fee += commission
		result.FeeCurrency = fill.CommissionAsset
	}
	if quantity == 0 {
		quantity, _ = strconv.ParseFloat(o.ExecutedQuantity, 64)
		notional, _ = strconv.ParseFloat(o.CummulativeQuoteQuantity, 64)
	}
	result.FilledQuantity = quantity
	if quantity > 0 {
		result.FilledPrice = notional / quantity
	}
	if referencePrice > 0 && result.FilledPrice > 0 {
		result.SlippagePct = (result.FilledPrice - referencePrice) / referencePrice
	}
	return result
}

func orderStatus(status binance.OrderStatusType) models.OrderStatusType {
	switch status {
	case binance.OrderStatusTypeFilled, binance.OrderStatusTypePartiallyFilled:
		return models.OrderStatusTypeFilled
	case binance.OrderStatusTypeCanceled, binance.OrderStatusTypeExpired, binance.OrderStatusTypePendingCancel:
		return models.OrderStatusTypeCancelled
	case binance.OrderStatusTypeRejected:
		return models.OrderStatusTypeRejected
	default:
		return models.OrderStatusTypePending
	}
}
