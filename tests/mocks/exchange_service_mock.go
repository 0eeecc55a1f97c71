package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"gitlab.com/aoterocom/AORiskTrader/models"
)

type ExchangeServiceMock struct {
	mock.Mock
}

func (exchangeServiceMock *ExchangeServiceMock) PlaceOrder(ctx context.Context,
	order models.Order) (models.TradeResult, error) {
	args := exchangeServiceMock.Called(ctx, order)
	return args.Get(0).(models.TradeResult), args.Error(1)
}

func (exchangeServiceMock *ExchangeServiceMock) Klines(ctx context.Context, symbol string, interval string,
	limit int) ([]models.Bar, error) {
	args := exchangeServiceMock.Called(ctx, symbol, interval, limit)
	bars, _ := args.Get(0).([]models.Bar)
	return bars, args.Error(1)
}

type NotifierMock struct {
	mock.Mock
}

func (notifierMock *NotifierMock) Notify(message string) error {
	return notifierMock.Called(message).Error(0)
}
