package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"gitlab.com/aoterocom/AORiskTrader/models"
)

type StoreMock struct {
	mock.Mock
}

func (storeMock *StoreMock) UpsertBars(ctx context.Context, bars []models.Bar) (int64, error) {
	args := storeMock.Called(ctx, bars)
	return args.Get(0).(int64), args.Error(1)
}

func (storeMock *StoreMock) LatestBar(ctx context.Context, symbol string, interval string) (*models.Bar, error) {
	args := storeMock.Called(ctx, symbol, interval)
	bar, _ := args.Get(0).(*models.Bar)
	return bar, args.Error(1)
}

func (storeMock *StoreMock) RecentBars(ctx context.Context, symbol string, interval string,
	n int) ([]models.Bar, error) {
	args := storeMock.Called(ctx, symbol, interval, n)
	bars, _ := args.Get(0).([]models.Bar)
	return bars, args.Error(1)
}

func (storeMock *StoreMock) BarsSince(ctx context.Context, symbol string, interval string,
	since time.Time) ([]models.Bar, error) {
	args := storeMock.Called(ctx, symbol, interval, since)
	bars, _ := args.Get(0).([]models.Bar)
	return bars, args.Error(1)
}

func (storeMock *StoreMock) CreateModel(ctx context.Context, model *models.Model) error {
	return storeMock.Called(ctx, model).Error(0)
}

func (storeMock *StoreMock) ActivateModel(ctx context.Context, id uint) error {
	return storeMock.Called(ctx, id).Error(0)
}

func (storeMock *StoreMock) GetActiveModel(ctx context.Context, symbol string) (*models.Model, error) {
	args := storeMock.Called(ctx, symbol)
	model, _ := args.Get(0).(*models.Model)
	return model, args.Error(1)
}

func (storeMock *StoreMock) RecordSignal(ctx context.Context, signal models.Signal) error {
	return storeMock.Called(ctx, signal).Error(0)
}

func (storeMock *StoreMock) RecordOrder(ctx context.Context, order models.Order, result *models.TradeResult) error {
	return storeMock.Called(ctx, order, result).Error(0)
}

func (storeMock *StoreMock) FindOrderBySignal(ctx context.Context, signalID string) (*models.Order,
	*models.TradeResult, error) {
	args := storeMock.Called(ctx, signalID)
	order, _ := args.Get(0).(*models.Order)
	result, _ := args.Get(1).(*models.TradeResult)
	return order, result, args.Error(2)
}

func (storeMock *StoreMock) OpenPosition(ctx context.Context, position *models.Position) error {
	return storeMock.Called(ctx, position).Error(0)
}

func (storeMock *StoreMock) ClosePosition(ctx context.Context, position *models.Position) error {
	return storeMock.Called(ctx, position).Error(0)
}

func (storeMock *StoreMock) FindOpenPosition(ctx context.Context, modelID uint,
	symbol string) (*models.Position, error) {
	args := storeMock.Called(ctx, modelID, symbol)
	position, _ := args.Get(0).(*models.Position)
	return position, args.Error(1)
}

func (storeMock *StoreMock) IsProcessed(ctx context.Context, consumer string, messageID string) (bool, error) {
	args := storeMock.Called(ctx, consumer, messageID)
	return args.Bool(0), args.Error(1)
}

func (storeMock *StoreMock) MarkProcessed(ctx context.Context, consumer string, messageID string) (bool, error) {
	args := storeMock.Called(ctx, consumer, messageID)
	return args.Bool(0), args.Error(1)
}

func (storeMock *StoreMock) Close() error {
	return storeMock.Called().Error(0)
}
