package interfaces

import (
	"context"
	"time"

	"gitlab.com/aoterocom/AORiskTrader/models"
)

type (
	// MarketData is the bar history of the store
	MarketData interface {
		UpsertBars(ctx context.Context, bars []models.Bar) (int64, error)
		LatestBar(ctx context.Context, symbol string, interval string) (*models.Bar, error)
		// RecentBars returns the last n bars in chronological order
		RecentBars(ctx context.Context, symbol string, interval string, n int) ([]models.Bar, error)
		BarsSince(ctx context.Context, symbol string, interval string, since time.Time) ([]models.Bar, error)
	}

	Store interface {
		MarketData
		CreateModel(ctx context.Context, model *models.Model) error
		// ActivateModel archives the current active model of the symbol
		ActivateModel(ctx context.Context, id uint) error
		GetActiveModel(ctx context.Context, symbol string) (*models.Model, error)
		RecordSignal(ctx context.Context, signal models.Signal) error
		RecordOrder(ctx context.Context, order models.Order, result *models.TradeResult) error
		// FindOrderBySignal returns the last order of the signal and its result, nil result while pending
		FindOrderBySignal(ctx context.Context, signalID string) (*models.Order, *models.TradeResult, error)
		OpenPosition(ctx context.Context, position *models.Position) error
		ClosePosition(ctx context.Context, position *models.Position) error
		// FindOpenPosition returns nil without error when flat
		FindOpenPosition(ctx context.Context, modelID uint, symbol string) (*models.Position, error)
		IsProcessed(ctx context.Context, consumer string, messageID string) (bool, error)
		// MarkProcessed returns false when the message was already processed by the consumer
		MarkProcessed(ctx context.Context, consumer string, messageID string) (bool, error)
		Close() error
	}
)
