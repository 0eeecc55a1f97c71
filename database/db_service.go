package database

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gitlab.com/aoterocom/AORiskTrader/config"
	database "gitlab.com/aoterocom/AORiskTrader/database/models"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type DBService struct {
	DB *gorm.DB
}

// Dialector picks the gorm driver of the configured database
func Dialector(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		dsn := cfg.User + ":" + cfg.Password + "@tcp(" + cfg.Host + ":" + cfg.Port + ")/" + cfg.Name +
			"?charset=utf8mb4&parseTime=True&loc=UTC"
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.Name), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func Open(cfg config.Database) (*DBService, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	return NewDBService(dialector)
}

func NewDBService(dialector gorm.Dialector) (*DBService, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(helpers.Logger, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	dbs := &DBService{
		DB: db,
	}

	err = dbs.DB.AutoMigrate(&database.Candle{}, &database.Model{}, &database.Signal{}, &database.Order{},
		&database.Position{}, &database.ProcessedMessage{})
	if err != nil {
		return nil, err
	}

	return dbs, nil
}

func (dbs *DBService) Close() error {
	sqlDB, err := dbs.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UpsertBars inserts the bars not stored yet and returns how many were inserted
func (dbs *DBService) UpsertBars(ctx context.Context, bars []models.Bar) (int64, error) {
	if len(bars) == 0 {
		return 0, nil
	}
	candles := make([]database.Candle, len(bars))
	for i, bar := range bars {
		candles[i] = barToCandle(bar)
	}

	// Keep the first stored version of a candle
	result := dbs.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "bar_interval"}, {Name: "open_time"}},
		DoNothing: true,
	}).Create(&candles)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (dbs *DBService) LatestBar(ctx context.Context, symbol string, interval string) (*models.Bar, error) {
	var candle database.Candle
	result := dbs.DB.WithContext(ctx).Where("symbol = ? AND bar_interval = ?", symbol, interval).
		Order("open_time DESC").Limit(1).Find(&candle)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	bar := candleToBar(candle)
	return &bar, nil
}

func (dbs *DBService) RecentBars(ctx context.Context, symbol string, interval string, n int) ([]models.Bar, error) {
	var candles []database.Candle
	err := dbs.DB.WithContext(ctx).Where("symbol = ? AND bar_interval = ?", symbol, interval).
		Order("open_time DESC").Limit(n).Find(&candles).Error
	if err != nil {
		return nil, err
	}
	bars := make([]models.Bar, len(candles))
	for i, candle := range candles {
		bars[len(candles)-1-i] = candleToBar(candle)
	}
	return bars, nil
}

func (dbs *DBService) BarsSince(ctx context.Context, symbol string, interval string,
	since time.Time) ([]models.Bar, error) {
	var candles []database.Candle
	err := dbs.DB.WithContext(ctx).Where("symbol = ? AND bar_interval = ? AND open_time >= ?", symbol, interval,
		since.UTC()).Order("open_time ASC").Find(&candles).Error
	if err != nil {
		return nil, err
	}
	bars := make([]models.Bar, len(candles))
	for i, candle := range candles {
		bars[i] = candleToBar(candle)
	}
	return bars, nil
}

func (dbs *DBService) CreateModel(ctx context.Context, model *models.Model) error {
	if !model.Status.Valid() {
		return fmt.Errorf("model %s: unknown status %q", model.Name, model.Status)
	}
	dbModel := database.Model{
		Name:              model.Name,
		Version:           model.Version,
		Symbol:            model.Symbol,
		Interval:          model.Interval,
		Status:            string(model.Status),
		Strategy:          model.Strategy,
		TrainingMetrics:   model.TrainingMetrics,
		ValidationMetrics: model.ValidationMetrics,
	}
	if err := dbs.DB.WithContext(ctx).Create(&dbModel).Error; err != nil {
		return err
	}
	model.ID = dbModel.ID
	model.CreatedAt = dbModel.CreatedAt
	return nil
}

func (dbs *DBService) ActivateModel(ctx context.Context, id uint) error {
	return dbs.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dbModel database.Model
		if err := tx.First(&dbModel, id).Error; err != nil {
			return fmt.Errorf("activate model %d: %w", id, err)
		}
		err := tx.Model(&database.Model{}).
			Where("symbol = ? AND status = ? AND id <> ?", dbModel.Symbol, string(models.ModelStatusActive), id).
			Update("status", string(models.ModelStatusArchived)).Error
		if err != nil {
			return err
		}
		return tx.Model(&dbModel).Update("status", string(models.ModelStatusActive)).Error
	})
}

func (dbs *DBService) GetActiveModel(ctx context.Context, symbol string) (*models.Model, error) {
	var dbModel database.Model
	result := dbs.DB.WithContext(ctx).Where("symbol = ? AND status = ?", symbol, string(models.ModelStatusActive)).
		Order("id DESC").Limit(1).Find(&dbModel)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w for %s", models.ErrNoActiveModel, symbol)
	}
	status, err := models.ParseModelStatus(dbModel.Status)
	if err != nil {
		return nil, err
	}
	if err := dbModel.Strategy.Validate(); err != nil {
		return nil, fmt.Errorf("model %d: %w", dbModel.ID, err)
	}
	return &models.Model{
		ID:                dbModel.ID,
		Name:              dbModel.Name,
		Version:           dbModel.Version,
		Symbol:            dbModel.Symbol,
		Interval:          dbModel.Interval,
		Status:            status,
		Strategy:          dbModel.Strategy,
		TrainingMetrics:   dbModel.TrainingMetrics,
		ValidationMetrics: dbModel.ValidationMetrics,
		CreatedAt:         dbModel.CreatedAt,
	}, nil
}

func (dbs *DBService) RecordSignal(ctx context.Context, signal models.Signal) error {
	dbSignal := database.Signal{
		SignalID:   signal.ID,
		ModelID:    signal.ModelID,
		Symbol:     signal.Symbol,
		SignalType: string(signal.Type),
		Strength:   signal.Strength,
		Price:      signal.Price,
		Timestamp:  signal.Timestamp.UTC(),
		Features:   signal.Features,
	}
	return dbs.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "signal_id"}},
		DoNothing: true,
	}).Create(&dbSignal).Error
}

// RecordOrder stores the order with its execution result; recording it again updates it
func (dbs *DBService) RecordOrder(ctx context.Context, order models.Order, result *models.TradeResult) error {
	dbOrder := database.Order{
		ClientOrderID: order.ID,
		SignalID:      order.SignalID,
		ModelID:       order.ModelID,
		Symbol:        order.Symbol,
		Side:          string(order.Side),
		Type:          string(order.Type),
		Price:         order.Price,
		Quantity:      order.Quantity,
		Status:        string(order.Status),
		Mode:          string(order.Mode),
		OrderTime:     order.CreatedAt.UTC(),
	}
	if result != nil {
		dbOrder.ExchangeOrderID = result.OrderID
		dbOrder.FilledPrice = result.FilledPrice
		dbOrder.FilledQuantity = result.FilledQuantity
		dbOrder.Fee = result.Fee
		dbOrder.FeeCurrency = result.FeeCurrency
		dbOrder.SlippagePct = result.SlippagePct
		dbOrder.Error = result.Error
	}
	return dbs.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "client_order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"exchange_order_id", "filled_price", "filled_quantity", "fee",
			"fee_currency", "slippage_pct", "status", "error", "updated_at"}),
	}).Create(&dbOrder).Error
}

// FindOrderBySignal returns the last order recorded for the signal with its execution result,
// nil when the signal never produced an order. The result is nil while the order is pending.
func (dbs *DBService) FindOrderBySignal(ctx context.Context, signalID string) (*models.Order,
	*models.TradeResult, error) {
	var dbOrder database.Order
	result := dbs.DB.WithContext(ctx).Where("signal_id = ?", signalID).Order("id DESC").Limit(1).Find(&dbOrder)
	if result.Error != nil {
		return nil, nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil, nil
	}

	order := models.Order{
		ID:        dbOrder.ClientOrderID,
		SignalID:  dbOrder.SignalID,
		ModelID:   dbOrder.ModelID,
		Symbol:    dbOrder.Symbol,
		Side:      models.SideType(dbOrder.Side),
		Type:      models.OrderType(dbOrder.Type),
		Quantity:  dbOrder.Quantity,
		Price:     dbOrder.Price,
		Mode:      models.TradingMode(dbOrder.Mode),
		Status:    models.OrderStatusType(dbOrder.Status),
		CreatedAt: dbOrder.OrderTime.UTC(),
	}
	if err := order.Validate(); err != nil {
		return nil, nil, err
	}
	if order.Status == models.OrderStatusTypePending {
		return &order, nil, nil
	}
	return &order, &models.TradeResult{
		OrderID:        dbOrder.ExchangeOrderID,
		Status:         order.Status,
		FilledPrice:    dbOrder.FilledPrice,
		FilledQuantity: dbOrder.FilledQuantity,
		Fee:            dbOrder.Fee,
		FeeCurrency:    dbOrder.FeeCurrency,
		SlippagePct:    dbOrder.SlippagePct,
		Shadow:         order.Mode == models.TradingModeShadow,
		Error:          dbOrder.Error,
	}, nil
}

func (dbs *DBService) OpenPosition(ctx context.Context, position *models.Position) error {
	existing, err := dbs.FindOpenPosition(ctx, position.ModelID, position.Symbol)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("model %d already has an open position on %s", position.ModelID, position.Symbol)
	}
	dbPosition := positionToRecord(*position)
	if err := dbs.DB.WithContext(ctx).Create(&dbPosition).Error; err != nil {
		return err
	}
	position.ID = dbPosition.ID
	return nil
}

func (dbs *DBService) ClosePosition(ctx context.Context, position *models.Position) error {
	if position.ClosedAt == nil {
		return fmt.Errorf("position %d is not closed", position.ID)
	}
	result := dbs.DB.WithContext(ctx).Model(&database.Position{}).
		Where("id = ? AND closed_at IS NULL", position.ID).
		Updates(map[string]interface{}{
			"exit_price":   position.ExitPrice,
			"closed_at":    position.ClosedAt.UTC(),
			"realized_pnl": position.RealizedPnL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("position %d not found or already closed", position.ID)
	}
	return nil
}

func (dbs *DBService) FindOpenPosition(ctx context.Context, modelID uint, symbol string) (*models.Position, error) {
	var dbPosition database.Position
	result := dbs.DB.WithContext(ctx).Where("model_id = ? AND symbol = ? AND closed_at IS NULL", modelID, symbol).
		Order("id DESC").Limit(1).Find(&dbPosition)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	position := recordToPosition(dbPosition)
	return &position, nil
}

func (dbs *DBService) IsProcessed(ctx context.Context, consumer string, messageID string) (bool, error) {
	var count int64
	err := dbs.DB.WithContext(ctx).Model(&database.ProcessedMessage{}).
		Where("consumer = ? AND message_id = ?", consumer, messageID).Count(&count).Error
	return count > 0, err
}

func (dbs *DBService) MarkProcessed(ctx context.Context, consumer string, messageID string) (bool, error) {
	result := dbs.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "consumer"}, {Name: "message_id"}},
		DoNothing: true,
	}).Create(&database.ProcessedMessage{Consumer: consumer, MessageID: messageID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func barToCandle(bar models.Bar) database.Candle {
	return database.Candle{
		Symbol:      bar.Symbol,
		Interval:    bar.Interval,
		OpenTime:    bar.Timestamp.UTC(),
		OpenPrice:   bar.Open,
		MaxPrice:    bar.High,
		MinPrice:    bar.Low,
		ClosePrice:  bar.Close,
		Volume:      bar.Volume,
		QuoteVolume: bar.QuoteVolume,
		TradeCount:  bar.TradesCount,
	}
}

func candleToBar(candle database.Candle) models.Bar {
	return models.Bar{
		Symbol:      candle.Symbol,
		Interval:    candle.Interval,
		Timestamp:   candle.OpenTime.UTC(),
		Open:        candle.OpenPrice,
		High:        candle.MaxPrice,
		Low:         candle.MinPrice,
		Close:       candle.ClosePrice,
		Volume:      candle.Volume,
		QuoteVolume: candle.QuoteVolume,
		TradesCount: candle.TradeCount,
	}
}

func positionToRecord(position models.Position) database.Position {
	return database.Position{
		ModelID:     position.ModelID,
		Symbol:      position.Symbol,
		Side:        string(position.Side),
		Quantity:    position.Quantity,
		EntryPrice:  position.EntryPrice,
		ExitPrice:   position.ExitPrice,
		Mode:        string(position.Mode),
		OpenedAt:    position.OpenedAt.UTC(),
		ClosedAt:    position.ClosedAt,
		RealizedPnL: position.RealizedPnL,
	}
}

func recordToPosition(record database.Position) models.Position {
	position := models.Position{
		ID:          record.ID,
		ModelID:     record.ModelID,
		Symbol:      record.Symbol,
		Side:        models.PositionSide(record.Side),
		Quantity:    record.Quantity,
		EntryPrice:  record.EntryPrice,
		ExitPrice:   record.ExitPrice,
		Mode:        models.TradingMode(record.Mode),
		OpenedAt:    record.OpenedAt.UTC(),
		RealizedPnL: record.RealizedPnL,
	}
	if record.ClosedAt != nil {
		closedAt := record.ClosedAt.UTC()
		position.ClosedAt = &closedAt
	}
	return position
}
