package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/aoterocom/AORiskTrader/config"
	database "gitlab.com/aoterocom/AORiskTrader/database/models"
	"gitlab.com/aoterocom/AORiskTrader/models"
	"gitlab.com/aoterocom/AORiskTrader/tests/utils"
)

func newTestDB(t *testing.T) *DBService {
	dbs, err := NewDBService(sqlite.Open(filepath.Join(t.TempDir(), "trader.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbs.Close() })
	return dbs
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		dialector, err := Dialector(config.Database{Driver: driver, Host: "db", Port: "1", Name: "trading"})
		require.NoError(t, err)
		assert.Equal(t, driver, dialector.Name())
	}
	_, err := Dialector(config.Database{Driver: "oracle"})
	assert.Error(t, err)
}

func TestUpsertBarsIsIdempotent(t *testing.T) {
	dbs := newTestDB(t)
	ctx := context.Background()
	bars := utils.BarsFromCloses("BTCUSDT", []float64{100, 101, 102})

	inserted, err := dbs.UpsertBars(ctx, bars)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inserted)

	inserted, err = dbs.UpsertBars(ctx, append(bars, utils.BarsFromCloses("BTCUSDT", []float64{1, 2, 3, 4})[3]))
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	var count int64
	require.NoError(t, dbs.DB.Model(&database.Candle{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestRecentBarsAreChronological(t *testing.T) {
	dbs := newTestDB(t)
	ctx := context.Background()
	bars := utils.BarsFromCloses("BTCUSDT", utils.WaveCloses(10, 100))
	_, err := dbs.UpsertBars(ctx, bars)
	require.NoError(t, err)
	_, err = dbs.UpsertBars(ctx, utils.BarsFromCloses("ETHUSDT", []float64{5, 6}))
	require.NoError(t, err)

	recent, err := dbs.RecentBars(ctx, "BTCUSDT", "1m", 4)
	require.NoError(t, err)
	require.Len(t, recent, 4)
	for i, bar := range recent {
		assert.True(t, bar.Timestamp.Equal(bars[6+i].Timestamp))
		assert.InDelta(t, bars[6+i].Close, bar.Close, 1e-9)
	}

	since, err := dbs.BarsSince(ctx, "BTCUSDT", "1m", bars[8].Timestamp)
	require.NoError(t, err)
	assert.Len(t, since, 2)

	latest, err := dbs.LatestBar(ctx, "BTCUSDT", "1m")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.Timestamp.Equal(bars[9].Timestamp))

	missing, err := dbs.LatestBar(ctx, "BTCUSDT", "1h")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestActivateModelArchivesPreviousActive(t *testing.T) {
	dbs := newTestDB(t)
	ctx := context.Background()

	_, err := dbs.GetActiveModel(ctx, "BTCUSDT")
	assert.ErrorIs(t, err, models.ErrNoActiveModel)

	metrics := &models.PerformanceMetrics{TotalTrades: 3, SharpeRatio: 1.4}
	first := &models.Model{Name: "EMA_RSI", Version: "v1", Symbol: "BTCUSDT", Interval: "1m",
		Status: models.ModelStatusApproved, Strategy: models.NewEMARSIConfig("v1", models.DefaultEMARSIParams()),
		TrainingMetrics: metrics}
	require.NoError(t, dbs.CreateModel(ctx, first))
	require.NotZero(t, first.ID)
	require.NoError(t, dbs.ActivateModel(ctx, first.ID))

	second := &models.Model{Name: "MACD_BB", Version: "v1", Symbol: "BTCUSDT", Interval: "1m",
		Status: models.ModelStatusApproved, Strategy: models.NewMACDBBConfig("v1")}
	require.NoError(t, dbs.CreateModel(ctx, second))
	require.NoError(t, dbs.ActivateModel(ctx, second.ID))

	active, err := dbs.GetActiveModel(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, models.StrategyKindMACDBB, active.Strategy.Kind)
	assert.Equal(t, models.ModelStatusActive, active.Status)

	var archived database.Model
	require.NoError(t, dbs.DB.First(&archived, first.ID).Error)
	assert.Equal(t, string(models.ModelStatusArchived), archived.Status)
	require.NotNil(t, archived.TrainingMetrics)
	assert.Equal(t, 1.4, archived.TrainingMetrics.SharpeRatio)
	require.NotNil(t, archived.Strategy.EMARSI)
	assert.Equal(t, 21, archived.Strategy.EMARSI.SlowPeriod)
}

func TestCreateModelRejectsUnknownStatus(t *testing.T) {
	dbs := newTestDB(t)
	err := dbs.CreateModel(context.Background(), &models.Model{Name: "X", Status: "LIVE"})
	assert.Error(t, err)
}

func TestRecordSignalAndOrder(t *testing.T) {
	dbs := newTestDB(t)
	ctx := context.Background()

	signal := models.NewSignal("sig-1", 1, "BTCUSDT", models.SignalTypeBuy, 0.7, 100, utils.Epoch,
		map[string]float64{"rsi_14": 25})
	require.NoError(t, dbs.RecordSignal(ctx, signal))
	require.NoError(t, dbs.RecordSignal(ctx, signal))

	order, err := models.NewOrder("ord-1", "sig-1", 1, "BTCUSDT", models.SideTypeBuy, models.OrderTypeMarket,
		1, 100, models.TradingModePaper, utils.Epoch)
	require.NoError(t, err)
	require.NoError(t, dbs.RecordOrder(ctx, order, nil))

	require.NoError(t, order.Transition(models.OrderStatusTypeFilled))
	result := &models.TradeResult{OrderID: "PAPER_1", Status: models.OrderStatusTypeFilled, FilledPrice: 100.1,
		FilledQuantity: 1, Fee: 0.1001, FeeCurrency: "USDT"}
	require.NoError(t, dbs.RecordOrder(ctx, order, result))

	var orders []database.Order
	require.NoError(t, dbs.DB.Find(&orders).Error)
	require.Len(t, orders, 1)
	assert.Equal(t, "FILLED", orders[0].Status)
	assert.Equal(t, 100.1, orders[0].FilledPrice)
	assert.Equal(t, "PAPER_1", orders[0].ExchangeOrderID)

	var signals []database.Signal
	require.NoError(t, dbs.DB.Find(&signals).Error)
	require.Len(t, signals, 1)
	assert.Equal(t, 25.0, signals[0].Features["rsi_14"])
}

func TestPositionLifecycle(t *testing.T) {
	dbs := newTestDB(t)
	ctx := context.Background()

	flat, err := dbs.FindOpenPosition(ctx, 1, "BTCUSDT")
	require.NoError(t, err)
	assert.Nil(t, flat)

	position := models.NewPosition(1, "BTCUSDT", 2, 100, models.TradingModePaper, utils.Epoch)
	require.NoError(t, dbs.OpenPosition(ctx, position))
	require.NotZero(t, position.ID)
	assert.Error(t, dbs.OpenPosition(ctx, models.NewPosition(1, "BTCUSDT", 1, 100, models.TradingModePaper, utils.Epoch)))

	open, err := dbs.FindOpenPosition(ctx, 1, "BTCUSDT")
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, position.ID, open.ID)
	assert.Equal(t, 2.0, open.Quantity)

	_, err = open.Close(110, 2, utils.Epoch.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, dbs.ClosePosition(ctx, open))
	assert.Error(t, dbs.ClosePosition(ctx, open))

	flat, err = dbs.FindOpenPosition(ctx, 1, "BTCUSDT")
	require.NoError(t, err)
	assert.Nil(t, flat)

	var stored database.Position
	require.NoError(t, dbs.DB.First(&stored, position.ID).Error)
	assert.Equal(t, 20.0, stored.RealizedPnL)
	require.NotNil(t, stored.ClosedAt)
}

func TestMarkProcessed(t *testing.T) {
	dbs := newTestDB(t)
	ctx := context.Background()

	first, err := dbs.MarkProcessed(ctx, "trader", "1-0")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := dbs.MarkProcessed(ctx, "trader", "1-0")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := dbs.MarkProcessed(ctx, "auditor", "1-0")
	require.NoError(t, err)
	assert.True(t, other)
}
