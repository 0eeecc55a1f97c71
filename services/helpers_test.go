package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gitlab.com/aoterocom/AORiskTrader/database"
	"gitlab.com/aoterocom/AORiskTrader/features"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
	"gitlab.com/aoterocom/AORiskTrader/models"
	"gitlab.com/aoterocom/AORiskTrader/providers/paper"
	"gitlab.com/aoterocom/AORiskTrader/risk"
	"gitlab.com/aoterocom/AORiskTrader/streams"
)

const testSymbol = "BTCUSDT"

func newTestDB(t *testing.T) *database.DBService {
	dbs, err := database.NewDBService(sqlite.Open(filepath.Join(t.TempDir(), "trader.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbs.Close() })
	return dbs
}

func testLimits() risk.Limits {
	return risk.Limits{MaxPositionSize: 1000, MaxDailyLoss: 500, MaxConsecutiveLosses: 3}
}

type traderFixture struct {
	db          *database.DBService
	bus         *streams.MemoryBus
	riskManager *risk.Manager
	trader      *TraderService
}

func newTraderFixture(t *testing.T, mode models.TradingMode, exchange interfaces.ExchangeService) *traderFixture {
	db := newTestDB(t)
	return newTraderFixtureOn(t, db, db, mode, exchange)
}

// newTraderFixtureOn runs the trader on store, which must be backed by db
func newTraderFixtureOn(t *testing.T, db *database.DBService, store interfaces.Store, mode models.TradingMode,
	exchange interfaces.ExchangeService) *traderFixture {
	bus := streams.NewMemoryBus(streams.RedisBusOptions{})
	riskManager := risk.NewManager(testLimits())
	router := NewExecutionRouterService(paper.NewPaperService(0.001, 0.001, db), exchange)
	tracker := NewPositionTrackerService(store, riskManager)
	trader := NewTraderService(store, bus, riskManager, router, tracker, nil, TraderOptions{
		Symbol:           testSymbol,
		Mode:             mode,
		PositionSizeUSDT: 500,
		Group:            DefaultTraderGroup,
		Consumer:         "trader-test",
		BatchSize:        10,
		BlockTimeout:     10 * time.Millisecond,
		RetryBackoff:     10 * time.Millisecond,
	})
	return &traderFixture{db: db, bus: bus, riskManager: riskManager, trader: trader}
}

func testSignal(id string, signalType models.SignalType, price float64) models.Signal {
	return models.NewSignal(id, 1, testSymbol, signalType, 0.7, price,
		time.Date(2024, 1, 1, 0, 24, 0, 0, time.UTC), map[string]float64{"rsi_14": 25})
}

func publishSignal(t *testing.T, bus interfaces.Bus, signal models.Signal) string {
	data, err := streams.Encode(streams.TopicSignals, signal)
	require.NoError(t, err)
	id, err := bus.Publish(context.Background(), streams.TopicSignals, data)
	require.NoError(t, err)
	return id
}

// stubStrategy always answers the same signal
type stubStrategy struct {
	signal models.SignalType
}

func (s stubStrategy) Name() string {
	return "STUB"
}

func (s stubStrategy) Config() models.StrategyConfig {
	return models.NewMACDBBConfig("v0")
}

func (s stubStrategy) MinBars() int {
	return 22
}

func (s stubStrategy) Evaluate(window []features.Point) models.SignalType {
	return s.signal
}

func (s stubStrategy) Signals(series []features.Point) []models.SignalType {
	out := make([]models.SignalType, len(series))
	for i := range out {
		out[i] = s.signal
	}
	return out
}

func f(v float64) *float64 {
	return &v
}

var errConnectionReset = errors.New("connection reset")

// failingStore fails the next calls of the selected operations once each
type failingStore struct {
	*database.DBService
	failOpenPosition  int
	failClosePosition int
	failRecordResult  int
	failMarkProcessed int
}

func (s *failingStore) OpenPosition(ctx context.Context, position *models.Position) error {
	if s.failOpenPosition > 0 {
		s.failOpenPosition--
		return errConnectionReset
	}
	return s.DBService.OpenPosition(ctx, position)
}

func (s *failingStore) ClosePosition(ctx context.Context, position *models.Position) error {
	if s.failClosePosition > 0 {
		s.failClosePosition--
		return errConnectionReset
	}
	return s.DBService.ClosePosition(ctx, position)
}

func (s *failingStore) RecordOrder(ctx context.Context, order models.Order, result *models.TradeResult) error {
	if result != nil && s.failRecordResult > 0 {
		s.failRecordResult--
		return errConnectionReset
	}
	return s.DBService.RecordOrder(ctx, order, result)
}

func (s *failingStore) MarkProcessed(ctx context.Context, consumer string, messageID string) (bool, error) {
	if s.failMarkProcessed > 0 {
		s.failMarkProcessed--
		return false, errConnectionReset
	}
	return s.DBService.MarkProcessed(ctx, consumer, messageID)
}
