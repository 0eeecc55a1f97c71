package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gitlab.com/aoterocom/AORiskTrader/config"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
	"gitlab.com/aoterocom/AORiskTrader/models"
	"gitlab.com/aoterocom/AORiskTrader/risk"
	"gitlab.com/aoterocom/AORiskTrader/streams"
)

const DefaultTraderGroup = "trader"

type TraderOptions struct {
	Symbol           string
	Mode             models.TradingMode
	PositionSizeUSDT float64
	Group            string
	Consumer         string
	BatchSize        int64
	BlockTimeout     time.Duration
	RetryBackoff     time.Duration
}

func NewTraderOptions(cfg config.Config, consumer string) (TraderOptions, error) {
	mode, err := models.ParseTradingMode(cfg.App.Mode)
	if err != nil {
		return TraderOptions{}, err
	}
	group := cfg.Redis.Group
	if group == "" {
		group = DefaultTraderGroup
	}
	return TraderOptions{
		Symbol:           cfg.App.Symbol,
		Mode:             mode,
		PositionSizeUSDT: cfg.Execution.PositionSizeUSDT,
		Group:            group,
		Consumer:         consumer,
		BatchSize:        10,
		BlockTimeout:     cfg.Executor.BlockTimeout,
		RetryBackoff:     cfg.Executor.RetryBackoff,
	}, nil
}

// TraderService turns signals into risk checked orders. It is the only writer of the
// risk and position state.
type TraderService struct {
	store           interfaces.Store
	bus             interfaces.Bus
	riskManager     *risk.Manager
	router          *ExecutionRouterService
	positionTracker *PositionTrackerService
	notifier        interfaces.Notifier
	dailyResetter   *risk.DailyResetter
	options         TraderOptions
	now             func() time.Time
}

func NewTraderService(store interfaces.Store, bus interfaces.Bus, riskManager *risk.Manager,
	router *ExecutionRouterService, positionTracker *PositionTrackerService, notifier interfaces.Notifier,
	options TraderOptions) *TraderService {
	now := time.Now
	return &TraderService{
		store:           store,
		bus:             bus,
		riskManager:     riskManager,
		router:          router,
		positionTracker: positionTracker,
		notifier:        notifier,
		dailyResetter:   risk.NewDailyResetter(riskManager, now()),
		options:         options,
		now:             now,
	}
}

// Run consumes the signals topic until the context is done. Messages whose handling
// fails stay unacked and are redelivered by the bus.
func (ts *TraderService) Run(ctx context.Context) error {
	helpers.Logger.Infoln(fmt.Sprintf("Trader started on %s in %s mode", ts.options.Symbol, ts.options.Mode))
	for {
		if ts.dailyResetter.Tick(ts.now()) {
			helpers.Logger.Infoln("New trading day, risk state reset")
		}

		messages, err := ts.bus.Consume(ctx, streams.TopicSignals, ts.options.Group, ts.options.Consumer,
			ts.options.BatchSize, ts.options.BlockTimeout)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("Reading signals: %s", err))
			if err := helpers.Sleep(ctx, ts.options.RetryBackoff); err != nil {
				return ignoreCancel(err)
			}
			continue
		}

		for _, message := range messages {
			if err := ts.Handle(ctx, message); err != nil {
				helpers.Logger.WithFields(log.Fields{
					"id":         message.ID,
					"deliveries": message.Deliveries,
				}).Errorln(fmt.Sprintf("Handling signal: %s", err))
				continue
			}
			if err := ts.bus.Ack(ctx, streams.TopicSignals, ts.options.Group, message.ID); err != nil {
				helpers.Logger.Errorln(fmt.Sprintf("Acking signal %s: %s", message.ID, err))
			}
		}
	}
}

// Handle processes one bus message. A nil error means the message can be acked. The
// message is marked processed only once its order and position changes are stored, so a
// failed attempt is resumed on redelivery.
func (ts *TraderService) Handle(ctx context.Context, message interfaces.Message) error {
	var signal models.Signal
	if err := streams.Decode(message.Payload, streams.TopicSignals, &signal); err != nil {
		return err
	}

	processed, err := ts.store.IsProcessed(ctx, ts.options.Consumer, message.ID)
	if err != nil {
		return fmt.Errorf("checking %s: %w", message.ID, err)
	}
	if processed {
		helpers.Logger.Debugln(fmt.Sprintf("Signal message %s already processed", message.ID))
		return nil
	}

	_, err = ts.Trade(ctx, signal)
	if err != nil && !errors.Is(err, models.ErrRiskRejected) && !errors.Is(err, models.ErrExecutionFailure) {
		return err
	}

	if _, err := ts.store.MarkProcessed(ctx, ts.options.Consumer, message.ID); err != nil {
		return fmt.Errorf("marking %s processed: %w", message.ID, err)
	}
	return nil
}

// Trade executes an actionable signal. Risk denials are returned as ErrRiskRejected
// without side effects; execution failures are recorded as rejected orders and returned
// as ErrExecutionFailure. A signal that already has an order resumes it instead of
// trading again.
func (ts *TraderService) Trade(ctx context.Context, signal models.Signal) (*models.Order, error) {
	if signal.Symbol != ts.options.Symbol {
		helpers.Logger.Debugln(fmt.Sprintf("Ignoring signal %s for %s", signal.ID, signal.Symbol))
		return nil, nil
	}
	if signal.Type == models.SignalTypeHold {
		return nil, nil
	}
	side, err := signal.Type.Side()
	if err != nil {
		return nil, err
	}

	existing, result, err := ts.store.FindOrderBySignal(ctx, signal.ID)
	if err != nil {
		return nil, fmt.Errorf("loading order of signal %s: %w", signal.ID, err)
	}
	if existing != nil {
		return ts.resume(ctx, *existing, result, signal.Price)
	}

	order, err := models.NewOrder(uuid.NewString(), signal.ID, signal.ModelID, signal.Symbol, side,
		models.OrderTypeMarket, ts.options.PositionSizeUSDT/signal.Price, signal.Price, ts.options.Mode, ts.now())
	if err != nil {
		return nil, err
	}

	decision := ts.riskManager.Check(order)
	if !decision.Allowed() {
		helpers.Logger.WithFields(log.Fields{
			"signal": signal.ID,
			"side":   order.Side,
			"reason": decision.Reason,
		}).Warnln(decision.Message)
		ts.notify(fmt.Sprintf("Risk rejected %s %s: %s", order.Side, order.Symbol, decision.Message))
		return nil, decision.Err()
	}

	if err := ts.store.RecordOrder(ctx, order, nil); err != nil {
		return nil, fmt.Errorf("recording order %s: %w", order.ID, err)
	}
	return ts.execute(ctx, order, signal.Price)
}

// resume finishes an order left behind by a failed attempt. Pending orders are sent again
// with the same client order id; filled ones are applied to the position, which ignores
// fills it already holds.
func (ts *TraderService) resume(ctx context.Context, order models.Order, result *models.TradeResult,
	marketPrice float64) (*models.Order, error) {
	helpers.Logger.WithFields(log.Fields{
		"order":  order.ID,
		"signal": order.SignalID,
		"status": order.Status,
	}).Infoln("Resuming order")

	switch {
	case order.Status == models.OrderStatusTypePending:
		return ts.execute(ctx, order, marketPrice)
	case result != nil && result.Filled():
		if _, err := ts.positionTracker.Apply(ctx, order, *result); err != nil {
			return &order, fmt.Errorf("applying order %s: %w", order.ID, err)
		}
		return &order, nil
	default:
		return &order, nil
	}
}

func (ts *TraderService) execute(ctx context.Context, order models.Order, marketPrice float64) (*models.Order,
	error) {
	result, execErr := ts.router.Execute(ctx, order, marketPrice)
	if result.Status.Terminal() {
		if err := order.Transition(result.Status); err != nil {
			return nil, err
		}
	}
	if err := ts.store.RecordOrder(ctx, order, &result); err != nil {
		return nil, fmt.Errorf("recording order %s: %w", order.ID, err)
	}
	if execErr != nil {
		helpers.Logger.Errorln(execErr)
		ts.notify(fmt.Sprintf("%s %s failed: %s", order.Side, order.Symbol, result.Error))
		return &order, execErr
	}

	if _, err := ts.positionTracker.Apply(ctx, order, result); err != nil {
		return &order, fmt.Errorf("applying order %s: %w", order.ID, err)
	}
	if result.Filled() {
		ts.notify(fmt.Sprintf("%s %.8f %s filled at %.8f (fee %.8f %s)", order.Side, result.FilledQuantity,
			order.Symbol, result.FilledPrice, result.Fee, result.FeeCurrency))
	}
	return &order, nil
}

func (ts *TraderService) notify(message string) {
	if ts.notifier == nil {
		return
	}
	if err := ts.notifier.Notify(message); err != nil {
		helpers.Logger.Warnln(fmt.Sprintf("Notification failed: %s", err))
	}
}
