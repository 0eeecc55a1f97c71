package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gitlab.com/aoterocom/AORiskTrader/config"
	"gitlab.com/aoterocom/AORiskTrader/features"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
	"gitlab.com/aoterocom/AORiskTrader/models"
	"gitlab.com/aoterocom/AORiskTrader/streams"
	"gitlab.com/aoterocom/AORiskTrader/strategies"
)

const signalGeneratorGroup = "signal-generator"

type SignalGeneratorOptions struct {
	Symbol              string
	Interval            string
	WindowSize          int
	MaxSignalsPerMinute int
	Consumer            string
	BlockTimeout        time.Duration
	IdleInterval        time.Duration
	RetryBackoff        time.Duration
	ModelPollInterval   time.Duration
}

func NewSignalGeneratorOptions(cfg config.Config, consumer string) SignalGeneratorOptions {
	return SignalGeneratorOptions{
		Symbol:              cfg.App.Symbol,
		Interval:            cfg.App.Interval,
		WindowSize:          cfg.Executor.WindowSize,
		MaxSignalsPerMinute: cfg.Executor.MaxSignalsPerMinute,
		Consumer:            consumer,
		BlockTimeout:        cfg.Executor.BlockTimeout,
		IdleInterval:        cfg.Executor.CheckInterval,
		RetryBackoff:        cfg.Executor.RetryBackoff,
		ModelPollInterval:   cfg.Executor.ModelPollInterval,
	}
}

// SignalGeneratorService evaluates the active model on every new bar of its market
type SignalGeneratorService struct {
	store       interfaces.Store
	bus         interfaces.Bus
	engine      *features.Engine
	rateLimiter *RateLimiter
	options     SignalGeneratorOptions

	model         *models.Model
	strategy      interfaces.Strategy
	lastEvaluated time.Time
}

func NewSignalGeneratorService(store interfaces.Store, bus interfaces.Bus,
	options SignalGeneratorOptions) *SignalGeneratorService {
	return &SignalGeneratorService{
		store:       store,
		bus:         bus,
		engine:      features.NewEngine(),
		rateLimiter: NewRateLimiter(options.MaxSignalsPerMinute, time.Minute),
		options:     options,
	}
}

func (sgs *SignalGeneratorService) Model() *models.Model {
	return sgs.model
}

// LoadActiveModel replaces the current strategy with the active model of the symbol
func (sgs *SignalGeneratorService) LoadActiveModel(ctx context.Context) error {
	model, err := sgs.store.GetActiveModel(ctx, sgs.options.Symbol)
	if err != nil {
		return err
	}
	strategy, err := strategies.StrategyFactory(model.Strategy)
	if err != nil {
		return fmt.Errorf("model %s: %w", model, err)
	}
	sgs.model = model
	sgs.strategy = strategy
	helpers.Logger.Infoln(fmt.Sprintf("Loaded model %s for %s", model, sgs.options.Symbol))
	return nil
}

// WaitForModel polls the store until an active model exists or the context is done
func (sgs *SignalGeneratorService) WaitForModel(ctx context.Context) error {
	for {
		err := sgs.LoadActiveModel(ctx)
		if err == nil {
			return nil
		}
		wait := sgs.options.RetryBackoff
		if errors.Is(err, models.ErrNoActiveModel) {
			helpers.Logger.Warnln(fmt.Sprintf("No active model for %s, retrying in %s",
				sgs.options.Symbol, sgs.options.ModelPollInterval))
			wait = sgs.options.ModelPollInterval
		} else {
			helpers.Logger.Errorln(fmt.Sprintf("Loading active model: %s", err))
		}
		if err := helpers.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Run consumes candle events until the context is done
func (sgs *SignalGeneratorService) Run(ctx context.Context) error {
	if sgs.strategy == nil {
		if err := sgs.WaitForModel(ctx); err != nil {
			return ignoreCancel(err)
		}
	}

	// set while the last bar still has to be evaluated again after a failure
	retry := false
	var unacked []string
	for {
		messages, err := sgs.bus.Consume(ctx, streams.TopicCandles, signalGeneratorGroup, sgs.options.Consumer,
			100, sgs.options.BlockTimeout)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("Reading candles: %s", err))
			if err := helpers.Sleep(ctx, sgs.options.RetryBackoff); err != nil {
				return ignoreCancel(err)
			}
			continue
		}

		if len(messages) == 0 && !retry {
			if err := helpers.Sleep(ctx, sgs.options.IdleInterval); err != nil {
				return ignoreCancel(err)
			}
			continue
		}

		evaluate := retry
		for _, message := range messages {
			unacked = append(unacked, message.ID)
			var bar models.Bar
			if err := streams.Decode(message.Payload, streams.TopicCandles, &bar); err != nil {
				helpers.Logger.Errorln(fmt.Sprintf("Discarding candle %s: %s", message.ID, err))
				continue
			}
			if bar.Symbol == sgs.options.Symbol && bar.Interval == sgs.options.Interval {
				evaluate = true
			}
		}
		if evaluate {
			_, err := sgs.Process(ctx)
			retry = err != nil && !errors.Is(err, models.ErrInsufficientHistory)
			if errors.Is(err, models.ErrInsufficientHistory) {
				helpers.Logger.Debugln(err)
			}
			if retry {
				// candles stay unacked so the bus redelivers them if this process goes away
				helpers.Logger.Errorln(fmt.Sprintf("Evaluating %s: %s", sgs.options.Symbol, err))
				if err := helpers.Sleep(ctx, sgs.options.RetryBackoff); err != nil {
					return ignoreCancel(err)
				}
				continue
			}
		}
		if len(unacked) == 0 {
			continue
		}

		if err := sgs.bus.Ack(ctx, streams.TopicCandles, signalGeneratorGroup, unacked...); err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("Acking candles: %s", err))
		}
		unacked = unacked[:0]
	}
}

// Process evaluates the active strategy over the latest window. It returns the emitted
// signal, or nil when the strategy holds, the bar was already evaluated or the rate limit dropped it.
// A bar whose signal could not be published is evaluated again by the next call.
func (sgs *SignalGeneratorService) Process(ctx context.Context) (*models.Signal, error) {
	if sgs.strategy == nil {
		return nil, fmt.Errorf("%w for %s", models.ErrNoActiveModel, sgs.options.Symbol)
	}

	bars, err := sgs.store.RecentBars(ctx, sgs.options.Symbol, sgs.options.Interval, sgs.options.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("loading window: %w", err)
	}
	if len(bars) < sgs.strategy.MinBars() {
		return nil, fmt.Errorf("%w: %d of %d bars for %s", models.ErrInsufficientHistory, len(bars),
			sgs.strategy.MinBars(), sgs.options.Symbol)
	}
	last := bars[len(bars)-1]
	if !last.Timestamp.After(sgs.lastEvaluated) {
		return nil, nil
	}

	points, err := sgs.engine.Points(bars)
	if err != nil {
		return nil, err
	}
	latest := points[len(points)-1].Features
	if err := sgs.publish(ctx, streams.TopicFeatures, latest); err != nil {
		helpers.Logger.Warnln(fmt.Sprintf("Publishing features: %s", err))
	}

	signalType := sgs.strategy.Evaluate(points)
	if signalType == models.SignalTypeHold {
		sgs.lastEvaluated = last.Timestamp
		return nil, nil
	}

	signal := models.NewSignal(uuid.NewString(), sgs.model.ID, sgs.options.Symbol, signalType,
		Strength(signalType, latest.RSI14), last.Close, last.Timestamp, latest.Snapshot())

	if !sgs.rateLimiter.Allow() {
		helpers.Logger.WithFields(log.Fields{
			"symbol": signal.Symbol,
			"signal": signal.Type,
			"limit":  sgs.options.MaxSignalsPerMinute,
		}).Warnln("Signal rate limit exceeded, dropping signal")
		sgs.lastEvaluated = last.Timestamp
		return nil, nil
	}

	if err := sgs.publish(ctx, streams.TopicSignals, signal); err != nil {
		return nil, fmt.Errorf("publishing signal: %w", err)
	}
	sgs.lastEvaluated = last.Timestamp
	if err := sgs.store.RecordSignal(ctx, signal); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Recording signal %s: %s", signal.ID, err))
	}
	helpers.Logger.WithFields(log.Fields{
		"symbol":   signal.Symbol,
		"signal":   signal.Type,
		"strength": signal.Strength,
		"price":    signal.Price,
	}).Infoln("Signal emitted")
	return &signal, nil
}

func (sgs *SignalGeneratorService) publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := streams.Encode(topic, payload)
	if err != nil {
		return err
	}
	_, err = sgs.bus.Publish(ctx, topic, data)
	return err
}

// Strength scores how strongly the rsi confirms the signal direction, in [0,1]
func Strength(signalType models.SignalType, rsi *float64) float64 {
	strength := 0.5
	if rsi == nil {
		return strength
	}
	switch signalType {
	case models.SignalTypeBuy:
		if *rsi < 30 {
			strength += 0.2
		} else if *rsi < 40 {
			strength += 0.1
		}
	case models.SignalTypeSell:
		if *rsi > 70 {
			strength += 0.2
		} else if *rsi > 60 {
			strength += 0.1
		}
	}
	return models.ClampStrength(strength)
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
