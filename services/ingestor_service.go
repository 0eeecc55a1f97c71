package services

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
	"gitlab.com/aoterocom/AORiskTrader/models"
	"gitlab.com/aoterocom/AORiskTrader/streams"
)

// IngestorService copies closed exchange klines into the store and announces every new
// bar on the candles topic
type IngestorService struct {
	exchangeService interfaces.ExchangeService
	store           interfaces.Store
	bus             interfaces.Bus
	symbol          string
	interval        string
	now             func() time.Time
}

func NewIngestorService(exchangeService interfaces.ExchangeService, store interfaces.Store, bus interfaces.Bus,
	symbol string, interval string) *IngestorService {
	return &IngestorService{
		exchangeService: exchangeService,
		store:           store,
		bus:             bus,
		symbol:          symbol,
		interval:        interval,
		now:             time.Now,
	}
}

// Backfill fetches the last limit klines and returns how many new bars were stored
func (is *IngestorService) Backfill(ctx context.Context, limit int) (int, error) {
	period, err := helpers.IntervalDuration(is.interval)
	if err != nil {
		return 0, err
	}
	klines, err := is.exchangeService.Klines(ctx, is.symbol, is.interval, limit)
	if err != nil {
		return 0, fmt.Errorf("fetching klines: %w", err)
	}
	latest, err := is.store.LatestBar(ctx, is.symbol, is.interval)
	if err != nil {
		return 0, fmt.Errorf("loading latest bar: %w", err)
	}

	now := is.now()
	var fresh []models.Bar
	for _, bar := range klines {
		if bar.Timestamp.Add(period).After(now) {
			// still open
			continue
		}
		if latest != nil && !bar.Timestamp.After(latest.Timestamp) {
			continue
		}
		fresh = append(fresh, bar)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if _, err := is.store.UpsertBars(ctx, fresh); err != nil {
		return 0, fmt.Errorf("storing bars: %w", err)
	}
	for _, bar := range fresh {
		data, err := streams.Encode(streams.TopicCandles, bar)
		if err != nil {
			return 0, err
		}
		if _, err := is.bus.Publish(ctx, streams.TopicCandles, data); err != nil {
			return 0, fmt.Errorf("publishing candle: %w", err)
		}
	}
	helpers.Logger.Infoln(fmt.Sprintf("Ingested %d %s %s bars up to %s", len(fresh), is.symbol, is.interval,
		fresh[len(fresh)-1].Timestamp.UTC().Format(time.RFC3339)))
	return len(fresh), nil
}

// Run backfills every pollInterval until the context is done
func (is *IngestorService) Run(ctx context.Context, limit int, pollInterval time.Duration,
	retryBackoff time.Duration) error {
	for {
		wait := pollInterval
		if _, err := is.Backfill(ctx, limit); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			helpers.Logger.Errorln(fmt.Sprintf("Ingesting %s: %s", is.symbol, err))
			wait = retryBackoff
		}
		if err := helpers.Sleep(ctx, wait); err != nil {
			return ignoreCancel(err)
		}
	}
}
