package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
	"gitlab.com/aoterocom/AORiskTrader/models"
	"gitlab.com/aoterocom/AORiskTrader/risk"
)

// PositionTrackerService nets fills into long positions and feeds realized pnl back to the
// risk manager. Open positions live in the store, so a restart keeps the exposure.
type PositionTrackerService struct {
	store       interfaces.Store
	riskManager *risk.Manager
	now         func() time.Time
}

func NewPositionTrackerService(store interfaces.Store, riskManager *risk.Manager) *PositionTrackerService {
	return &PositionTrackerService{
		store:       store,
		riskManager: riskManager,
		now:         time.Now,
	}
}

// Apply returns the opened or closed position, nil when the fill changes nothing
func (pts *PositionTrackerService) Apply(ctx context.Context, order models.Order,
	result models.TradeResult) (*models.Position, error) {
	if result.Shadow || !result.Filled() {
		return nil, nil
	}

	position, err := pts.store.FindOpenPosition(ctx, order.ModelID, order.Symbol)
	if err != nil {
		return nil, fmt.Errorf("find open position: %w", err)
	}

	switch order.Side {
	case models.SideTypeBuy:
		if position != nil && !position.IsLong() {
			return nil, fmt.Errorf("open %s position %d on %s", position.Side, position.ID, order.Symbol)
		}
		if position != nil {
			helpers.Logger.Debugln(fmt.Sprintf("Already long on %s, ignoring buy %s", order.Symbol, order.ID))
			return nil, nil
		}
		position = models.NewPosition(order.ModelID, order.Symbol, result.FilledQuantity, result.FilledPrice,
			order.Mode, pts.now())
		if err := pts.store.OpenPosition(ctx, position); err != nil {
			return nil, fmt.Errorf("open position: %w", err)
		}
		helpers.Logger.WithFields(log.Fields{
			"symbol":   position.Symbol,
			"quantity":  position.Quantity,
			"entry":     position.EntryPrice,
			"costBasis": position.CostBasis(),
		}).Infoln("Position opened")
		return position, nil

	case models.SideTypeSell:
		if position == nil {
			helpers.Logger.Debugln(fmt.Sprintf("No open position on %s, ignoring sell %s", order.Symbol, order.ID))
			return nil, nil
		}
		pnl, err := position.Close(result.FilledPrice, result.FilledQuantity, pts.now())
		if err != nil {
			return nil, err
		}
		if err := pts.store.ClosePosition(ctx, position); err != nil {
			return nil, fmt.Errorf("close position: %w", err)
		}
		pts.riskManager.Update(pnl)
		state := pts.riskManager.State()
		helpers.Logger.WithFields(log.Fields{
			"symbol":            position.Symbol,
			"exit":              position.ExitPrice,
			"pnl":               pnl,
			"profitPct":         position.ProfitPct(),
			"dailyPnL":          state.DailyPnL,
			"consecutiveLosses": state.ConsecutiveLosses,
		}).Infoln("Position closed")
		return position, nil

	default:
		return nil, fmt.Errorf("unknown order side %q", order.Side)
	}
}
