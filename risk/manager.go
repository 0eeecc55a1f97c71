package risk

import (
	"fmt"
	"time"

	"gitlab.com/aoterocom/AORiskTrader/models"
)

// Limits are the static risk limits
type Limits struct {
	MaxPositionSize      float64 `json:"maxPositionSize"`
	MaxDailyLoss         float64 `json:"maxDailyLoss"`
	MaxConsecutiveLosses int     `json:"maxConsecutiveLosses"`
}

type Action string

const (
	ActionAllow Action = "ALLOW"
	ActionDeny  Action = "DENY"
)

type Reason string

const (
	ReasonNone              Reason = ""
	ReasonMaxPositionSize   Reason = "MAX_POSITION_SIZE"
	ReasonMaxDailyLoss      Reason = "MAX_DAILY_LOSS"
	ReasonConsecutiveLosses Reason = "MAX_CONSECUTIVE_LOSSES"
)

// Decision is the outcome of a pre-trade check
type Decision struct {
	Action  Action
	Reason  Reason
	Message string
}

func (d Decision) Allowed() bool {
	return d.Action == ActionAllow
}

// Err wraps a denial into models.ErrRiskRejected, nil when allowed
func (d Decision) Err() error {
	if d.Allowed() {
		return nil
	}
	return fmt.Errorf("%w: %s", models.ErrRiskRejected, d.Message)
}

// Manager gates orders against the limits and tracks realized results.
// It has a single writer and does no locking.
type Manager struct {
	limits Limits
	state  models.RiskState
}

func NewManager(limits Limits) *Manager {
	return &Manager{limits: limits}
}

// Check evaluates the order in order: notional, daily loss, consecutive losses.
// The first failing check wins. State is never mutated.
func (m *Manager) Check(order models.Order) Decision {
	notional := order.Notional()
	if notional > m.limits.MaxPositionSize {
		return Decision{
			Action:  ActionDeny,
			Reason:  ReasonMaxPositionSize,
			Message: fmt.Sprintf("position size %.2f exceeds limit %.2f", notional, m.limits.MaxPositionSize),
		}
	}

	if m.state.DailyPnL < -m.limits.MaxDailyLoss {
		return Decision{
			Action:  ActionDeny,
			Reason:  ReasonMaxDailyLoss,
			Message: fmt.Sprintf("daily loss %.2f exceeds limit %.2f", -m.state.DailyPnL, m.limits.MaxDailyLoss),
		}
	}

	if m.state.ConsecutiveLosses >= m.limits.MaxConsecutiveLosses {
		return Decision{
			Action: ActionDeny,
			Reason: ReasonConsecutiveLosses,
			Message: fmt.Sprintf("consecutive losses %d reached limit %d", m.state.ConsecutiveLosses,
				m.limits.MaxConsecutiveLosses),
		}
	}

	return Decision{Action: ActionAllow, Reason: ReasonNone}
}

// Update records the realized pnl of a closed position
func (m *Manager) Update(pnl float64) {
	m.state.DailyPnL += pnl
	if pnl < 0 {
		m.state.ConsecutiveLosses++
	} else {
		m.state.ConsecutiveLosses = 0
	}
}

func (m *Manager) Reset() {
	m.state = models.RiskState{}
}

func (m *Manager) State() models.RiskState {
	return m.state
}

func (m *Manager) Limits() Limits {
	return m.limits
}

// DailyResetter resets a Manager the first time it is ticked on a new UTC day
type DailyResetter struct {
	manager *Manager
	day     time.Time
}

func NewDailyResetter(manager *Manager, now time.Time) *DailyResetter {
	return &DailyResetter{manager: manager, day: utcDay(now)}
}

// Tick returns true when it reset the manager
func (r *DailyResetter) Tick(now time.Time) bool {
	day := utcDay(now)
	if !day.After(r.day) {
		return false
	}
	r.day = day
	r.manager.Reset()
	return true
}

func utcDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
