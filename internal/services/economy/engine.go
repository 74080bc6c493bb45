package economy

import (
	"log/slog"

	"github.com/taptowin/taptowin/internal/model"
	"github.com/taptowin/taptowin/internal/services/metrics"
	"github.com/taptowin/taptowin/internal/services/multiplier"
)

// DefaultBaseValue is the currency earned by a single unmultiplied click
const DefaultBaseValue int64 = 1

// Engine converts click events into currency deltas under the stacking
// multiplier model. Currency is integer-valued so repeated increments can
// never drift from a recomputation from scratch.
type Engine struct {
	baseValue   int64
	multipliers *multiplier.Stack
	metrics     *metrics.Tracker
	logger      *slog.Logger
}

// New creates an Engine with the default per-click base value
func New(multipliers *multiplier.Stack, tracker *metrics.Tracker, logger *slog.Logger) *Engine {
	return &Engine{
		baseValue:   DefaultBaseValue,
		multipliers: multipliers,
		metrics:     tracker,
		logger:      logger,
	}
}

// ApplyClick records a click, credits baseValue times the effective
// multiplier, and returns the credited delta
func (e *Engine) ApplyClick(state *model.PlayerState) int64 {
	e.metrics.RecordClick(state)

	delta := e.baseValue * e.multipliers.EffectiveMultiplier(state)
	state.Currency += delta
	return delta
}

// PurchasePowerUp buys a power-up and debits its cost. A rejected purchase
// leaves the state unchanged; a successful one can never drive currency
// negative because the stack validates affordability first.
func (e *Engine) PurchasePowerUp(state *model.PlayerState, id model.PowerUpID) (model.PowerUp, error) {
	p, err := e.multipliers.Purchase(state, id)
	if err != nil {
		return model.PowerUp{}, err
	}

	state.Currency -= p.Cost

	e.logger.Info("power-up purchased",
		slog.String("player_id", string(state.PlayerID)),
		slog.String("power_up", string(id)),
		slog.Int64("cost", p.Cost),
		slog.Int64("currency_after", state.Currency),
	)

	return p, nil
}
