package achievement

import (
	"log/slog"

	"github.com/taptowin/taptowin/internal/model"
)

// Evaluator checks player state against the static achievement catalog and
// unlocks each achievement at most once
type Evaluator struct {
	catalog []model.Achievement
	logger  *slog.Logger
}

// New creates an Evaluator over the static catalog
func New(logger *slog.Logger) *Evaluator {
	return NewWithCatalog(model.AchievementCatalog, logger)
}

// NewWithCatalog creates an Evaluator over a custom catalog (used by tests)
func NewWithCatalog(catalog []model.Achievement, logger *slog.Logger) *Evaluator {
	return &Evaluator{catalog: catalog, logger: logger}
}

// Evaluate checks every not-yet-unlocked achievement against the state,
// records newly satisfied ones, and returns them in catalog order. Running
// Evaluate again on an unchanged state unlocks nothing, so emission is
// exactly-once per achievement.
func (e *Evaluator) Evaluate(state *model.PlayerState) []model.Achievement {
	var unlocked []model.Achievement
	for _, a := range e.catalog {
		if state.HasAchievement(a.ID) {
			continue
		}
		if !a.Satisfied(state) {
			continue
		}

		state.AddAchievement(a.ID)
		unlocked = append(unlocked, a)

		e.logger.Info("achievement unlocked",
			slog.String("player_id", string(state.PlayerID)),
			slog.String("achievement", string(a.ID)),
		)
	}
	return unlocked
}
