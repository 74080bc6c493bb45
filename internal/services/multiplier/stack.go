package multiplier

import (
	"github.com/taptowin/taptowin/internal/model"
)

// Stack owns the static power-up catalog and answers the current effective
// multiplier for a player's owned set
type Stack struct {
	catalog []model.PowerUp
	byID    map[model.PowerUpID]model.PowerUp
}

// New creates a Stack over the static catalog
func New() *Stack {
	return NewWithCatalog(model.PowerUpCatalog)
}

// NewWithCatalog creates a Stack over a custom catalog (used by tests)
func NewWithCatalog(catalog []model.PowerUp) *Stack {
	byID := make(map[model.PowerUpID]model.PowerUp, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	return &Stack{catalog: catalog, byID: byID}
}

// Catalog returns the power-up catalog in display order
func (s *Stack) Catalog() []model.PowerUp {
	out := make([]model.PowerUp, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// EffectiveMultiplier returns the product of factors of all owned power-ups,
// or 1 when none are owned
func (s *Stack) EffectiveMultiplier(state *model.PlayerState) int64 {
	result := int64(1)
	for _, id := range state.OwnedPowerUps {
		if p, ok := s.byID[id]; ok {
			result *= p.Factor
		}
	}
	return result
}

// Purchase validates and applies a power-up purchase. On success the id is
// added to the owned set and the catalog entry is returned; the caller is
// responsible for debiting its cost. On failure the state is untouched.
// A second purchase of an owned id reports ErrAlreadyOwned, never a
// double-apply.
func (s *Stack) Purchase(state *model.PlayerState, id model.PowerUpID) (model.PowerUp, error) {
	p, ok := s.byID[id]
	if !ok {
		return model.PowerUp{}, model.ErrUnknownPowerUp
	}
	if state.OwnsPowerUp(id) {
		return model.PowerUp{}, model.ErrAlreadyOwned
	}
	if state.Currency < p.Cost {
		return model.PowerUp{}, model.ErrInsufficientFunds
	}

	state.AddPowerUp(id)
	return p, nil
}
