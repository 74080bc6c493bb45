package model

// PowerUpID identifies a power-up in the static catalog
type PowerUpID string

// AchievementID identifies an achievement in the static catalog
type AchievementID string

// PowerUp is a permanent, non-consumable purchase that multiplies future
// currency gains. Each id is purchasable at most once.
type PowerUp struct {
	ID     PowerUpID
	Label  string
	Cost   int64
	Factor int64
}

// Achievement is an irreversible milestone unlock. Satisfied reports whether
// the achievement's threshold predicate holds for the given state.
type Achievement struct {
	ID        AchievementID
	Label     string
	Satisfied func(*PlayerState) bool
}

// PowerUpCatalog is the static power-up catalog. Order is the display order.
var PowerUpCatalog = []PowerUp{
	{ID: "double_click", Label: "Double Click", Cost: 100, Factor: 2},
	{ID: "golden_cursor", Label: "Golden Cursor", Cost: 500, Factor: 3},
	{ID: "click_storm", Label: "Click Storm", Cost: 2500, Factor: 4},
	{ID: "midas_touch", Label: "Midas Touch", Cost: 10000, Factor: 5},
}

// AchievementCatalog is the static achievement catalog. Slice order is the
// canonical emission order: when several achievements become satisfied in
// one evaluation pass they unlock in this order.
var AchievementCatalog = []Achievement{
	{ID: "first_click", Label: "First Click",
		Satisfied: func(s *PlayerState) bool { return s.TotalClicks >= 1 }},
	{ID: "click_100", Label: "Click Apprentice",
		Satisfied: func(s *PlayerState) bool { return s.TotalClicks >= 100 }},
	{ID: "click_1k", Label: "Click Machine",
		Satisfied: func(s *PlayerState) bool { return s.TotalClicks >= 1000 }},
	{ID: "click_10k", Label: "Click Legend",
		Satisfied: func(s *PlayerState) bool { return s.TotalClicks >= 10000 }},
	{ID: "cash_100", Label: "Pocket Money",
		Satisfied: func(s *PlayerState) bool { return s.Currency >= 100 }},
	{ID: "cash_10k", Label: "High Roller",
		Satisfied: func(s *PlayerState) bool { return s.Currency >= 10000 }},
	{ID: "cash_1m", Label: "Millionaire",
		Satisfied: func(s *PlayerState) bool { return s.Currency >= 1000000 }},
	{ID: "streak_10", Label: "On Fire",
		Satisfied: func(s *PlayerState) bool { return s.BestStreak >= 10 }},
	{ID: "streak_50", Label: "Unstoppable",
		Satisfied: func(s *PlayerState) bool { return s.BestStreak >= 50 }},
	{ID: "first_power_up", Label: "Power Shopper",
		Satisfied: func(s *PlayerState) bool { return len(s.OwnedPowerUps) >= 1 }},
	{ID: "full_arsenal", Label: "Full Arsenal",
		Satisfied: func(s *PlayerState) bool { return len(s.OwnedPowerUps) >= len(PowerUpCatalog) }},
}
