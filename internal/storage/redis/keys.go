package redis

import (
	"fmt"

	"github.com/taptowin/taptowin/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "taptowin"

// playerKey returns the Redis key for a PlayerState record
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// currencyIndexKey returns the Redis key for the ZSET of players scored by
// currency, used to serve leaderboard reads
func currencyIndexKey() string {
	return fmt.Sprintf("%s:idx:currency", keyPrefix)
}
