package redis

import (
	"fmt"
	"strings"

	"github.com/mcoot/snakeladder/internal/model"
)

// Key prefix for all snake and ladder data
const keyPrefix = "snl"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// emailIndexKey returns the Redis key for the email -> user_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, strings.ToLower(email))
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// activeGameKey returns the Redis key for the user_id -> active game_id index
func activeGameKey(userID model.UserID) string {
	return fmt.Sprintf("%s:idx:active_game:%s", keyPrefix, userID)
}
