package request

// SignupRequest is the request body for creating an account
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ModeSelectRequest is the request body for choosing a game mode
type ModeSelectRequest struct {
	Mode string `json:"mode"`
}

// PlayerDetails is one seat in a PlayerDetailsRequest
type PlayerDetails struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PlayerDetailsRequest is the request body for filling the seats.
// Player2 is ignored in single mode.
type PlayerDetailsRequest struct {
	Player1 *PlayerDetails `json:"player1"`
	Player2 *PlayerDetails `json:"player2,omitempty"`
}

// UpdatePositionRequest is the request body sent by the board after a roll.
// Player is 1 or 2.
type UpdatePositionRequest struct {
	Dice   int `json:"dice"`
	Player int `json:"player"`
}
