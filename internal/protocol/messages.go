package protocol

// Player as listed in a game snapshot.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DiceRoll is one roll of the current turn. Move is the face value.
type DiceRoll struct {
	Move   int  `json:"move"`
	IsUsed bool `json:"isUsed"`
}

// Token is the server's view of one piece.
type Token struct {
	Position int  `json:"position"`
	Finished bool `json:"finished"`
}

// LastDiceRoll is display-only; it survives the turn change that clears
// currentDiceRolls so the final face of a turn can still be shown.
type LastDiceRoll struct {
	PlayerIndex int    `json:"playerIndex"`
	Move        int    `json:"move"`
	Timestamp   int64  `json:"timestamp,omitempty"`
	RollID      string `json:"rollId,omitempty"`
}

// Snapshot is the full game state returned by every server call.
type Snapshot struct {
	GameID             string          `json:"gameId"`
	Started            bool            `json:"started"`
	End                bool            `json:"end"`
	CurrentPlayerID    string          `json:"currentPlayerId"`
	CurrentPlayerIndex int             `json:"currentPlayerIndex"`
	Players            []Player        `json:"players"`
	DiceRolls          []DiceRoll      `json:"currentDiceRolls"`
	Winners            []Player        `json:"winners"`
	Pieces             map[int][]Token `json:"playerPositions"`
	GameStatus         string          `json:"gameStatus,omitempty"`
	LastDiceRoll       *LastDiceRoll   `json:"lastDiceRoll,omitempty"`
}

// ErrorBody is what the server sends with a non-2xx status.
type ErrorBody struct {
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}
