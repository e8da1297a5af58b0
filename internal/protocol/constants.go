package protocol

const (
	GameName = "Ludo"

	MaxPlayers      = 4
	MinPlayers      = 2
	TokensPerPlayer = 4

	// Logical positions, relative to the owner's start cell.
	YardPosition     = -1
	TrackLength      = 52
	LastTrackPos     = 49
	StretchStart     = 50
	StretchLength    = 5
	TerminalPosition = StretchStart + StretchLength - 1

	DiceSix = 6

	// Server gives at most three rolls per turn (three sixes end the turn).
	MaxRollsPerTurn = 3
)
