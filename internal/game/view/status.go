package view

import (
	"fmt"
	"time"

	"ludo/client/internal/game/dice"
	"ludo/client/internal/protocol"
)

// Status is the one-line summary under the board.
func (m *Model) Status(now time.Time) string {
	if !m.haveSnap {
		if m.GameID() == "" {
			return "Create a game or join one"
		}
		return "Loading game..."
	}
	if m.Dice.Phase() == dice.Rolling {
		return "Rolling..."
	}
	return statusLine(m.snap, m.Session.Name())
}

func statusLine(s protocol.Snapshot, me string) string {
	if s.End {
		return gameOverText(s)
	}
	if !s.Started {
		n := len(s.Players)
		if n < protocol.MinPlayers {
			return fmt.Sprintf("Waiting for players (%d/%d). Share the game ID.", n, protocol.MaxPlayers)
		}
		return fmt.Sprintf("%d players in. Press Start when everyone is here.", n)
	}

	p, _ := s.CurrentPlayer()
	mine := p.Name != "" && p.Name == me
	rolls := s.DiceRolls
	if len(rolls) == 0 {
		if mine {
			return "It's your turn - roll the dice!"
		}
		return fmt.Sprintf("Waiting for %s to roll...", p.Name)
	}
	last := rolls[len(rolls)-1]
	if last.Move == protocol.DiceSix && len(rolls) < protocol.MaxRollsPerTurn {
		if mine {
			return "You rolled a 6! Roll again."
		}
		return fmt.Sprintf("%s rolled a 6 and rolls again.", p.Name)
	}
	if mine {
		if v, ok := dice.NextUsable(rolls); ok {
			return fmt.Sprintf("Move a piece %d steps.", v)
		}
		return "Move a piece with the values rolled."
	}
	return fmt.Sprintf("%s is moving.", p.Name)
}

// MustRollAgain reports whether the acting player has to roll before moving.
func MustRollAgain(s protocol.Snapshot) bool {
	n := len(s.DiceRolls)
	return n > 0 && s.DiceRolls[n-1].Move == protocol.DiceSix && n < protocol.MaxRollsPerTurn
}
