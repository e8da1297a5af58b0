package protocol

// CurrentPlayer returns the acting player, if the index is valid.
func (s *Snapshot) CurrentPlayer() (Player, bool) {
	if s == nil || s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[s.CurrentPlayerIndex], true
}

// PlayerIndex finds a player by name, or -1.
func (s *Snapshot) PlayerIndex(name string) int {
	if s == nil || name == "" {
		return -1
	}
	for i, p := range s.Players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// TokensFor returns the pieces of one owner. A missing or short entry is
// padded with pieces in the yard so a partial snapshot still renders; ok is
// false when padding happened.
func (s *Snapshot) TokensFor(owner int) (tokens []Token, ok bool) {
	var got []Token
	if s != nil {
		got = s.Pieces[owner]
	}
	ok = len(got) >= TokensPerPlayer
	tokens = make([]Token, TokensPerPlayer)
	for i := range tokens {
		if i < len(got) {
			tokens[i] = got[i]
		} else {
			tokens[i] = Token{Position: YardPosition}
		}
	}
	return tokens, ok
}

// IsWinner reports whether the named player already finished.
func (s *Snapshot) IsWinner(name string) bool {
	if s == nil {
		return false
	}
	for _, w := range s.Winners {
		if w.Name == name {
			return true
		}
	}
	return false
}

// SixCount counts sixes in the current turn's rolls.
func (s *Snapshot) SixCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, r := range s.DiceRolls {
		if r.Move == DiceSix {
			n++
		}
	}
	return n
}
