package profile

import (
	"errors"
	"io/fs"
	"os"
	"strings"
)

const (
	nameFile = "player.txt"
	gameFile = "last_game.txt"
)

// Profile reads and writes one profile's files.
type Profile struct {
	id string
}

func Open(configured string) Profile { return Profile{id: ID(configured)} }

func (p Profile) ID() string { return p.id }

func (p Profile) SaveName(name string) error { return p.save(nameFile, name) }

// Name is the remembered player name, empty if none.
func (p Profile) Name() (string, error) { return p.load(nameFile) }

// SaveLastGame remembers the game this profile last joined as name, so the
// lobby can offer to go back to it.
func (p Profile) SaveLastGame(gameID string) error { return p.save(gameFile, gameID) }

func (p Profile) LastGame() (string, error) { return p.load(gameFile) }

func (p Profile) ForgetLastGame() error {
	path, err := Path(p.id, gameFile)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (p Profile) save(file, v string) error {
	path, err := Path(p.id, file)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.TrimSpace(v)), 0o644)
}

func (p Profile) load(file string) (string, error) {
	path, err := Path(p.id, file)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil // missing is fine
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
