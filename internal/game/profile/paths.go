// Package profile keeps what a client remembers between runs: the player's
// name and the game it last sat at. Every profile is its own directory under
// the OS config dir, so two copies of the binary on one machine can play
// each other without sharing a name.
package profile

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	appDir   = "Ludo"
	maxIDLen = 40
)

// slug turns a profile name into a directory name: lowercase ASCII letters,
// digits and ".-_", blanks as underscores.
func slug(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return '_'
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return -1
	}, strings.ToLower(strings.TrimSpace(s)))
	if len(s) > maxIDLen {
		s = s[:maxIDLen]
	}
	if s == "" {
		return "default"
	}
	return s
}

// ID is the configured profile name if there is one, otherwise a name
// derived from the running binary.
func ID(configured string) string {
	if name := strings.TrimSpace(configured); name != "" {
		return slug(name)
	}
	return binaryID()
}

// binaryID is the executable's name plus 8 hex chars of its resolved path.
func binaryID() string {
	exe, err := os.Executable()
	if err != nil {
		return "default"
	}
	if real, err := filepath.EvalSymlinks(exe); err == nil {
		exe = real
	}
	sum := sha1.Sum([]byte(exe))
	name := strings.TrimSuffix(filepath.Base(exe), filepath.Ext(exe))
	return slug(name) + "-" + hex.EncodeToString(sum[:4])
}

// Dir returns the profile's directory, creating it if needed. On Linux that
// is $XDG_CONFIG_HOME/Ludo/<id>.
func Dir(id string) (string, error) {
	root, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("profile dir: %w", err)
		}
		root = filepath.Join(home, ".config")
	}
	dir := filepath.Join(root, appDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("profile dir: %w", err)
	}
	return dir, nil
}

func Path(id, file string) (string, error) {
	dir, err := Dir(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, file), nil
}
