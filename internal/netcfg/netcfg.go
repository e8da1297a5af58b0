package netcfg

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIBase        = "http://localhost:8080/ludo/backend/v1"
	DefaultPollInterval   = 5 * time.Second
	DefaultAnimDuration   = 800 * time.Millisecond
	DefaultRequestTimeout = 8 * time.Second
)

// Config is everything the client reads from the environment at startup.
type Config struct {
	APIBase        string
	PollInterval   time.Duration
	AnimDuration   time.Duration
	RequestTimeout time.Duration
	Debug          bool
	Profile        string
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	// bare numbers are milliseconds
	if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

// Load reads an optional .env file from the working directory (or the files
// given) and then the LUDO_* environment variables. Values already present in
// the environment win over the file.
func Load(files ...string) Config {
	_ = godotenv.Load(files...) // missing .env is fine

	debug, _ := strconv.ParseBool(getenv("LUDO_DEBUG", "false"))
	return Config{
		APIBase:        strings.TrimRight(getenv("LUDO_API_BASE", DefaultAPIBase), "/"),
		PollInterval:   getdur("LUDO_POLL_INTERVAL", DefaultPollInterval),
		AnimDuration:   getdur("LUDO_ANIM_DURATION", DefaultAnimDuration),
		RequestTimeout: getdur("LUDO_REQUEST_TIMEOUT", DefaultRequestTimeout),
		Debug:          debug,
		Profile:        getenv("LUDO_PROFILE", ""),
	}
}
