package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger for the HTTP layer. Nop until SetLogger.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// defaultLogLevel is read once from GEMMAD_REQUEST_LOG; unset means info.
var defaultLogLevel = func() LogLevel {
	v, ok := os.LookupEnv("GEMMAD_REQUEST_LOG")
	if !ok {
		return LevelInfo
	}
	return parseLevel(v)
}()

func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logGenerate emits the end-of-request line for /generate at the request's
// log level. Errors are logged at LevelError and above, successes at
// LevelInfo and above.
func logGenerate(r *http.Request, lvl LogLevel, start time.Time, status int, err error) {
	if lvl == LevelOff || (err == nil && lvl < LevelInfo) {
		return
	}
	var ev *zerolog.Event
	if err != nil {
		ev = zlog.Error().Err(err)
	} else {
		ev = zlog.Info()
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	ev.Int("status", status).Dur("dur", time.Since(start)).Msg("generate end")
}
