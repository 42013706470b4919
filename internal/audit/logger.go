package audit

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Event represents an audit log event for an authentication or
// organization action.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Action    string    `json:"action"`
	User      string    `json:"user,omitempty"`
	Target    string    `json:"target,omitempty"`
	Details   string    `json:"details,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

var auditLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Log records an audit event.
func Log(service, action, user, target, details string, success bool, err error) {
	event := auditLogger.Log().
		Time("timestamp", time.Now().UTC()).
		Str("service", service).
		Str("action", action).
		Bool("success", success)
	if user != "" {
		event = event.Str("user", user)
	}
	if target != "" {
		event = event.Str("target", target)
	}
	if details != "" {
		event = event.Str("details", details)
	}
	if err != nil {
		event = event.Str("error", err.Error())
	}
	event.Msg("audit")
}
