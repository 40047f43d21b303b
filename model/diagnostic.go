package model

import "fmt"

// Severity grades a diagnostic event.
type Severity int

const (
	// SeverityInfo records normal progress.
	SeverityInfo Severity = iota
	// SeverityWarning records a recoverable problem.
	SeverityWarning
	// SeverityError records a failure.
	SeverityError
)

// String returns "INFO", "WARNING" or "ERROR".
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "INFO":
		*s = SeverityInfo
	case "WARNING":
		*s = SeverityWarning
	case "ERROR":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", string(b))
	}
	return nil
}

// DiagnosticEvent is a single log entry attached to a report.
// Events are append-only; their order is the order they happened in.
type DiagnosticEvent struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// String formats the event as "LEVEL: message".
func (d DiagnosticEvent) String() string {
	return d.Severity.String() + ": " + d.Message
}

// Infof creates an Info event
func Infof(format string, args ...any) DiagnosticEvent {
	return DiagnosticEvent{Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)}
}

// Warningf creates a Warning event
func Warningf(format string, args ...any) DiagnosticEvent {
	return DiagnosticEvent{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// Errorf creates an Error event
func Errorf(format string, args ...any) DiagnosticEvent {
	return DiagnosticEvent{Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}
