// Package notify provides the leveled, fire-and-forget notification channel
// used by every component for operational messages. A failed notification
// must never fail the operation that produced it.
package notify

// Level is the severity attached to a notification.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelSevere  Level = "SEVERE"
)

// Notifier posts leveled messages to an out-of-band channel.
type Notifier interface {
	Info(message string)
	Warning(message string)
	Severe(message string)
}

// Nop discards every notification. Used in tests and when no Slack token
// is configured.
type Nop struct{}

func (Nop) Info(string)    {}
func (Nop) Warning(string) {}
func (Nop) Severe(string)  {}
