// Package notify abstracts the user-visible toasts the storefront emits
// on cart and checkout events, so the core packages stay independent of
// the presentation layer.
package notify

import "log"

type Notifier interface {
	Success(title, description string)
	Error(title, description string)
}

// LogNotifier writes notices to a logger. It is the default sink when no
// UI is attached (tests, background tooling).
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Success(title, description string) {
	n.log("ok", title, description)
}

func (n LogNotifier) Error(title, description string) {
	n.log("error", title, description)
}

func (n LogNotifier) log(level, title, description string) {
	if n.Logger == nil {
		return
	}
	if description == "" {
		n.Logger.Printf("notice [%s] %s", level, title)
		return
	}
	n.Logger.Printf("notice [%s] %s: %s", level, title, description)
}

// Discard drops all notices.
type Discard struct{}

func (Discard) Success(string, string) {}
func (Discard) Error(string, string)   {}
