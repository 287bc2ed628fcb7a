// internal/notify/terminal.go
package notify

import (
	"fmt"
	"log/slog"
	"os"
)

// Terminal returns a channel that logs the alert and rings the terminal
// bell.
func Terminal() Channel {
	return func(alert Alert) error {
		slog.Info("alert", "kind", alert.Kind, "room", alert.Room, "reason", alert.Reason)
		fmt.Fprint(os.Stderr, "\a")
		return nil
	}
}
