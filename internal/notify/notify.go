// Package notify delivers custody-change notices.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/assetpro/internal/model"
)

// CustodyChange describes a committed custody transfer.
type CustodyChange struct {
	AssetCode string
	AssetName string
	Value     int64
	FromName  string
	ToName    string
	ToEmail   string
	Note      string
	By        string
	At        time.Time
}

// Notifier is told about custody changes after they are committed. Errors
// are reported to the caller but never undo the change.
type Notifier interface {
	NotifyCustodyChange(ctx context.Context, c CustodyChange) error
}

// Noop discards notifications.
type Noop struct{}

// NotifyCustodyChange does nothing.
func (Noop) NotifyCustodyChange(context.Context, CustodyChange) error { return nil }

// Log writes notifications to a logger instead of sending them.
type Log struct {
	Logger *slog.Logger
}

// NotifyCustodyChange logs c at INFO level.
func (l Log) NotifyCustodyChange(_ context.Context, c CustodyChange) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("custody changed", "asset", c.AssetCode, "from", c.FromName, "to", c.ToName, "by", c.By)
	return nil
}

// Subject returns the email subject for a change.
func Subject(c CustodyChange) string {
	return fmt.Sprintf("[%s] custody transferred to %s", c.AssetCode, c.ToName)
}

// Body returns the plain-text email body for a change.
func Body(c CustodyChange) string {
	from := c.FromName
	if from == "" {
		from = "(nobody)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Asset:       %s %s\n", c.AssetCode, c.AssetName)
	fmt.Fprintf(&b, "Value:       %s\n", model.FormatMoney(c.Value))
	fmt.Fprintf(&b, "Previous:    %s\n", from)
	fmt.Fprintf(&b, "New:         %s\n", c.ToName)
	fmt.Fprintf(&b, "Recorded by: %s\n", c.By)
	if !c.At.IsZero() {
		fmt.Fprintf(&b, "Date:        %s\n", c.At.Format(time.DateTime))
	}
	if c.Note != "" {
		fmt.Fprintf(&b, "\n%s\n", c.Note)
	}
	return b.String()
}
