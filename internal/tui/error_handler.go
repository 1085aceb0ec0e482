package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ajramos/mailpilot/internal/api"
	"github.com/ajramos/mailpilot/internal/screens"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"go.uber.org/zap"
)

// LogLevel represents the severity of a message
type LogLevel int

const (
	LogLevelInfo LogLevel = iota
	LogLevelWarning
	LogLevelError
	LogLevelSuccess
)

const statusTimeout = 5 * time.Second

// ErrorHandler owns the status bar: transient messages, a persistent
// progress line and the baseline hints
type ErrorHandler struct {
	mu         sync.RWMutex
	app        *tview.Application
	appRef     *App // Reference to main App for baseline status and colors
	statusView *tview.TextView
	logger     *zap.Logger

	// Status message state
	currentStatus    string
	currentLevel     LogLevel
	persistentStatus string
	statusTimer      *time.Timer
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(app *tview.Application, appRef *App, statusView *tview.TextView, logger *zap.Logger) *ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorHandler{
		app:        app,
		appRef:     appRef,
		statusView: statusView,
		logger:     logger,
	}
}

// HandleError logs err and shows userMsg. Errors the user can act on get a
// more specific message.
func (eh *ErrorHandler) HandleError(ctx context.Context, err error, userMsg string) {
	if err == nil {
		return
	}

	eh.logger.Error("operation failed", zap.String("message", userMsg), zap.Error(err))

	if userMsg == "" {
		userMsg = "An error occurred"
	}

	switch {
	case errors.Is(err, screens.ErrBusy):
		eh.ShowMessage(ctx, "Still working, please wait", LogLevelWarning)
		return
	case errors.Is(err, context.Canceled):
		return
	case errors.Is(err, api.ErrNotFound):
		userMsg += ": not found"
	default:
		var reqErr *api.RequestError
		if errors.As(err, &reqErr) {
			if reqErr.IsTransport() {
				userMsg += ": backend unreachable"
			} else {
				userMsg += fmt.Sprintf(" (HTTP %d)", reqErr.Status)
			}
		}
	}

	eh.ShowMessage(ctx, userMsg, LogLevelError)
}

// ShowMessage displays a message to the user
func (eh *ErrorHandler) ShowMessage(ctx context.Context, msg string, level LogLevel) {
	if strings.TrimSpace(msg) == "" {
		return
	}

	formattedMsg := eh.formatMessage(msg, level)
	eh.logger.Debug("status", zap.String("level", eh.levelToString(level)), zap.String("message", msg))

	eh.dispatch(func() {
		eh.updateStatusMessage(formattedMsg, level)
	})
}

// ShowPersistentMessage shows a status line that stays until cleared
func (eh *ErrorHandler) ShowPersistentMessage(ctx context.Context, msg string, level LogLevel) {
	formattedMsg := eh.formatMessage(msg, level)
	eh.dispatch(func() {
		eh.updatePersistentStatus(formattedMsg)
	})
}

// ClearPersistentMessage clears the persistent status message
func (eh *ErrorHandler) ClearPersistentMessage() {
	eh.dispatch(func() {
		eh.updatePersistentStatus("")
	})
}

// dispatch runs f on the UI goroutine
func (eh *ErrorHandler) dispatch(f func()) {
	switch {
	case eh.appRef != nil:
		eh.appRef.queue(f)
	case eh.app != nil:
		eh.app.QueueUpdateDraw(f)
	default:
		f()
	}
}

// formatMessage prefixes a message with a level marker
func (eh *ErrorHandler) formatMessage(msg string, level LogLevel) string {
	var icon string

	switch level {
	case LogLevelInfo:
		icon = "[i]"
	case LogLevelWarning:
		icon = "[!]"
	case LogLevelError:
		icon = "[x]"
	case LogLevelSuccess:
		icon = "[ok]"
	default:
		icon = "-"
	}

	return fmt.Sprintf("%s %s", tview.Escape(icon), tview.Escape(msg))
}

// levelToString converts LogLevel to string
func (eh *ErrorHandler) levelToString(level LogLevel) string {
	switch level {
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarning:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelSuccess:
		return "SUCCESS"
	default:
		return "UNKNOWN"
	}
}

// levelToColor converts LogLevel to the theme status color
func (eh *ErrorHandler) levelToColor(level LogLevel) tcell.Color {
	if eh.appRef == nil {
		switch level {
		case LogLevelWarning:
			return tcell.ColorYellow
		case LogLevelError:
			return tcell.ColorRed
		case LogLevelSuccess:
			return tcell.ColorGreen
		default:
			return tcell.ColorBlue
		}
	}

	switch level {
	case LogLevelWarning:
		return eh.appRef.getStatusColor("warning")
	case LogLevelError:
		return eh.appRef.getStatusColor("error")
	case LogLevelSuccess:
		return eh.appRef.getStatusColor("success")
	default:
		return eh.appRef.getStatusColor("info")
	}
}

// updateStatusMessage shows msg and schedules its removal
func (eh *ErrorHandler) updateStatusMessage(msg string, level LogLevel) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	if eh.statusTimer != nil {
		eh.statusTimer.Stop()
	}

	eh.currentStatus = msg
	eh.currentLevel = level
	eh.refreshStatusDisplayLocked()

	eh.statusTimer = time.AfterFunc(statusTimeout, func() {
		eh.clearCurrentStatusSafely(msg)
	})
}

// clearCurrentStatusSafely clears the message unless a newer one replaced it
func (eh *ErrorHandler) clearCurrentStatusSafely(expectedMsg string) {
	eh.dispatch(func() {
		eh.mu.Lock()
		defer eh.mu.Unlock()

		if eh.currentStatus == expectedMsg {
			eh.currentStatus = ""
			eh.refreshStatusDisplayLocked()
		}
	})
}

// updatePersistentStatus updates the persistent status
func (eh *ErrorHandler) updatePersistentStatus(msg string) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	eh.persistentStatus = msg
	eh.refreshStatusDisplayLocked()
}

// refreshStatusDisplay redraws the status line; UI goroutine only
func (eh *ErrorHandler) refreshStatusDisplay() {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	eh.refreshStatusDisplayLocked()
}

func (eh *ErrorHandler) refreshStatusDisplayLocked() {
	if eh.statusView == nil {
		return
	}

	switch {
	case eh.currentStatus != "":
		eh.statusView.SetTextColor(eh.levelToColor(eh.currentLevel))
		eh.statusView.SetText(eh.currentStatus)
	case eh.persistentStatus != "":
		eh.statusView.SetTextColor(eh.levelToColor(LogLevelInfo))
		eh.statusView.SetText(eh.persistentStatus)
	default:
		eh.statusView.SetTextColor(tview.Styles.PrimaryTextColor)
		eh.statusView.SetText(eh.getBaselineStatus())
	}
}

// Status returns the text currently shown
func (eh *ErrorHandler) Status() string {
	eh.mu.RLock()
	defer eh.mu.RUnlock()
	switch {
	case eh.currentStatus != "":
		return eh.currentStatus
	case eh.persistentStatus != "":
		return eh.persistentStatus
	}
	return eh.getBaselineStatus()
}

// getBaselineStatus returns the baseline status text
func (eh *ErrorHandler) getBaselineStatus() string {
	if eh.appRef != nil {
		return tview.Escape(eh.appRef.statusBaseline())
	}
	return "mailpilot | ? help | q quit"
}

// Close stops the pending auto-clear timer
func (eh *ErrorHandler) Close() {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	if eh.statusTimer != nil {
		eh.statusTimer.Stop()
		eh.statusTimer = nil
	}
}

// ShowInfo shows an info message
func (eh *ErrorHandler) ShowInfo(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelInfo)
}

// ShowWarning shows a warning message
func (eh *ErrorHandler) ShowWarning(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelWarning)
}

// ShowSuccess shows a success message
func (eh *ErrorHandler) ShowSuccess(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelSuccess)
}

// ShowProgress shows a progress message
func (eh *ErrorHandler) ShowProgress(ctx context.Context, msg string) {
	eh.ShowPersistentMessage(ctx, msg, LogLevelInfo)
}

// ClearProgress clears any progress message
func (eh *ErrorHandler) ClearProgress() {
	eh.ClearPersistentMessage()
}
