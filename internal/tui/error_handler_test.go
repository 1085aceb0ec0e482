package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ajramos/mailpilot/internal/api"
	"github.com/ajramos/mailpilot/internal/screens"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newDirectHandler builds a handler without an application, so updates run inline
func newDirectHandler(t *testing.T) (*ErrorHandler, *tview.TextView, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	statusView := tview.NewTextView()
	eh := NewErrorHandler(nil, nil, statusView, zap.New(core))
	t.Cleanup(eh.Close)
	return eh, statusView, logs
}

func TestNewErrorHandler(t *testing.T) {
	app := tview.NewApplication()
	statusView := tview.NewTextView()
	logger := zap.NewNop()

	eh := NewErrorHandler(app, nil, statusView, logger)

	require.NotNil(t, eh)
	assert.Equal(t, app, eh.app)
	assert.Nil(t, eh.appRef)
	assert.Equal(t, statusView, eh.statusView)
	assert.Equal(t, logger, eh.logger)
	assert.Empty(t, eh.currentStatus)
	assert.Empty(t, eh.persistentStatus)
}

func TestNewErrorHandler_NilLogger(t *testing.T) {
	eh := NewErrorHandler(nil, nil, nil, nil)

	require.NotNil(t, eh.logger)
	assert.NotPanics(t, func() {
		eh.HandleError(context.Background(), errors.New("boom"), "x")
	})
	eh.Close()
}

func TestErrorHandler_HandleError(t *testing.T) {
	cases := map[string]struct {
		err  error
		msg  string
		want string
	}{
		"plain": {
			err:  errors.New("boom"),
			msg:  "Refresh failed",
			want: "[x[] Refresh failed",
		},
		"empty message": {
			err:  errors.New("boom"),
			want: "An error occurred",
		},
		"not found": {
			err:  fmt.Errorf("get: %w", api.ErrNotFound),
			msg:  "Email",
			want: "Email: not found",
		},
		"transport": {
			err:  &api.RequestError{Op: api.OpListEmails, Err: errors.New("connection refused")},
			msg:  "Refresh failed",
			want: "Refresh failed: backend unreachable",
		},
		"http status": {
			err:  &api.RequestError{Op: api.OpListEmails, Status: 500},
			msg:  "Refresh failed",
			want: "Refresh failed (HTTP 500)",
		},
		"busy": {
			err:  screens.ErrBusy,
			msg:  "Send failed",
			want: "[!] Still working, please wait",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			eh, statusView, logs := newDirectHandler(t)
			eh.HandleError(context.Background(), tc.err, tc.msg)

			assert.Contains(t, eh.Status(), tc.want)
			assert.Contains(t, statusView.GetText(false), tc.want)
			assert.Equal(t, 1, logs.FilterMessage("operation failed").Len())
		})
	}
}

func TestErrorHandler_HandleError_IgnoresNilAndCanceled(t *testing.T) {
	eh, _, logs := newDirectHandler(t)

	eh.HandleError(context.Background(), nil, "nothing")
	assert.Zero(t, logs.Len())

	eh.HandleError(context.Background(), fmt.Errorf("list: %w", context.Canceled), "Refresh failed")
	assert.Equal(t, "mailpilot | ? help | q quit", eh.Status())
}

func TestErrorHandler_formatMessage(t *testing.T) {
	eh := &ErrorHandler{}

	testCases := []struct {
		message  string
		level    LogLevel
		wantIcon string
	}{
		{"Test info", LogLevelInfo, "[i[]"},
		{"Test warning", LogLevelWarning, "[!]"},
		{"Test error", LogLevelError, "[x[]"},
		{"Test success", LogLevelSuccess, "[ok[]"},
		{"Test unknown", LogLevel(99), "-"},
	}

	for _, tc := range testCases {
		result := eh.formatMessage(tc.message, tc.level)
		assert.Contains(t, result, tc.wantIcon)
		assert.Contains(t, result, tc.message)
	}
}

func TestErrorHandler_formatMessage_EscapesTags(t *testing.T) {
	eh := &ErrorHandler{}
	result := eh.formatMessage("template [reply] saved", LogLevelSuccess)
	assert.Contains(t, result, "[reply[]")
}

func TestErrorHandler_levelToString(t *testing.T) {
	eh := &ErrorHandler{}

	testCases := []struct {
		level LogLevel
		want  string
	}{
		{LogLevelInfo, "INFO"},
		{LogLevelWarning, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevelSuccess, "SUCCESS"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, eh.levelToString(tc.level))
	}
}

func TestErrorHandler_levelToColor_NilAppRef(t *testing.T) {
	eh := &ErrorHandler{}

	assert.Equal(t, tcell.ColorBlue, eh.levelToColor(LogLevelInfo))
	assert.Equal(t, tcell.ColorYellow, eh.levelToColor(LogLevelWarning))
	assert.Equal(t, tcell.ColorRed, eh.levelToColor(LogLevelError))
	assert.Equal(t, tcell.ColorGreen, eh.levelToColor(LogLevelSuccess))
}

func TestErrorHandler_PersistentAndTransient(t *testing.T) {
	eh, statusView, _ := newDirectHandler(t)
	ctx := context.Background()

	eh.ShowProgress(ctx, "Fetching new mail...")
	assert.Contains(t, eh.Status(), "Fetching new mail...")

	// a transient message wins over the progress line while it is shown
	eh.ShowSuccess(ctx, "Inbox refreshed")
	assert.Contains(t, statusView.GetText(false), "Inbox refreshed")

	eh.clearCurrentStatusSafely(eh.Status())
	assert.Contains(t, eh.Status(), "Fetching new mail...")

	eh.ClearProgress()
	assert.Equal(t, "mailpilot | ? help | q quit", eh.Status())
}

func TestErrorHandler_StaleClearKeepsNewerMessage(t *testing.T) {
	eh, _, _ := newDirectHandler(t)
	ctx := context.Background()

	eh.ShowInfo(ctx, "first")
	first := eh.Status()
	eh.ShowWarning(ctx, "second")

	eh.clearCurrentStatusSafely(first)
	assert.Contains(t, eh.Status(), "second")
}

func TestErrorHandler_BlankMessageIgnored(t *testing.T) {
	eh, _, logs := newDirectHandler(t)
	eh.ShowInfo(context.Background(), "   ")
	assert.Zero(t, logs.Len())
	assert.Empty(t, eh.currentStatus)
}
