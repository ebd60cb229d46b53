package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCLILogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			require.NotNil(t, NewCLILogger(level))
		})
	}
}

func TestCLIHandler_Message(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo))

	logger.Info("assessed", "band", "Low", "index", 2)

	assert.Equal(t, "assessed: band=Low index=2\n", buf.String())
}

func TestCLIHandler_NoColorWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo))

	logger.Error("failed")

	assert.NotContains(t, buf.String(), colorRed)
}

func TestCLIHandler_Color(t *testing.T) {
	var buf bytes.Buffer
	h := NewCLIHandler(&buf, slog.LevelInfo)
	h.color = true
	logger := slog.New(h)

	logger.Error("e")
	logger.Warn("w")
	logger.Info("i")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], colorRed))
	assert.True(t, strings.HasPrefix(lines[1], colorYellow))
	assert.True(t, strings.HasPrefix(lines[2], colorGreen))
	assert.True(t, strings.HasSuffix(lines[0], colorReset))
}

func TestCLIHandler_LevelFiltering(t *testing.T) {
	tests := []struct {
		name         string
		handlerLevel slog.Level
		logFunc      func(*slog.Logger)
		shouldLog    bool
	}{
		{"info handler logs info", slog.LevelInfo, func(l *slog.Logger) { l.Info("test") }, true},
		{"info handler filters debug", slog.LevelInfo, func(l *slog.Logger) { l.Debug("test") }, false},
		{"debug handler logs debug", slog.LevelDebug, func(l *slog.Logger) { l.Debug("test") }, true},
		{"error handler filters info", slog.LevelError, func(l *slog.Logger) { l.Info("test") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(slog.New(NewCLIHandler(&buf, tt.handlerLevel)))
			assert.Equal(t, tt.shouldLog, buf.Len() > 0)
		})
	}
}

func TestCLIHandler_GroupAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo)).WithGroup("server").With("addr", ":8080")

	logger.Info("listening")

	assert.Equal(t, "[server] listening: addr=:8080\n", buf.String())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("bogus"))
}
