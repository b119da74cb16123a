package common

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "not found", err: fmt.Errorf("%w: category 3", ErrNotFound), want: "Nothing matched that id"},
		{name: "validation", err: fmt.Errorf("%w: empty name", ErrValidation), want: "Please check the values you entered"},
		{name: "storage", err: fmt.Errorf("%w: disk I/O", ErrStorage), want: "The budget database could not complete the request"},
		{name: "user error wins", err: NewUserError("Pick a category first", ErrValidation), want: "Pick a category first"},
		{name: "unknown", err: errors.New("boom"), want: "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}

func TestUserErrorUnwrap(t *testing.T) {
	err := NewUserError("could not save", ErrStorage)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, "could not save: storage error", err.Error())
	assert.Equal(t, "bare", (&UserError{UserMessage: "bare"}).Error())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("saved", "id", 7)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"id":7`)

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	previous := slog.Default()
	slog.SetDefault(logger)
	t.Cleanup(func() { slog.SetDefault(previous) })

	LogError(errors.New("database is locked"), "Failed to rollback import", Fields{"drafts": 3})

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"msg":"Failed to rollback import"`)
	assert.Contains(t, out, `"error":"database is locked"`)
	assert.Contains(t, out, `"drafts":3`)
}
