package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestLogger_RecordsEntries(t *testing.T) {
	log := NewTestLogger()

	log.Debug("d")
	log.Info("i", String("k", "v"))
	log.Warn("w")
	log.Error("e")

	entries := log.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, LevelDebug, entries[0].Level)
	assert.Equal(t, "i", entries[1].Message)
	require.Len(t, entries[1].Fields, 1)
	assert.Equal(t, "k", entries[1].Fields[0].Key())
}

func TestTestLogger_EntriesAt(t *testing.T) {
	log := NewTestLogger()

	log.Info("one")
	log.Error("two")
	log.Info("three")

	infos := log.EntriesAt(LevelInfo)
	require.Len(t, infos, 2)
	assert.Equal(t, "one", infos[0].Message)
	assert.Equal(t, "three", infos[1].Message)
	assert.Empty(t, log.EntriesAt(LevelWarn))
}

func TestTestLogger_WithSharesSink(t *testing.T) {
	log := NewTestLogger()

	child := log.With(String("component", "registry"))
	child.Info("hello")

	entries := log.Entries()
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Fields, 1)
	assert.Equal(t, "component", entries[0].Fields[0].Key())

	grandchild := child.With(Int("n", 1)).Named("sub")
	grandchild.Warn("deeper")

	entries = log.Entries()
	require.Len(t, entries, 2)
	assert.Len(t, entries[1].Fields, 2)
}

func TestNoopLogger_Safe(t *testing.T) {
	log := NewNoopLogger()

	log.Debug("ignored")
	log.Info("ignored", String("k", "v"))
	assert.NoError(t, log.Sync())
	assert.NotNil(t, log.With(String("k", "v")).Named("x"))
}

func TestNewLogger_Constructors(t *testing.T) {
	assert.NotNil(t, NewLogger(LoggingConfig{Level: LevelDebug, Format: "console"}))
	assert.NotNil(t, NewLogger(LoggingConfig{Level: LevelInfo, Format: "json"}))
	assert.NotNil(t, NewLogger(LoggingConfig{Environment: "production"}))
	assert.NotNil(t, NewDevelopmentLogger())
	assert.NotNil(t, NewProductionLogger())
}

func TestFieldConstructors(t *testing.T) {
	cases := []struct {
		field Field
		key   string
	}{
		{String("s", "v"), "s"},
		{Int("i", 1), "i"},
		{Int64("i64", 1), "i64"},
		{Bool("b", true), "b"},
		{Duration("d", time.Second), "d"},
		{Strings("ss", []string{"a"}), "ss"},
		{Any("a", struct{}{}), "a"},
		{Error(errors.New("boom")), "error"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.key, tc.field.Key())
		assert.Equal(t, tc.key, tc.field.ZapField().Key)
	}
}
