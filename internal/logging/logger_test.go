// file: internal/logging/logger_test.go
// version: 1.0.0
// guid: d277728f-af32-480e-bbcc-a7a09fb0ebf4

package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.input), tt.input)
	}
}

func TestInitJSONOutput(t *testing.T) {
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	defer func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	}()

	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	Info().Str("title", "Sholay").Msg("resolved")
	Debug().Msg("debug line")

	out := buf.String()
	assert.Contains(t, out, `"message":"resolved"`)
	assert.Contains(t, out, `"title":"Sholay"`)
	assert.Contains(t, out, "debug line")
}

func TestLevelFiltering(t *testing.T) {
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	defer func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	}()

	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})

	Info().Msg("hidden")
	Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
