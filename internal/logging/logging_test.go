package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/agora/internal/config"
)

func TestSetup(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		wantLevel zerolog.Level
		wantJSON  bool
	}{
		{name: "json debug", cfg: config.LoggingConfig{Level: "debug", Format: "json"}, wantLevel: zerolog.DebugLevel, wantJSON: true},
		{name: "console warn", cfg: config.LoggingConfig{Level: "WARN", Format: "console"}, wantLevel: zerolog.WarnLevel},
		{name: "bad level falls back to info", cfg: config.LoggingConfig{Level: "loud"}, wantLevel: zerolog.InfoLevel, wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := Setup(tt.cfg, &buf)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			logger.Error().Str("k", "v").Msg("hello")
			if tt.wantJSON {
				var entry map[string]any
				require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
				assert.Equal(t, "hello", entry["message"])
				assert.Equal(t, "v", entry["k"])
			} else {
				assert.Contains(t, buf.String(), "hello")
				assert.False(t, json.Valid(buf.Bytes()))
			}
		})
	}
}
