package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNew_JSONConServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Service: "caminvoice-api", Out: &buf})

	l.Component("migrate").Info().Int("applied", 3).Msg("migraciones aplicadas")

	var ev map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	assert.Equal(t, "caminvoice-api", ev["service"])
	assert.Equal(t, "migrate", ev["component"])
	assert.Equal(t, "info", ev["level"])
	assert.EqualValues(t, 3, ev["applied"])
	assert.Contains(t, ev, "time")
}

func TestNew_FiltraPorNivel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "warn", Out: &buf})

	l.Info().Msg("descartado")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("visible")
	assert.Contains(t, buf.String(), `"message":"visible"`)
	assert.NotContains(t, buf.String(), "service")
}

func TestNew_ConsolaEnDevelopment(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "development", Service: "caminvoice-api", Out: &buf})

	l.Info().Msg("iniciando aplicación")
	out := buf.String()
	assert.Contains(t, out, "iniciando aplicación")
	assert.Contains(t, out, "service=")
	assert.False(t, json.Valid(buf.Bytes()))
}
