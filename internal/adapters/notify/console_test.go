package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/edgescan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAlerts() []domain.EdgeAlert {
	detected := time.Date(2026, 8, 27, 14, 30, 0, 0, time.UTC)
	return []domain.EdgeAlert{
		{
			ID:              "a1",
			ConditionID:     "0x001",
			Title:           "Will BTC close above 100k?",
			Outcome:         "Yes",
			ExpectedValue:   8.33,
			MarketPrice:     0.48,
			TrueProbability: 0.52,
			Liquidity:       12500,
			DetectedAt:      detected,
			Status:          domain.StatusActive,
		},
		{
			ID:              "a2",
			ConditionID:     "0x002",
			Title:           "Fed cuts rates in September?",
			Outcome:         "No",
			ExpectedValue:   4.1,
			MarketPrice:     0.61,
			TrueProbability: 0.635,
			Liquidity:       8000,
			DetectedAt:      detected,
			Status:          domain.StatusActive,
		},
	}
}

func TestConsole_CompactOutput(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	require.NoError(t, c.Notify(context.Background(), sampleAlerts()))

	out := buf.String()
	assert.Contains(t, out, "2 edges")
	assert.Contains(t, out, "YES")
	assert.Contains(t, out, "ev+8.3% @0.48")
	assert.Contains(t, out, "ev+4.1% @0.61")
	assert.Equal(t, 1, strings.Count(out, "\n"), "modo compacto: una sola línea por ciclo")
}

func TestConsole_CompactCapsShownAlerts(t *testing.T) {
	alerts := sampleAlerts()
	for i := 0; i < 6; i++ {
		extra := alerts[0]
		extra.Title = "extra market"
		alerts = append(alerts, extra)
	}

	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)
	require.NoError(t, c.Notify(context.Background(), alerts))

	out := buf.String()
	assert.Contains(t, out, "8 edges", "el conteo refleja el total aunque se recorte el detalle")
	assert.LessOrEqual(t, strings.Count(out, " | "), 4)
}

func TestConsole_TableOutput(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, true)

	require.NoError(t, c.Notify(context.Background(), sampleAlerts()))

	out := buf.String()
	assert.Contains(t, out, "2 edge alerts")
	assert.Contains(t, out, "Will BTC close above 100k?")
	assert.Contains(t, out, "+8.33")
	assert.Contains(t, out, "$12500")
	assert.Contains(t, out, "14:30:00")
}

func TestConsole_NoAlerts(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	require.NoError(t, c.Notify(context.Background(), nil))
	assert.Contains(t, buf.String(), "no edges found")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "this is...", truncate("this is a long title", 10))
}

func TestCompactName(t *testing.T) {
	assert.Equal(t, "short name", compactName("short name", 25))

	got := compactName("Will the Federal Reserve cut interest rates?", 25)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), 26)
}
