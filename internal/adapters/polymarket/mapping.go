package polymarket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/alejandrodnm/edgescan/internal/domain"
)

// mapGammaMarkets convierte los DTOs de Gamma a domain.Market.
// Un mercado individual malformado se salta con log debug — nunca aborta el ciclo.
func mapGammaMarkets(raw []gammaMarket) []domain.Market {
	markets := make([]domain.Market, 0, len(raw))
	for _, r := range raw {
		m, err := mapGammaMarket(r)
		if err != nil {
			slog.Debug("malformed market record, skipping",
				"condition_id", r.ConditionID,
				"err", err,
			)
			continue
		}
		markets = append(markets, m)
	}
	return markets
}

// mapGammaMarket convierte un gammaMarket DTO a domain.Market.
func mapGammaMarket(r gammaMarket) (domain.Market, error) {
	if r.ConditionID == "" {
		return domain.Market{}, fmt.Errorf("empty condition_id")
	}

	names, err := decodeStringArray(r.Outcomes)
	if err != nil {
		return domain.Market{}, fmt.Errorf("outcomes: %w", err)
	}
	prices, err := decodeFloatArray(r.OutcomePrices)
	if err != nil {
		return domain.Market{}, fmt.Errorf("outcome prices: %w", err)
	}
	if len(names) < 2 || len(prices) < 2 {
		return domain.Market{}, fmt.Errorf("not a binary market: %d outcomes, %d prices", len(names), len(prices))
	}

	m := domain.Market{
		ConditionID: r.ConditionID,
		Question:    r.Question,
		Slug:        r.Slug,
		Active:      r.Active,
		Closed:      r.Closed,
	}

	if v, err := r.Liquidity.Float64(); err == nil {
		m.Liquidity = v
	}
	if v, err := r.Volume24h.Float64(); err == nil {
		m.Volume24h = v
	}

	// Gamma no expone volumen por outcome; repartimos el volumen 24h del
	// mercado proporcionalmente al precio como proxy de flujo por lado.
	// El estimador solo ve los dos números — la señal es intercambiable
	// en este adapter sin tocar el scoring.
	for i := 0; i < 2; i++ {
		m.Outcomes[i] = domain.Outcome{
			Name:   names[i],
			Price:  prices[i],
			Volume: m.Volume24h * prices[i],
		}
	}

	m.EndDate = parseEndDate(r.EndDate)
	return m, nil
}

// decodeStringArray deserializa un array JSON codificado dentro de un string.
func decodeStringArray(s string) ([]string, error) {
	if s == "" {
		return nil, fmt.Errorf("empty field")
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeFloatArray deserializa un array de números-como-strings anidado en un string.
func decodeFloatArray(s string) ([]float64, error) {
	raw, err := decodeStringArray(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(raw))
	for _, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", v, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// parseEndDate intenta los formatos de fecha que Polymarket usa en distintos
// endpoints. Devuelve zero time si ninguno aplica.
func parseEndDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
