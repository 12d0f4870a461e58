package polymarket

import "encoding/json"

// DTOs raw de la API Gamma. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// gammaMarketsResponse es la respuesta de GET /markets de Gamma (array plano).
type gammaMarketsResponse []gammaMarket

// gammaMarket es un mercado raw de Gamma.
// Gamma devuelve los campos numéricos como strings JSON (usamos json.Number)
// y los arrays de outcomes/precios como arrays JSON codificados DENTRO de un
// string — hay que deserializar dos veces.
type gammaMarket struct {
	ConditionID   string      `json:"conditionId"`
	Question      string      `json:"question"`
	Slug          string      `json:"slug"`
	EndDate       string      `json:"endDate"`
	Liquidity     json.Number `json:"liquidity"`
	Volume24h     json.Number `json:"volume24hr"`
	Outcomes      string      `json:"outcomes"`      // ej: "[\"Yes\", \"No\"]"
	OutcomePrices string      `json:"outcomePrices"` // ej: "[\"0.48\", \"0.52\"]"
	Active        bool        `json:"active"`
	Closed        bool        `json:"closed"`
}
