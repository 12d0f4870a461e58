package domain

import "time"

// Market es el snapshot de un mercado binario de Polymarket dentro de un ciclo.
// No se persiste: vive solo durante el ciclo de escaneo que lo obtuvo.
type Market struct {
	ConditionID string
	Question    string    // enriquecido desde Gamma
	Slug        string    // enriquecido desde Gamma
	EndDate     time.Time // fecha de resolución
	Liquidity   float64   // profundidad del mercado en USDC
	Volume24h   float64   // volumen últimas 24h en USDC
	Outcomes    [2]Outcome
	Active      bool
	Closed      bool
}

// Outcome es uno de los dos lados del mercado (típicamente Yes/No).
type Outcome struct {
	Name   string  // "Yes" | "No"
	Price  float64 // probabilidad implícita por el precio, en [0,1]
	Volume float64 // volumen atribuido a este lado (señal para el estimador)
}

// Expired devuelve true si el mercado ya resolvió respecto a now.
func (m Market) Expired(now time.Time) bool {
	return !m.EndDate.IsZero() && !m.EndDate.After(now)
}

// MinutesToExpiry devuelve los minutos hasta la resolución.
// Devuelve 0 si EndDate no está definido o el mercado ya expiró.
func (m Market) MinutesToExpiry(now time.Time) float64 {
	if m.EndDate.IsZero() {
		return 0
	}
	mins := m.EndDate.Sub(now).Minutes()
	if mins < 0 {
		return 0
	}
	return mins
}

// Counterpart devuelve el outcome opuesto al índice dado.
func (m Market) Counterpart(i int) Outcome {
	return m.Outcomes[1-i]
}

// Label devuelve la pregunta del mercado, o el conditionID truncado como fallback.
func (m Market) Label() string {
	if m.Question != "" {
		return m.Question
	}
	if len(m.ConditionID) > 14 {
		return m.ConditionID[:12] + "..."
	}
	return m.ConditionID
}
