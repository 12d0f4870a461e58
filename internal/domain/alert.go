package domain

import (
	"time"

	"github.com/google/uuid"
)

// AlertStatus es el estado del ciclo de vida de una alerta.
// El scanner siempre crea alertas en active; los cambios posteriores
// vienen de procesos externos (resolución manual, dashboard).
type AlertStatus string

const (
	StatusActive    AlertStatus = "active"
	StatusConverted AlertStatus = "converted"
	StatusMissed    AlertStatus = "missed"
)

// Valid devuelve true si el status es uno de los conocidos.
func (s AlertStatus) Valid() bool {
	switch s {
	case StatusActive, StatusConverted, StatusMissed:
		return true
	}
	return false
}

// EdgeAlert es una detección persistida: un outcome cuyo EV superó el umbral
// en un ciclo de escaneo. Inmutable tras la detección, salvo Status.
type EdgeAlert struct {
	ID              string      `json:"id"`
	ConditionID     string      `json:"conditionId"`
	Title           string      `json:"title"`
	Outcome         string      `json:"outcome"`
	ExpectedValue   float64     `json:"expectedValue"`   // porcentaje con signo
	MarketPrice     float64     `json:"marketPrice"`     // en [0,1]
	TrueProbability float64     `json:"trueProbability"` // en [0,1]
	Liquidity       float64     `json:"liquidity"`
	DetectedAt      time.Time   `json:"detectedAt"`
	Status          AlertStatus `json:"status"`
}

// NewEdgeAlert construye una alerta con ID único por detección y status active.
// Cada ciclo donde la oportunidad persiste genera una detección nueva — no se
// deduplica entre ciclos.
func NewEdgeAlert(m Market, o Outcome, trueProb, ev float64, detectedAt time.Time) EdgeAlert {
	return EdgeAlert{
		ID:              uuid.NewString(),
		ConditionID:     m.ConditionID,
		Title:           m.Label(),
		Outcome:         o.Name,
		ExpectedValue:   ev,
		MarketPrice:     o.Price,
		TrueProbability: trueProb,
		Liquidity:       m.Liquidity,
		DetectedAt:      detectedAt.UTC(),
		Status:          StatusActive,
	}
}

// Metrics son los agregados sobre una ventana temporal, calculados siempre
// desde la columna status persistida — nada hardcodeado.
type Metrics struct {
	WindowDays       int     `json:"windowDays"`
	TotalAlerts      int     `json:"totalAlerts"`
	ActiveAlerts     int     `json:"activeAlerts"`
	Converted        int     `json:"converted"`
	Missed           int     `json:"missed"`
	AvgExpectedValue float64 `json:"avgExpectedValue"`
	HitRate          float64 `json:"hitRate"` // converted / (converted + missed)
}

// BacktestReport es el resultado de cruzar las alertas históricas con su
// status de resolución en una ventana de días arbitraria.
type BacktestReport struct {
	WindowDays       int     `json:"windowDays"`
	TotalAlerts      int     `json:"totalAlerts"`
	Converted        int     `json:"converted"`
	Missed           int     `json:"missed"`
	StillActive      int     `json:"stillActive"`
	AvgExpectedValue float64 `json:"avgExpectedValue"`
	HitRate          float64 `json:"hitRate"`
}

// HitRate calcula la tasa de conversión sobre alertas resueltas.
// Devuelve 0 si todavía no hay ninguna resuelta.
func HitRate(converted, missed int) float64 {
	resolved := converted + missed
	if resolved == 0 {
		return 0
	}
	return float64(converted) / float64(resolved)
}
