package domain

const (
	// inefficiencyAdj modela la ineficiencia persistente observada en mercados
	// de corto plazo: el precio tiende a infravalorar el lado con más flujo.
	inefficiencyAdj = 0.02

	// maxTrueProbability es el techo del estimador — nunca afirmamos >99%.
	maxTrueProbability = 0.99
)

// EstimateTrueProbability estima la probabilidad "real" de un outcome.
//
// Baseline ponderado por volumen:
//
//	baseline = volumeFor / (volumeFor + volumeAgainst)
//
// Si no hay volumen en ningún lado, usa marketPrice como baseline.
// Al baseline se le suma inefficiencyAdj y el resultado se recorta a [0, 0.99].
//
// Es una heurística, no un modelo calibrado. El contrato: determinista para
// inputs idénticos, rango acotado, y monótona respecto al sesgo de volumen
// (más volumen en un lado nunca baja su probabilidad estimada).
func EstimateTrueProbability(marketPrice, volumeFor, volumeAgainst float64) float64 {
	if volumeFor < 0 {
		volumeFor = 0
	}
	if volumeAgainst < 0 {
		volumeAgainst = 0
	}

	baseline := marketPrice
	if total := volumeFor + volumeAgainst; total > 0 {
		baseline = volumeFor / total
	}

	return clampProbability(baseline + inefficiencyAdj)
}

// ExpectedValue calcula el EV en porcentaje del edge sobre el precio de mercado:
//
//	edge = trueProb − marketPrice
//	EV   = (edge / marketPrice) × 100
//
// Devuelve 0 si marketPrice <= 0; el caller debe descartar esos mercados
// antes de puntuar (un precio ausente no se puntúa, se salta).
func ExpectedValue(trueProb, marketPrice float64) float64 {
	if marketPrice <= 0 {
		return 0
	}
	return (trueProb - marketPrice) / marketPrice * 100
}

// clampProbability recorta p al rango [0, maxTrueProbability].
func clampProbability(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > maxTrueProbability {
		return maxTrueProbability
	}
	return p
}
