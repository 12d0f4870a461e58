package scanner

import (
	"time"

	"github.com/alejandrodnm/edgescan/internal/domain"
)

// FilterConfig contiene los parámetros configurables de elegibilidad.
type FilterConfig struct {
	// MaxExpiryWindow descarta mercados que expiran después de now + ventana.
	MaxExpiryWindow time.Duration
	// MinLiquidity descarta mercados con menos profundidad que esto (USDC).
	MinLiquidity float64
}

// DefaultFilterConfig devuelve una configuración de filtrado conservadora.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MaxExpiryWindow: 60 * time.Minute,
		MinLiquidity:    5_000,
	}
}

// Filter aplica la puerta de elegibilidad antes de cualquier scoring.
type Filter struct {
	cfg FilterConfig
}

// NewFilter crea un Filter con la configuración dada.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Apply devuelve los mercados que pasan todos los criterios.
// Filtro puro sobre el snapshot — sin efectos secundarios.
func (f *Filter) Apply(now time.Time, markets []domain.Market) []domain.Market {
	result := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if f.passes(now, m) {
			result = append(result, m)
		}
	}
	return result
}

// passes devuelve true sii expiry ∈ (now, now+MaxExpiryWindow] y la liquidez
// alcanza el mínimo. Mercados ya expirados o sin fecha quedan fuera.
func (f *Filter) passes(now time.Time, m domain.Market) bool {
	if m.EndDate.IsZero() || !m.EndDate.After(now) {
		return false
	}
	if m.EndDate.After(now.Add(f.cfg.MaxExpiryWindow)) {
		return false
	}
	return m.Liquidity >= f.cfg.MinLiquidity
}
