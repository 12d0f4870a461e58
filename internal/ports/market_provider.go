package ports

import (
	"context"

	"github.com/alejandrodnm/edgescan/internal/domain"
)

// MarketProvider obtiene el snapshot de mercados activos desde la fuente externa.
type MarketProvider interface {
	// FetchActiveMarkets devuelve los mercados abiertos actualmente.
	// Pagina automáticamente hasta agotar los resultados.
	// Respuestas no-2xx o malformadas se tratan como "sin mercados este ciclo".
	FetchActiveMarkets(ctx context.Context) ([]domain.Market, error)
}
