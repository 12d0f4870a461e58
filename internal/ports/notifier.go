package ports

import (
	"context"

	"github.com/alejandrodnm/edgescan/internal/domain"
)

// Notifier presenta las alertas detectadas en un ciclo al usuario.
type Notifier interface {
	// Notify publica las alertas del ciclo. Un error aquí nunca aborta el ciclo.
	Notify(ctx context.Context, alerts []domain.EdgeAlert) error
}
