package notify

import (
	"context"
	"errors"

	"github.com/alejandrodnm/edgescan/internal/domain"
	"github.com/alejandrodnm/edgescan/internal/ports"
)

// Multi agrupa varios notifiers y los invoca en orden.
// Un fallo en uno no impide que los demás reciban las alertas.
type Multi struct {
	notifiers []ports.Notifier
}

// NewMulti crea un Notifier compuesto.
func NewMulti(notifiers ...ports.Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

// Notify invoca cada notifier y devuelve los errores acumulados.
func (m *Multi) Notify(ctx context.Context, alerts []domain.EdgeAlert) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, alerts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
