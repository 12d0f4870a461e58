package ports

import (
	"context"
	"errors"
	"time"

	"github.com/alejandrodnm/edgescan/internal/domain"
)

// ErrAlertNotFound indica que el ID no corresponde a ninguna alerta persistida.
var ErrAlertNotFound = errors.New("alert not found")

// AlertStore persiste y consulta las detecciones del scanner.
type AlertStore interface {
	// SaveAlert inserta una alerta (append-only, status active por defecto).
	// No deduplica entre ciclos: una oportunidad que persiste varios ciclos
	// se registra una vez por ciclo, cada una con su propio ID.
	SaveAlert(ctx context.Context, alert domain.EdgeAlert) error

	// ListAlerts devuelve las alertas activas más recientes, ordenadas por
	// fecha de detección descendente y truncadas a limit.
	ListAlerts(ctx context.Context, limit int) ([]domain.EdgeAlert, error)

	// GetMetrics calcula los agregados sobre la ventana temporal dada.
	GetMetrics(ctx context.Context, window time.Duration) (domain.Metrics, error)

	// BacktestReport cruza las alertas de los últimos days días con su status.
	BacktestReport(ctx context.Context, days int) (domain.BacktestReport, error)

	// UpdateAlertStatus es el punto de mutación para procesos externos
	// (resolución manual). El scanner nunca lo usa.
	UpdateAlertStatus(ctx context.Context, id string, status domain.AlertStatus) error

	// Close cierra la conexión al almacenamiento limpiamente.
	Close() error
}
