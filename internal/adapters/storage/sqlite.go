package storage

// sqlite.go — persistencia de alertas.
//
// Estrategia:
//   - `alerts`: una fila por detección, append-only desde el scanner.
//     No hay upsert ni dedup entre ciclos: una oportunidad que persiste
//     varios ciclos genera varias filas, cada una con su uuid.
//   - `status` es la única columna mutable, y solo vía UpdateAlertStatus
//     (procesos externos de resolución, nunca el scanner).
//   - Prune automático al arrancar: alertas con más de 90 días.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/edgescan/internal/domain"
	"github.com/alejandrodnm/edgescan/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
-- Una fila por detección, nunca se reescribe salvo status
CREATE TABLE IF NOT EXISTS alerts (
    id             TEXT PRIMARY KEY,
    condition_id   TEXT NOT NULL,
    title          TEXT NOT NULL,
    outcome        TEXT NOT NULL,
    expected_value REAL NOT NULL,
    market_price   REAL NOT NULL,
    true_prob      REAL NOT NULL,
    liquidity      REAL NOT NULL DEFAULT 0,
    detected_at    TEXT NOT NULL,
    status         TEXT NOT NULL DEFAULT 'active'
);

CREATE INDEX IF NOT EXISTS idx_alerts_status   ON alerts(status);
CREATE INDEX IF NOT EXISTS idx_alerts_detected ON alerts(detected_at DESC);
CREATE INDEX IF NOT EXISTS idx_alerts_market   ON alerts(condition_id, outcome);
`

const (
	retentionAlerts   = 90 * 24 * time.Hour // los mercados micro-edge expiran en horas; 90d sobra
	defaultListLimit  = 10
	maxListLimit      = 100
	defaultWindowDays = 30
)

// SQLiteStore implementa ports.AlertStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia detecciones antiguas.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: set WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveAlert inserta una detección nueva. Append-only: no upsert.
func (s *SQLiteStore) SaveAlert(ctx context.Context, alert domain.EdgeAlert) error {
	status := alert.Status
	if status == "" {
		status = domain.StatusActive
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts
			(id, condition_id, title, outcome, expected_value,
			 market_price, true_prob, liquidity, detected_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID,
		alert.ConditionID,
		alert.Title,
		alert.Outcome,
		alert.ExpectedValue,
		alert.MarketPrice,
		alert.TrueProbability,
		alert.Liquidity,
		formatTime(alert.DetectedAt),
		string(status),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveAlert: insert %s: %w", alert.ID, err)
	}
	return nil
}

// ListAlerts devuelve las alertas activas más recientes, las mejores primero
// por fecha de detección. limit <= 0 usa el default.
func (s *SQLiteStore) ListAlerts(ctx context.Context, limit int) ([]domain.EdgeAlert, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, condition_id, title, outcome, expected_value,
		       market_price, true_prob, liquidity, detected_at, status
		FROM alerts
		WHERE status = ?
		ORDER BY detected_at DESC
		LIMIT ?`,
		string(domain.StatusActive), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.ListAlerts: query: %w", err)
	}
	defer rows.Close()

	var alerts []domain.EdgeAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.ListAlerts: scan row: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// GetMetrics calcula los agregados sobre la ventana dada, siempre desde la
// columna status — el hit rate nunca es una constante.
func (s *SQLiteStore) GetMetrics(ctx context.Context, window time.Duration) (domain.Metrics, error) {
	if window <= 0 {
		window = defaultWindowDays * 24 * time.Hour
	}
	cutoff := time.Now().UTC().Add(-window)

	agg, err := s.aggregateSince(ctx, cutoff)
	if err != nil {
		return domain.Metrics{}, fmt.Errorf("storage.GetMetrics: %w", err)
	}

	return domain.Metrics{
		WindowDays:       int(window.Hours() / 24),
		TotalAlerts:      agg.total,
		ActiveAlerts:     agg.active,
		Converted:        agg.converted,
		Missed:           agg.missed,
		AvgExpectedValue: agg.avgEV,
		HitRate:          domain.HitRate(agg.converted, agg.missed),
	}, nil
}

// BacktestReport cruza las alertas de los últimos days días con su status.
func (s *SQLiteStore) BacktestReport(ctx context.Context, days int) (domain.BacktestReport, error) {
	if days <= 0 {
		days = defaultWindowDays
	}
	cutoff := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)

	agg, err := s.aggregateSince(ctx, cutoff)
	if err != nil {
		return domain.BacktestReport{}, fmt.Errorf("storage.BacktestReport: %w", err)
	}

	return domain.BacktestReport{
		WindowDays:       days,
		TotalAlerts:      agg.total,
		Converted:        agg.converted,
		Missed:           agg.missed,
		StillActive:      agg.active,
		AvgExpectedValue: agg.avgEV,
		HitRate:          domain.HitRate(agg.converted, agg.missed),
	}, nil
}

// UpdateAlertStatus es el punto de mutación para procesos externos de resolución.
func (s *SQLiteStore) UpdateAlertStatus(ctx context.Context, id string, status domain.AlertStatus) error {
	if !status.Valid() {
		return fmt.Errorf("storage.UpdateAlertStatus: invalid status %q", status)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("storage.UpdateAlertStatus: update %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage.UpdateAlertStatus: rows affected: %w", err)
	}
	if n == 0 {
		return ports.ErrAlertNotFound
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

type aggregate struct {
	total     int
	active    int
	converted int
	missed    int
	avgEV     float64
}

// aggregateSince agrupa conteos por status y el EV medio desde el cutoff.
func (s *SQLiteStore) aggregateSince(ctx context.Context, cutoff time.Time) (aggregate, error) {
	var agg aggregate
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'active'    THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'converted' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'missed'    THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(expected_value), 0)
		FROM alerts
		WHERE detected_at >= ?`,
		formatTime(cutoff),
	).Scan(&agg.total, &agg.active, &agg.converted, &agg.missed, &agg.avgEV)
	if err != nil {
		return aggregate{}, fmt.Errorf("aggregate query: %w", err)
	}
	return agg, nil
}

// scanAlert lee una fila del SELECT estándar de alerts.
func scanAlert(rows *sql.Rows) (domain.EdgeAlert, error) {
	var alert domain.EdgeAlert
	var detectedAt, status string

	if err := rows.Scan(
		&alert.ID,
		&alert.ConditionID,
		&alert.Title,
		&alert.Outcome,
		&alert.ExpectedValue,
		&alert.MarketPrice,
		&alert.TrueProbability,
		&alert.Liquidity,
		&detectedAt,
		&status,
	); err != nil {
		return domain.EdgeAlert{}, err
	}

	alert.DetectedAt, _ = time.Parse(time.RFC3339Nano, detectedAt)
	alert.Status = domain.AlertStatus(status)
	return alert, nil
}

// pruneOld elimina detecciones antiguas para mantener la DB ligera.
func (s *SQLiteStore) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionAlerts)
	s.db.ExecContext(ctx, `DELETE FROM alerts WHERE detected_at < ?`, formatTime(cutoff))
}

// timeLayout es RFC3339 con nanosegundos de ancho fijo: los timestamps
// ordenan lexicográficamente igual que cronológicamente.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime serializa timestamps en UTC con el layout de ancho fijo.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
