package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/edgescan/internal/domain"
	"github.com/alejandrodnm/edgescan/internal/ports"
)

// Config contiene la configuración del scanner.
type Config struct {
	ScanInterval time.Duration
	CycleTimeout time.Duration // cota superior para fetch + persistencia de un ciclo
	MinEV        float64       // EV mínimo (%) para generar alerta
	Filter       FilterConfig
	DryRun       bool // ejecutar un solo ciclo y salir
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		ScanInterval: 60 * time.Second,
		CycleTimeout: 30 * time.Second,
		MinEV:        3.0,
		Filter:       DefaultFilterConfig(),
	}
}

// Scanner es el orquestador del ciclo Idle → Fetching → Filtering → Scoring →
// Persisting → Idle. Un solo loop secuencial: el siguiente tick se arma solo
// cuando el ciclo anterior terminó o falló, así nunca hay ciclos solapados
// ni escrituras dobles.
type Scanner struct {
	cfg      Config
	markets  ports.MarketProvider
	store    ports.AlertStore
	notifier ports.Notifier
	filter   *Filter
}

// New crea un Scanner con todas las dependencias inyectadas.
func New(cfg Config, markets ports.MarketProvider, store ports.AlertStore, notifier ports.Notifier) *Scanner {
	return &Scanner{
		cfg:      cfg,
		markets:  markets,
		store:    store,
		notifier: notifier,
		filter:   NewFilter(cfg.Filter),
	}
}

// Run ejecuta el loop de escaneo hasta que el contexto se cancele.
// Si cfg.DryRun está activo, solo ejecuta un ciclo.
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("scanner starting",
		"interval", s.cfg.ScanInterval,
		"min_ev", s.cfg.MinEV,
		"dry_run", s.cfg.DryRun,
	)

	if err := s.runCycle(ctx); err != nil {
		slog.Error("scan cycle failed", "err", err)
		if s.cfg.DryRun {
			return err
		}
	}

	if s.cfg.DryRun {
		return nil
	}

	// Timer re-armado tras cada ciclo (no un ticker libre): un ciclo lento
	// retrasa el siguiente tick en vez de encolarlo.
	timer := time.NewTimer(s.cfg.ScanInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scanner stopped")
			return nil
		case <-timer.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("scan cycle failed", "err", err)
			}
			timer.Reset(s.cfg.ScanInterval)
		}
	}
}

// RunOnce ejecuta exactamente un ciclo de scoring y devuelve las alertas
// candidatas sin persistirlas ni notificarlas.
func (s *Scanner) RunOnce(ctx context.Context) ([]domain.EdgeAlert, error) {
	return s.cycle(ctx)
}

// runCycle ejecuta un ciclo completo y persiste/notifica los resultados.
// Un fallo de fetch termina el ciclo temprano; un fallo al persistir una
// alerta individual se loguea y se continúa con la siguiente candidata.
func (s *Scanner) runCycle(ctx context.Context) error {
	start := time.Now()

	if s.cfg.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CycleTimeout)
		defer cancel()
	}

	alerts, err := s.cycle(ctx)
	if err != nil {
		return err
	}

	saved := 0
	if s.store != nil {
		for _, alert := range alerts {
			if err := s.store.SaveAlert(ctx, alert); err != nil {
				slog.Warn("alert persist failed",
					"id", alert.ID,
					"market", alert.Title,
					"err", err,
				)
				continue
			}
			saved++
		}
	}

	if s.notifier != nil && len(alerts) > 0 {
		if err := s.notifier.Notify(ctx, alerts); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	slog.Info("scan cycle complete",
		"alerts", len(alerts),
		"saved", saved,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// cycle hace fetch → filter → score y devuelve las alertas candidatas.
func (s *Scanner) cycle(ctx context.Context) ([]domain.EdgeAlert, error) {
	markets, err := s.markets.FetchActiveMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanner.cycle: fetch markets: %w", err)
	}

	now := time.Now().UTC()
	eligible := s.filter.Apply(now, markets)

	slog.Debug("eligibility filter applied",
		"fetched", len(markets),
		"eligible", len(eligible),
	)

	var alerts []domain.EdgeAlert
	for _, market := range eligible {
		alerts = append(alerts, s.scoreMarket(market, now)...)
	}
	return alerts, nil
}

// scoreMarket evalúa ambos outcomes de un mercado elegible.
// Outcomes con precio cero o ausente se saltan, no se puntúan.
func (s *Scanner) scoreMarket(market domain.Market, now time.Time) []domain.EdgeAlert {
	var alerts []domain.EdgeAlert
	for i, outcome := range market.Outcomes {
		if outcome.Price <= 0 {
			slog.Debug("missing price, skipping outcome",
				"condition_id", market.ConditionID,
				"outcome", outcome.Name,
			)
			continue
		}

		trueProb := domain.EstimateTrueProbability(
			outcome.Price,
			outcome.Volume,
			market.Counterpart(i).Volume,
		)
		ev := domain.ExpectedValue(trueProb, outcome.Price)
		if ev < s.cfg.MinEV {
			continue
		}

		alerts = append(alerts, domain.NewEdgeAlert(market, outcome, trueProb, ev, now))
	}
	return alerts
}
