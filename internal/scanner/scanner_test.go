package scanner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alejandrodnm/edgescan/internal/domain"
	"github.com/alejandrodnm/edgescan/internal/ports"
	"github.com/alejandrodnm/edgescan/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockMarketProvider struct {
	markets []domain.Market
	err     error
}

func (m *mockMarketProvider) FetchActiveMarkets(_ context.Context) ([]domain.Market, error) {
	return m.markets, m.err
}

type mockStore struct {
	saved   []domain.EdgeAlert
	failIDs map[string]bool // títulos cuyos inserts fallan
	err     error
}

func (m *mockStore) SaveAlert(_ context.Context, alert domain.EdgeAlert) error {
	if m.err != nil {
		return m.err
	}
	if m.failIDs[alert.Title] {
		return errors.New("insert failed")
	}
	m.saved = append(m.saved, alert)
	return nil
}

func (m *mockStore) ListAlerts(_ context.Context, limit int) ([]domain.EdgeAlert, error) {
	if limit > len(m.saved) {
		limit = len(m.saved)
	}
	return m.saved[:limit], nil
}

func (m *mockStore) GetMetrics(_ context.Context, _ time.Duration) (domain.Metrics, error) {
	return domain.Metrics{}, nil
}

func (m *mockStore) BacktestReport(_ context.Context, _ int) (domain.BacktestReport, error) {
	return domain.BacktestReport{}, nil
}

func (m *mockStore) UpdateAlertStatus(_ context.Context, _ string, _ domain.AlertStatus) error {
	return nil
}

func (m *mockStore) Close() error { return nil }

type mockNotifier struct {
	notified []domain.EdgeAlert
	err      error
}

func (m *mockNotifier) Notify(_ context.Context, alerts []domain.EdgeAlert) error {
	m.notified = alerts
	return m.err
}

// --- helpers ---

// makeMarket construye un mercado elegible (expira en 30min, liquidez $10k)
// con volumen 50/50: trueProb = 0.52 para cualquier lado.
func makeMarket(condID, question string, yesPrice float64) domain.Market {
	return domain.Market{
		ConditionID: condID,
		Question:    question,
		EndDate:     time.Now().Add(30 * time.Minute),
		Liquidity:   10_000,
		Volume24h:   50_000,
		Outcomes: [2]domain.Outcome{
			{Name: "Yes", Price: yesPrice, Volume: 25_000},
			{Name: "No", Price: 1 - yesPrice, Volume: 25_000},
		},
		Active: true,
	}
}

func newTestScanner(mp ports.MarketProvider, store ports.AlertStore, n ports.Notifier) *scanner.Scanner {
	cfg := scanner.DefaultConfig()
	cfg.MinEV = 3.0
	cfg.DryRun = true
	return scanner.New(cfg, mp, store, n)
}

// --- tests ---

func TestScanner_RunOnce_FlagsPositiveEdge(t *testing.T) {
	// precio 0.48, trueProb 0.52 → EV = 8.33 ≥ 3.0 → alerta
	market := makeMarket("0xabc", "Will BTC close above 100k?", 0.48)

	mp := &mockMarketProvider{markets: []domain.Market{market}}
	s := newTestScanner(mp, &mockStore{}, &mockNotifier{})

	alerts, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	alert := alerts[0]
	assert.Equal(t, "0xabc", alert.ConditionID)
	assert.Equal(t, "Yes", alert.Outcome)
	assert.InDelta(t, 8.333, alert.ExpectedValue, 0.001)
	assert.InDelta(t, 0.52, alert.TrueProbability, 1e-9)
	assert.Equal(t, domain.StatusActive, alert.Status)
}

func TestScanner_RunOnce_NoAlertBelowThreshold(t *testing.T) {
	// volumen 50/50 → trueProb 0.52; con precios 0.51/0.49 los EV son
	// 1.96 y 6.12, ambos por debajo del umbral de 10
	market := makeMarket("0xdef", "Will it rain?", 0.51)

	cfg := scanner.DefaultConfig()
	cfg.MinEV = 10.0
	cfg.DryRun = true
	s := scanner.New(cfg, &mockMarketProvider{markets: []domain.Market{market}}, &mockStore{}, &mockNotifier{})

	alerts, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts, "EV negativo o bajo umbral nunca produce alerta")
}

func TestScanner_RunOnce_SkipsZeroPrice(t *testing.T) {
	market := makeMarket("0xabc", "Zero priced", 0.48)
	market.Outcomes[0].Price = 0 // precio ausente → se salta, sin excepción
	market.Outcomes[1].Price = 0

	mp := &mockMarketProvider{markets: []domain.Market{market}}
	s := newTestScanner(mp, &mockStore{}, &mockNotifier{})

	alerts, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestScanner_RunOnce_FilterGatesScoring(t *testing.T) {
	// EV altísimo pero ilíquido → jamás llega al scorer
	market := makeMarket("0xabc", "Illiquid edge", 0.10)
	market.Liquidity = 50

	mp := &mockMarketProvider{markets: []domain.Market{market}}
	s := newTestScanner(mp, &mockStore{}, &mockNotifier{})

	alerts, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts, "sin pasar el filtro no hay alerta, da igual el EV")
}

func TestScanner_RunOnce_FetchError(t *testing.T) {
	mp := &mockMarketProvider{err: errors.New("API down")}
	s := newTestScanner(mp, &mockStore{}, &mockNotifier{})

	_, err := s.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestScanner_Run_FetchErrorLeavesStoreUntouched(t *testing.T) {
	// La alerta del ciclo anterior sigue disponible aunque el fetch falle
	store := &mockStore{saved: []domain.EdgeAlert{{ID: "prev", Status: domain.StatusActive}}}
	mp := &mockMarketProvider{err: errors.New("network error")}

	s := newTestScanner(mp, store, &mockNotifier{})
	err := s.Run(context.Background()) // DryRun: un ciclo y fuera
	assert.Error(t, err)

	alerts, err := store.ListAlerts(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "prev", alerts[0].ID)
}

func TestScanner_Run_PersistFailureContinuesCycle(t *testing.T) {
	// El insert del primer mercado falla: el segundo se guarda igual
	m1 := makeMarket("0x001", "first", 0.48)
	m2 := makeMarket("0x002", "second", 0.48)

	store := &mockStore{failIDs: map[string]bool{"first": true}}
	mp := &mockMarketProvider{markets: []domain.Market{m1, m2}}
	notifier := &mockNotifier{}

	s := newTestScanner(mp, store, notifier)
	err := s.Run(context.Background())
	require.NoError(t, err, "un insert fallido no aborta el ciclo")

	require.Len(t, store.saved, 1)
	assert.Equal(t, "second", store.saved[0].Title)
	assert.Len(t, notifier.notified, 2, "se notifica todo lo detectado")
}

func TestScanner_Run_NotifierErrorNotFatal(t *testing.T) {
	market := makeMarket("0xabc", "notify fails", 0.48)

	store := &mockStore{}
	mp := &mockMarketProvider{markets: []domain.Market{market}}
	notifier := &mockNotifier{err: errors.New("telegram down")}

	s := newTestScanner(mp, store, notifier)
	err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, store.saved, 1)
}

func TestScanner_Run_CancelledContext(t *testing.T) {
	cfg := scanner.DefaultConfig()
	cfg.ScanInterval = 10 * time.Millisecond
	mp := &mockMarketProvider{}
	s := scanner.New(cfg, mp, &mockStore{}, &mockNotifier{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	assert.NoError(t, err, "la cancelación del contexto termina el loop limpiamente")
}
