package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/edgescan/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier escribiendo a stdout.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador de consola.
// Con table=true imprime la tabla completa; si no, una línea compacta por ciclo.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime las alertas del ciclo en el modo configurado.
func (c *Console) Notify(_ context.Context, alerts []domain.EdgeAlert) error {
	if len(alerts) == 0 {
		fmt.Fprintf(c.out, "[%s] no edges found\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printFull(alerts)
	} else {
		c.printCompact(alerts)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(alerts []domain.EdgeAlert) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d edges", now, len(alerts))

	shown := 0
	for _, alert := range alerts {
		if shown >= 4 {
			break
		}
		fmt.Fprintf(&sb, " | %s %s ev+%.1f%% @%.2f",
			compactName(alert.Title, 25),
			strings.ToUpper(alert.Outcome),
			alert.ExpectedValue,
			alert.MarketPrice,
		)
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla completa de detecciones.
func (c *Console) printFull(alerts []domain.EdgeAlert) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %d edge alerts\n", now, len(alerts))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Market", "Outcome", "EV %", "Price", "TrueP", "Liquidity", "Detected")

	for i, alert := range alerts {
		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(alert.Title, 38),
			alert.Outcome,
			fmt.Sprintf("%+.2f", alert.ExpectedValue),
			fmt.Sprintf("%.3f", alert.MarketPrice),
			fmt.Sprintf("%.3f", alert.TrueProbability),
			fmt.Sprintf("$%.0f", alert.Liquidity),
			alert.DetectedAt.Format("15:04:05"),
		)
	}

	table.Render()

	fmt.Fprintln(c.out, "  EV % = (trueP - price) / price × 100 | TrueP = estimación ponderada por volumen")
}

// --- helpers ---

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func compactName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
