package polymarket

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/edgescan/internal/domain"
)

const (
	gammaMarketsPath = "/markets"
	pageSize         = 100
	maxPages         = 50 // corta la paginación si Gamma devuelve basura sin fin
)

// FetchActiveMarkets devuelve todos los mercados abiertos de Gamma.
// Pagina con offset hasta recibir una página incompleta.
func (c *Client) FetchActiveMarkets(ctx context.Context) ([]domain.Market, error) {
	var all []domain.Market

	for page := 0; page < maxPages; page++ {
		url := fmt.Sprintf("%s%s?active=true&closed=false&limit=%d&offset=%d&order=endDate&ascending=true",
			c.gammaBase,
			gammaMarketsPath,
			pageSize,
			page*pageSize,
		)

		var resp gammaMarketsResponse
		if err := c.get(ctx, url, &resp); err != nil {
			return nil, fmt.Errorf("gamma.FetchActiveMarkets: page %d: %w", page, err)
		}

		all = append(all, mapGammaMarkets(resp)...)

		slog.Debug("fetched gamma markets page",
			"page", page,
			"count", len(resp),
			"total", len(all),
		)

		if len(resp) < pageSize {
			break
		}
	}

	slog.Info("active markets fetched", "total", len(all))
	return all, nil
}
