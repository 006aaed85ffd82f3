package elastic

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/storenextdoor/stock-service/internal/application/ports"
	"github.com/storenextdoor/stock-service/pkg/config"
	"github.com/storenextdoor/stock-service/pkg/logger"
)

var _ ports.SearchSync = (*Client)(nil)

// Client implementación de SearchSync contra el API REST de Elasticsearch.
// La composición del documento del sitio es responsabilidad del indexador
// externo; este cliente solo comunica la identidad afectada.
type Client struct {
	httpClient *http.Client
	server     string
	index      string
	log        *logger.Logger
}

// NewClient construye el cliente con un timeout de red propio: este servicio
// no aplica cancelación adicional a las llamadas del colaborador.
func NewClient(cfg config.ElasticConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		server:     strings.TrimRight(cfg.Server, "/"),
		index:      cfg.Index,
		log:        log,
	}
}

// UpsertSite crea o actualiza el documento del sitio en el índice.
func (c *Client) UpsertSite(ctx context.Context, siteID int64) error {
	c.log.Info().Int64("site_id", siteID).Msg("upsert de sitio en el índice de búsqueda")
	url := fmt.Sprintf("%s/%s/_doc/%d", c.server, c.index, siteID)
	body := fmt.Sprintf(`{"site_id":%d}`, siteID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("construir petición ES: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, false)
}

// DeleteSite elimina el documento del sitio. Un 404 cuenta como éxito:
// el documento ya no está.
func (c *Client) DeleteSite(ctx context.Context, siteID int64) error {
	c.log.Info().Int64("site_id", siteID).Msg("borrado de sitio del índice de búsqueda")
	url := fmt.Sprintf("%s/%s/_doc/%d", c.server, c.index, siteID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("construir petición ES: %w", err)
	}

	return c.do(req, true)
}

func (c *Client) do(req *http.Request, allowNotFound bool) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llamada a ES: %w", err)
	}
	defer resp.Body.Close()

	if allowNotFound && resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ES respondió %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}
