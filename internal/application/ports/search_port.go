package ports

import "context"

// SearchSync puerto del colaborador externo que mantiene el índice de búsqueda
// de sitios. La composición del documento es responsabilidad del colaborador;
// este servicio solo comunica la identidad del sitio afectado.
type SearchSync interface {
	UpsertSite(ctx context.Context, siteID int64) error
	DeleteSite(ctx context.Context, siteID int64) error
}
