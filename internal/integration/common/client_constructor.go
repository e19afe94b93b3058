package common

import (
	"net/http"

	"github.com/futig/crm-assistant/internal/config"
	pkgHTTP "github.com/futig/crm-assistant/pkg/http"
)

// NewAPIClient returns the HTTP client used by a model provider SDK, with
// timeouts from cfg and outbound request logging tagged with service.
func NewAPIClient(service string, cfg config.HTTPClientConfig) *http.Client {
	return pkgHTTP.NewClient(
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithDialTimeout(cfg.ConnTimeout),
		pkgHTTP.WithKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(service),
	)
}
