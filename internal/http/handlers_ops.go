package httpapi

import (
	"net/http"
	"time"

	httpopenapi "github.com/fairyhunter13/market-helper/internal/http/openapi"
)

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := a.Manager.Stats()
	products, stores, prices, purchases := a.Store.Counts()
	writeJSON(w, http.StatusOK, map[string]any{
		"price_events_enqueued":  stats.Enqueued,
		"price_events_processed": stats.Processed,
		"backlog_size":           stats.Backlog,
		"queue_depth":            stats.Depth,
		"worker_count":           a.Manager.WorkerCount(),
		"products":               products,
		"stores":                 stores,
		"prices":                 prices,
		"purchases":              purchases,
		"uptime_sec":             time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

const docsPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>market-helper API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(docsPage))
}
