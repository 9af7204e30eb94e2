package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /catalog", app.getCatalogHandler)

	mux.HandleFunc("GET /products", app.listProductsHandler)
	mux.HandleFunc("POST /products", app.putProductHandler)
	mux.HandleFunc("GET /products/{id}", app.getProductHandler)
	mux.HandleFunc("DELETE /products/{id}", app.deleteProductHandler)

	mux.HandleFunc("GET /stores", app.listStoresHandler)
	mux.HandleFunc("POST /stores", app.putStoreHandler)
	mux.HandleFunc("DELETE /stores/{id}", app.deleteStoreHandler)

	mux.HandleFunc("GET /prices", app.listPricesHandler)
	mux.HandleFunc("POST /prices/events", app.postPriceEventHandler)

	mux.HandleFunc("GET /purchases", app.listPurchasesHandler)
	mux.HandleFunc("POST /purchases", app.postPurchaseHandler)

	mux.HandleFunc("POST /basket/optimize", app.optimizeHandler)
	mux.HandleFunc("GET /duplicates", app.duplicatesHandler)
	mux.HandleFunc("POST /duplicates/merge", app.mergeHandler)
	mux.HandleFunc("GET /analytics", app.analyticsHandler)

	mux.HandleFunc("GET /healthz", app.healthHandler)
	mux.HandleFunc("GET /debug/metrics", app.metricsHandler)
	mux.Handle("GET /debug/vars", expvar.Handler())
	mux.HandleFunc("GET /openapi.yaml", app.openapiHandler)
	mux.HandleFunc("GET /docs", app.docsHandler)

	return WithRequestID(WithLogging(WithRecover(mux)))
}
