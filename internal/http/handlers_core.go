package httpapi

import (
	"net/http"

	"github.com/fairyhunter13/market-helper/internal/analytics"
	"github.com/fairyhunter13/market-helper/internal/basket"
	"github.com/fairyhunter13/market-helper/internal/dedupe"
	"github.com/fairyhunter13/market-helper/internal/model"
	"github.com/fairyhunter13/market-helper/internal/obs"
)

type optimizeRequest struct {
	Items []model.ListItem `json:"items"`
}

type duplicatesResponse struct {
	Pairs []dedupe.Pair `json:"pairs"`
}

type mergeRequest struct {
	KeepID string `json:"keep_id"`
	DropID string `json:"drop_id"`
}

func (a *App) optimizeHandler(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := basket.Optimize(a.Store.Snapshot(), req.Items)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	obs.Logger.Debug("basket_optimized",
		"items", len(req.Items),
		"groups", len(res.Groups),
		"total", res.TotalOptimalCost.StringFixed(2),
		"request_id", RequestIDFromContext(r.Context()),
	)
	writeJSON(w, http.StatusOK, res)
}

func (a *App) duplicatesHandler(w http.ResponseWriter, r *http.Request) {
	pairs := dedupe.FindCandidates(a.Store.Snapshot().Products)
	writeJSON(w, http.StatusOK, duplicatesResponse{Pairs: pairs})
}

func (a *App) mergeHandler(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.Store.MergeProducts(req.KeepID, req.DropID); err != nil {
		writeDomainError(w, err)
		return
	}
	obs.Logger.Info("products_merged",
		"keep_id", req.KeepID,
		"drop_id", req.DropID,
		"request_id", RequestIDFromContext(r.Context()),
	)
	writeJSON(w, http.StatusOK, map[string]string{"status": "merged", "product_id": req.KeepID})
}

func (a *App) analyticsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analytics.Summarize(a.Store.Snapshot(), a.now()))
}
