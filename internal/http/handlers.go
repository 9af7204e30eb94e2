package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/market-helper/internal/config"
	"github.com/fairyhunter13/market-helper/internal/model"
	"github.com/fairyhunter13/market-helper/internal/obs"
	"github.com/fairyhunter13/market-helper/internal/queue"
	"github.com/fairyhunter13/market-helper/internal/store"
)

const maxBodyBytes = 1 << 20

type App struct {
	Cfg     config.Config
	Store   *store.Store
	Manager *queue.Manager
	closing atomic.Bool
	started time.Time
	now     func() time.Time
}

type priceEventAck struct {
	Status      string          `json:"status"`
	RequestID   string          `json:"request_id"`
	Sequence    uint64          `json:"sequence"`
	ProductID   string          `json:"product_id"`
	StoreID     string          `json:"store_id"`
	Price       decimal.Decimal `json:"price"`
	ReceivedAt  string          `json:"received_at"`
	QueueDepth  int             `json:"queue_depth"`
	BacklogSize int             `json:"backlog_size"`
	WorkerCount int             `json:"worker_count"`
}

func NewApp(cfg config.Config, st *store.Store, m *queue.Manager) *App {
	return &App{Cfg: cfg, Store: st, Manager: m, started: time.Now(), now: time.Now}
}

// StartShutdown stops accepting writes that go through the queue.
func (a *App) StartShutdown() {
	a.closing.Store(true)
	a.Manager.CloseIntake()
}

// decodeJSON reads a strict JSON body into dst. It writes the error
// response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			WriteJSONError(w, http.StatusBadRequest, "invalid_json", "empty body")
			return false
		}
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func (a *App) getCatalogHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Store.Snapshot())
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(a.Store.Snapshot().Products))
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := a.Store.GetProduct(r.PathValue("id"))
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) putProductHandler(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := a.Store.PutProduct(p); err != nil {
		writeDomainError(w, err)
		return
	}
	obs.Logger.Info("product_saved", "product_id", p.ID, "request_id", RequestIDFromContext(r.Context()))
	writeJSON(w, http.StatusCreated, p)
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.Store.DeleteProduct(id); err != nil {
		writeDomainError(w, err)
		return
	}
	obs.Logger.Info("product_deleted", "product_id", id, "request_id", RequestIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) listStoresHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(a.Store.Snapshot().Stores))
}

func (a *App) putStoreHandler(w http.ResponseWriter, r *http.Request) {
	var st model.Store
	if !decodeJSON(w, r, &st) {
		return
	}
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if err := a.Store.PutStore(st); err != nil {
		writeDomainError(w, err)
		return
	}
	obs.Logger.Info("store_saved", "store_id", st.ID, "request_id", RequestIDFromContext(r.Context()))
	writeJSON(w, http.StatusCreated, st)
}

func (a *App) deleteStoreHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.Store.DeleteStore(id); err != nil {
		writeDomainError(w, err)
		return
	}
	obs.Logger.Info("store_deleted", "store_id", id, "request_id", RequestIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) listPricesHandler(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")
	storeID := r.URL.Query().Get("store_id")
	snap := a.Store.Snapshot()
	prices := snap.Prices
	if productID != "" {
		prices = snap.PricesFor(productID)
	}
	out := []model.PriceEntry{}
	for _, e := range prices {
		if storeID == "" || e.StoreID == storeID {
			out = append(out, e)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) postPriceEventHandler(w http.ResponseWriter, r *http.Request) {
	if a.closing.Load() || a.Manager.IsShuttingDown() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	var ev model.PriceEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	if err := ev.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}
	snap := a.Store.Snapshot()
	if _, ok := snap.Product(ev.ProductID); !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "unknown product_id")
		return
	}
	if _, ok := snap.Store(ev.StoreID); !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "unknown store_id")
		return
	}
	ev, ok := a.Manager.Submit(ev)
	if !ok {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	stats := a.Manager.Stats()
	ac := priceEventAck{
		Status:      "accepted",
		RequestID:   RequestIDFromContext(r.Context()),
		Sequence:    ev.Sequence,
		ProductID:   ev.ProductID,
		StoreID:     ev.StoreID,
		Price:       ev.Price,
		ReceivedAt:  a.now().UTC().Format(time.RFC3339),
		QueueDepth:  stats.Depth,
		BacklogSize: stats.Backlog,
		WorkerCount: a.Manager.WorkerCount(),
	}
	writeJSON(w, http.StatusAccepted, ac)
	obs.Logger.Info("price_event_accepted",
		"request_id", ac.RequestID,
		"sequence", ac.Sequence,
		"product_id", ac.ProductID,
		"store_id", ac.StoreID,
		"queue_depth", ac.QueueDepth,
		"backlog_size", ac.BacklogSize,
		"worker_count", ac.WorkerCount,
	)
}

func (a *App) listPurchasesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(a.Store.Snapshot().Purchases))
}

func (a *App) postPurchaseHandler(w http.ResponseWriter, r *http.Request) {
	var p model.Purchase
	if !decodeJSON(w, r, &p) {
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Date.IsZero() {
		p.Date = a.now().UTC()
	}
	if err := a.Store.RecordPurchase(p); err != nil {
		writeDomainError(w, err)
		return
	}
	obs.Logger.Info("purchase_recorded",
		"purchase_id", p.ID,
		"store_id", p.StoreID,
		"items", len(p.Items),
		"request_id", RequestIDFromContext(r.Context()),
	)
	writeJSON(w, http.StatusCreated, p)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
