package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/perfdash/internal/models"
	"github.com/AngelCh415/perfdash/internal/store"
	"github.com/AngelCh415/perfdash/internal/utils"
)

const maxBodyBytes = 1 << 20

// ReportBuilder produces the dashboard report for one customer and range.
type ReportBuilder interface {
	BuildReport(ctx context.Context, customerID, start, end string) (models.Report, error)
}

type router struct {
	log       *slog.Logger
	customers store.CustomerStore
	reports   ReportBuilder
}

func NewRouter(log *slog.Logger, customers store.CustomerStore, reports ReportBuilder) http.Handler {
	rt := &router{log: log, customers: customers, reports: reports}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/customers", func(r chi.Router) {
		r.Get("/", rt.listCustomers)
		r.Post("/", rt.createCustomer)
		r.Get("/{customerID}", rt.getCustomer)
		r.Put("/{customerID}", rt.updateCustomer)
		r.Delete("/{customerID}", rt.deleteCustomer)
	})
	mux.Get("/reports/{customerID}", rt.getReport)

	return mux
}

func (rt *router) listCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	includeArchived, _ := strconv.ParseBool(q.Get("includeArchived"))
	rows, err := rt.customers.List(r.Context(), includeArchived)
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	limit, offset := clampLimitOffset(atoiDef(q.Get("limit"), 100), atoiDef(q.Get("offset"), 0), len(rows))
	page := paginate(rows, limit, offset)
	out := make([]models.Customer, len(page))
	for i, c := range page {
		out[i] = c.Redacted()
	}
	writeJSON(w, http.StatusOK, out)
}

func (rt *router) createCustomer(w http.ResponseWriter, r *http.Request) {
	var c models.Customer
	if !decodeBody(w, r, &c) {
		return
	}
	saved, err := rt.customers.Save(r.Context(), c)
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved.Redacted())
}

func (rt *router) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := rt.customers.Get(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Redacted())
}

// updateCustomer replaces the customer's configuration. The archived flag
// and the Shopify access token keep their stored values unless the body
// sets them.
func (rt *router) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "customerID")
	prev, err := rt.customers.Get(r.Context(), id)
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	c := models.Customer{
		Archived: prev.Archived,
		Settings: models.CustomerSettings{ShopifyAccessToken: prev.Settings.ShopifyAccessToken},
	}
	if !decodeBody(w, r, &c) {
		return
	}
	c.ID = id
	saved, err := rt.customers.Save(r.Context(), c)
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved.Redacted())
}

// deleteCustomer archives unless hard=true is passed.
func (rt *router) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "customerID")
	hard, _ := strconv.ParseBool(r.URL.Query().Get("hard"))
	var err error
	if hard {
		err = rt.customers.Delete(r.Context(), id)
	} else {
		err = rt.customers.Archive(r.Context(), id)
	}
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *router) getReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rep, err := rt.reports.BuildReport(r.Context(), chi.URLParam(r, "customerID"), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidDateRange),
		errors.Is(err, models.ErrMissingCustomerID),
		errors.Is(err, models.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (rt *router) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		rt.log.Error("request failed", slog.String("path", r.URL.Path), slog.String("rid", utils.RID(r.Context())), slog.String("err", err.Error()))
		http.Error(w, "internal error", code)
		return
	}
	http.Error(w, err.Error(), code)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}
