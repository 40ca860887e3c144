package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts every route on a fresh router
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(instrument)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthCheckHandler).Methods(http.MethodGet)

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/info", h.InfoHandler).Methods(http.MethodGet)
	apiV1.HandleFunc("/price", h.PriceHandler).Methods(http.MethodGet)
	apiV1.HandleFunc("/users", h.RegisterHandler).Methods(http.MethodPost)

	admin := apiV1.PathPrefix("/admin").Subrouter()
	admin.Use(h.requireAdmin)
	admin.HandleFunc("/pledges/pending", h.ListPendingHandler).Methods(http.MethodGet)
	admin.HandleFunc("/pledges/{code}/accept", h.AcceptPledgeHandler).Methods(http.MethodPost)

	user := apiV1.NewRoute().Subrouter()
	user.Use(h.requireUser)
	user.HandleFunc("/pledges", h.SubmitPledgeHandler).Methods(http.MethodPost)
	user.HandleFunc("/dashboard", h.DashboardHandler).Methods(http.MethodGet)

	return r
}
