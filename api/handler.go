package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pledgebook/models"
	"pledgebook/service"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 16

// Handler serves the JSON API over the ledger services
type Handler struct {
	users           service.UserService
	pledges         service.PledgeService
	admin           service.AdminService
	dashboard       service.DashboardService
	prices          service.PriceProvider
	adminToken      string
	donationAddress string
}

// Options carries the settings the handlers need besides services
type Options struct {
	AdminToken      string
	DonationAddress string
}

// NewHandler creates the API handler
func NewHandler(
	users service.UserService,
	pledges service.PledgeService,
	admin service.AdminService,
	dashboard service.DashboardService,
	prices service.PriceProvider,
	opts Options,
) *Handler {
	return &Handler{
		users:           users,
		pledges:         pledges,
		admin:           admin,
		dashboard:       dashboard,
		prices:          prices,
		adminToken:      opts.AdminToken,
		donationAddress: opts.DonationAddress,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created"`
}

type submitRequest struct {
	Type     models.PledgeKind `json:"type"`
	AmountPi float64           `json:"amount_pi"`
}

// HealthCheckHandler reports liveness
func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// InfoHandler returns the static details shown next to the pledge form
func (h *Handler) InfoHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"donation_address": h.donationAddress,
		"monthly_rate":     service.MonthlyRate,
	})
}

// PriceHandler returns the current quote, possibly stale
func (h *Handler) PriceHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.prices.GetPrice(r.Context()))
}

// RegisterHandler creates an account
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrUsernameRequired), errors.Is(err, service.ErrPasswordRequired):
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, service.ErrUsernameTaken):
		respondWithError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.internalError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, userResponse{Username: user.Username, CreatedAt: user.CreatedAt})
}

// SubmitPledgeHandler records a pending pledge for the authenticated user
func (h *Handler) SubmitPledgeHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "amount_pi" {
			respondWithError(w, http.StatusUnprocessableEntity, service.ErrInvalidAmount.Error())
			return
		}
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	pledge, err := h.pledges.Submit(r.Context(), user.Username, req.Type, req.AmountPi)
	switch {
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidKind):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		h.internalError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/pledges/"+pledge.Code)
	respondWithJSON(w, http.StatusCreated, pledge)
}

// DashboardHandler returns the authenticated user's valued pledges
func (h *Handler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	dashboard, err := h.dashboard.Dashboard(r.Context(), user.Username)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}

// ListPendingHandler returns every pledge awaiting acceptance
func (h *Handler) ListPendingHandler(w http.ResponseWriter, r *http.Request) {
	pending, err := h.admin.ListPending(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if pending == nil {
		pending = []*models.Pledge{}
	}

	respondWithJSON(w, http.StatusOK, pending)
}

// AcceptPledgeHandler accepts the pending pledge named in the path
func (h *Handler) AcceptPledgeHandler(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	pledge, err := h.admin.AcceptPledge(r.Context(), code)
	switch {
	case errors.Is(err, service.ErrPledgeNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		h.internalError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, pledge)
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	log.WithError(err).WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("Request failed")
	respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
