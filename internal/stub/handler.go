package stub

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mzansipay/wallet/internal/request/rules"
	"github.com/mzansipay/wallet/pkg/middleware"
	"github.com/mzansipay/wallet/pkg/response"
)

// Handler exposes the request-service and ledger-service wire contracts.
type Handler struct {
	service *Service
	ledger  *Ledger
}

// NewHandler creates a new stub handler.
func NewHandler(service *Service, ledger *Ledger) *Handler {
	return &Handler{service: service, ledger: ledger}
}

// Routes returns the router for both service surfaces. The ledger surface is
// mounted under /ledger to keep a single process serving both base URLs.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api/v1/requests", func(r chi.Router) {
		r.Post("/", h.CreateRequest)
		r.Get("/{id}", h.GetRequest)
		r.Post("/{id}/contribute", h.Contribute)
		r.Post("/{id}/complete", h.Complete)
		r.Get("/created-by/{userId}", h.ListCreatedBy)
		r.Get("/contributed-to/{userId}", h.ListContributedBy)
	})

	r.Route("/ledger", func(r chi.Router) {
		r.Get("/recipient/{identifier}", h.ResolveRecipient)
		r.Get("/{userId}/balance", h.Balance)
		r.Post("/activate-pay/{userId}", h.ActivatePay)
		r.Post("/transfer/{userId}", h.Transfer)
	})

	return r
}

// CreateRequest handles POST /api/v1/requests
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	createdBy, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.BadRequest(w, "X-User-ID header is required")
		return
	}

	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	created, err := h.service.Create(r.Context(), createdBy, &in)
	if err != nil {
		var verrs rules.Errors
		if errors.As(err, &verrs) {
			response.BadRequest(w, verrs.Error())
			return
		}
		if errors.Is(err, ErrMissingCreator) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create request")
		return
	}

	response.JSON(w, http.StatusCreated, created)
}

// GetRequest handles GET /api/v1/requests/{id}
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := middleware.GetUserID(r.Context())

	req, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), viewerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get request")
		return
	}

	response.JSON(w, http.StatusOK, req)
}

// contributeBody is the wire shape of a contribution.
type contributeBody struct {
	UserID string  `json:"userId"`
	Amount float64 `json:"amount"`
	Notes  string  `json:"notes"`
}

// Contribute handles POST /api/v1/requests/{id}/contribute
func (h *Handler) Contribute(w http.ResponseWriter, r *http.Request) {
	var body contributeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if body.UserID == "" {
		response.BadRequest(w, "userId is required")
		return
	}

	updated, err := h.service.Contribute(r.Context(), chi.URLParam(r, "id"), body.UserID, body.Amount, body.Notes)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrRequestCompleted), errors.Is(err, ErrRequestExpired),
			errors.Is(err, ErrDuplicateContribution), errors.Is(err, ErrOverRemaining):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to record contribution")
		}
		return
	}

	response.JSON(w, http.StatusOK, updated)
}

// Complete handles POST /api/v1/requests/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Complete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrRequestExpired) {
			response.Conflict(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to complete request")
		return
	}

	response.JSON(w, http.StatusOK, nil)
}

// ListCreatedBy handles GET /api/v1/requests/created-by/{userId}
func (h *Handler) ListCreatedBy(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	reqs, err := h.service.ListCreatedBy(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list created requests")
		return
	}
	response.JSON(w, http.StatusOK, reqs)
}

// ListContributedBy handles GET /api/v1/requests/contributed-to/{userId}
func (h *Handler) ListContributedBy(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	reqs, err := h.service.ListContributedBy(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list contributions")
		return
	}
	response.JSON(w, http.StatusOK, reqs)
}

// ResolveRecipient handles GET /ledger/recipient/{identifier}
func (h *Handler) ResolveRecipient(w http.ResponseWriter, r *http.Request) {
	rec, err := h.ledger.Resolve(chi.URLParam(r, "identifier"))
	if err != nil {
		response.NotFound(w, "Recipient not found")
		return
	}
	response.JSON(w, http.StatusOK, rec)
}

// Balance handles GET /ledger/{userId}/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	bal, err := h.ledger.Balance(chi.URLParam(r, "userId"))
	if err != nil {
		response.NotFound(w, "Account not found")
		return
	}
	response.JSON(w, http.StatusOK, bal)
}

// ActivatePay handles POST /ledger/activate-pay/{userId}
func (h *Handler) ActivatePay(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Activate(chi.URLParam(r, "userId")); err != nil {
		response.NotFound(w, "Account not found")
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "activated"})
}

// transferBody is the wire shape of a direct transfer.
type transferBody struct {
	TransactionAmount    float64 `json:"transactionAmount"`
	TransactionRecipient string  `json:"transactionRecipient"`
	TransactionNotes     string  `json:"transactionNotes"`
}

// Transfer handles POST /ledger/transfer/{userId}
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var body transferBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.ledger.Transfer(chi.URLParam(r, "userId"), body.TransactionRecipient, body.TransactionAmount)
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotActivated), errors.Is(err, ErrInsufficientFunds):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Transfer failed")
		}
		return
	}

	response.JSON(w, http.StatusOK, result)
}
