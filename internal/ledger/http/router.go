package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	commonerrors "github.com/avbelov/mini-ledger/backend/internal/common/errors"
	commonhttp "github.com/avbelov/mini-ledger/backend/internal/common/http"
	"github.com/avbelov/mini-ledger/backend/internal/common/logger"
	"github.com/avbelov/mini-ledger/backend/internal/ledger/service"
	"github.com/avbelov/mini-ledger/backend/internal/observability/metrics"
)

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type transferRequest struct {
	Recipient string `json:"recipient" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
}

type adjustBalanceRequest struct {
	Username string `json:"username" validate:"required"`
	Amount   int64  `json:"amount" validate:"required,gt=0"`
}

type deleteUserRequest struct {
	Username string `json:"username" validate:"required"`
}

type accountResponse struct {
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
	Email    string `json:"email"`
}

type transactionsResponse struct {
	Transactions []string `json:"transactions"`
}

type adminUserRecord struct {
	Password     string   `json:"password"`
	Email        string   `json:"email"`
	Balance      int64    `json:"balance"`
	Transactions []string `json:"transactions"`
}

type adminUsersResponse struct {
	Users map[string]adminUserRecord `json:"users"`
}

type Handler struct {
	ledger   *service.LedgerService
	log      *logger.Logger
	validate *validator.Validate
	timeout  time.Duration
}

type HandlerConfig struct {
	RequestTimeout time.Duration
}

func NewHandler(ledger *service.LedgerService, log *logger.Logger, cfg HandlerConfig) http.Handler {
	h := &Handler{
		ledger:   ledger,
		log:      log,
		validate: validator.New(),
		timeout:  cfg.RequestTimeout,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.HandleFunc("/register", h.register)
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/account", h.account)
	mux.HandleFunc("/transfer", h.transfer)
	mux.HandleFunc("/transactions", h.transactions)
	mux.HandleFunc("/admin/users", h.adminUsers)
	mux.HandleFunc("/admin/addBalance", h.adminAddBalance)
	mux.HandleFunc("/admin/removeBalance", h.adminRemoveBalance)
	mux.HandleFunc("/admin/deleteUser", h.adminDeleteUser)
	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.ledger.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}

	commonhttp.WriteMessage(w, http.StatusOK, "Account created successfully!")
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.ledger.Authenticate(ctx, service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}

	commonhttp.WriteMessage(w, http.StatusOK, "Login successful!")
}

func (h *Handler) account(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.ledger.ViewAccount(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, accountResponse{
		Username: view.Username,
		Balance:  view.Balance,
		Email:    view.Email,
	})
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.ledger.Transfer(ctx, service.TransferInput{
		Recipient: req.Recipient,
		Amount:    req.Amount,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}

	commonhttp.WriteMessage(w, http.StatusOK, "Transfer successful!")
}

func (h *Handler) transactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	txs, err := h.ledger.ListTransactions(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []string{}
	}

	commonhttp.WriteJSON(w, http.StatusOK, transactionsResponse{Transactions: txs})
}

func (h *Handler) adminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	users, err := h.ledger.AdminListUsers(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make(map[string]adminUserRecord, len(users))
	for username, u := range users {
		txs := u.Transactions
		if txs == nil {
			txs = []string{}
		}
		out[username] = adminUserRecord{
			Password:     u.Password,
			Email:        u.Email,
			Balance:      u.Balance,
			Transactions: txs,
		}
	}

	commonhttp.WriteJSON(w, http.StatusOK, adminUsersResponse{Users: out})
}

func (h *Handler) adminAddBalance(w http.ResponseWriter, r *http.Request) {
	h.adminAdjustBalance(w, r, service.AdjustCredit)
}

func (h *Handler) adminRemoveBalance(w http.ResponseWriter, r *http.Request) {
	h.adminAdjustBalance(w, r, service.AdjustDebit)
}

func (h *Handler) adminAdjustBalance(w http.ResponseWriter, r *http.Request, direction service.AdjustDirection) {
	if r.Method != http.MethodPost {
		commonhttp.WriteMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req adjustBalanceRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.ledger.AdminAdjustBalance(ctx, service.AdjustInput{
		Username:  req.Username,
		Amount:    req.Amount,
		Direction: direction,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}

	if direction == service.AdjustCredit {
		commonhttp.WriteMessage(w, http.StatusOK, fmt.Sprintf("₹%d added to %s's balance.", req.Amount, req.Username))
		return
	}
	commonhttp.WriteMessage(w, http.StatusOK, fmt.Sprintf("₹%d removed from %s's balance.", req.Amount, req.Username))
}

func (h *Handler) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		commonhttp.WriteMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req deleteUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.ledger.AdminDeleteUser(ctx, req.Username); err != nil {
		h.writeError(w, r, err)
		return
	}

	commonhttp.WriteMessage(w, http.StatusOK, fmt.Sprintf("%s account deleted successfully.", req.Username))
}

// decode parses and validates the request body. On failure it writes the
// response itself and reports false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := commonhttp.DecodeJSON(r, v); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"path": r.URL.Path,
		}).Warnf("request rejected: invalid json: %v", err)
		commonhttp.WriteMessage(w, http.StatusBadRequest, "Invalid request payload.")
		return false
	}

	if err := h.validate.Struct(v); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"path": r.URL.Path,
		}).Warnf("request rejected: validation failed: %v", err)
		commonhttp.WriteMessage(w, http.StatusBadRequest, "Invalid request payload.")
		return false
	}

	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if de, ok := commonerrors.AsDomainError(err); ok {
		metrics.DomainErrorsTotal.WithLabelValues(
			string(de.Category()), de.Code(), strconv.Itoa(de.HTTPStatus()),
		).Inc()
		commonhttp.WriteMessage(w, de.HTTPStatus(), de.Message())
		return
	}

	h.log.WithFields(r.Context(), logger.Fields{
		"path": r.URL.Path,
	}).Errorf("request failed: %v", err)
	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(http.StatusInternalServerError), r.URL.Path, r.Method,
	).Inc()
	commonhttp.WriteMessage(w, http.StatusInternalServerError, "internal error")
}
