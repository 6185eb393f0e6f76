// Package api serves the ledger query and bridge command endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/burnmint-bridge/pkg/app/errors"
	apphttp "github.com/chainsafe/burnmint-bridge/pkg/app/http"
	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
	"github.com/chainsafe/burnmint-bridge/pkg/ethereum"
	"github.com/chainsafe/burnmint-bridge/pkg/ledger"
)

const readyTimeout = 5 * time.Second

// Chains resolves network connections and reports their health.
type Chains interface {
	Get(n bridge.Network) (*ethereum.Connection, error)
	Unhealthy() []bridge.Network
}

// HTTP holds the API handlers.
type HTTP struct {
	store       ledger.Store
	chains      Chains
	credentials func() error
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewHTTP creates the API handlers. credentials reports missing relay
// configuration, which makes bridge requests pointless.
func NewHTTP(store ledger.Store, chains Chains, credentials func() error, logger *zap.Logger) *HTTP {
	return &HTTP{
		store:       store,
		chains:      chains,
		credentials: credentials,
		validate:    validator.New(),
		logger:      logger.With(zap.String("component", "api")),
	}
}

// RegisterRoutes mounts the API on r. authn, when not nil, guards the command endpoint.
func RegisterRoutes(r chi.Router, h *HTTP, authn func(http.Handler) http.Handler) {
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/ready", apphttp.HandleError(h.ready))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/transactions", apphttp.HandleError(h.list))
		r.Get("/transactions/{id}", apphttp.HandleError(h.get))
		r.Group(func(r chi.Router) {
			if authn != nil {
				r.Use(authn)
			}
			r.Post("/bridge", apphttp.HandleError(h.bridge))
		})
	})
}

func (h *HTTP) ready(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		return apperrors.UnavailableError(err, "ledger store unreachable")
	}
	if down := h.chains.Unhealthy(); len(down) > 0 {
		names := make([]string, len(down))
		for i, n := range down {
			names[i] = n.String()
		}
		return apperrors.UnavailableError(nil, "networks not connected: "+strings.Join(names, ", "))
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("READY"))
	return nil
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	filter := ledger.ListFilter{Recipient: q.Get("recipient")}

	if s := q.Get("status"); s != "" {
		status, err := bridge.ParseStatus(strings.ToUpper(s))
		if err != nil {
			return apperrors.BadRequestError(err, "invalid status")
		}
		filter.Status = status
	}

	var err error
	if filter.Limit, err = intParam(q.Get("limit"), ledger.DefaultListLimit); err != nil || filter.Limit <= 0 {
		return apperrors.BadRequestError(err, "invalid limit")
	}
	if filter.Limit > ledger.MaxListLimit {
		filter.Limit = ledger.MaxListLimit
	}
	if filter.Offset, err = intParam(q.Get("offset"), 0); err != nil || filter.Offset < 0 {
		return apperrors.BadRequestError(err, "invalid offset")
	}

	rows, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list transactions", zap.Error(err))
		return apperrors.GeneralError(err)
	}

	resp := ListResponse{
		Transactions: make([]Transaction, len(rows)),
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}
	for i, row := range rows {
		resp.Transactions[i] = toTransaction(row)
	}
	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.BadRequestError(err, "invalid transaction id")
	}

	row, err := h.store.Get(r.Context(), id)
	if errors.Is(err, ledger.ErrNotFound) {
		return apperrors.ResourceNotFoundError(err, "transaction not found")
	}
	if err != nil {
		h.logger.Error("Failed to get transaction", zap.String("id", id), zap.Error(err))
		return apperrors.GeneralError(err)
	}

	apphttp.WriteJSON(w, http.StatusOK, toTransaction(row))
	return nil
}

// bridge returns the burn call the user signs on the source chain. The
// relayer picks the transfer up from the resulting TokensBurned event.
func (h *HTTP) bridge(w http.ResponseWriter, r *http.Request) error {
	var req BridgeRequest
	if err := apphttp.DecodeJSON(r, h.validate, &req); err != nil {
		return err
	}
	if err := h.credentials(); err != nil {
		return apperrors.UnavailableError(err, "relay is not configured")
	}

	source := bridge.NormalizeNetwork(req.SourceNetwork)
	target := bridge.NormalizeNetwork(req.TargetNetwork)
	if source == target {
		return apperrors.BadRequestError(nil, "source and target network must differ")
	}
	conn, err := h.chains.Get(source)
	if err != nil {
		return apperrors.BadRequestError(err, fmt.Sprintf("unknown source network %q", req.SourceNetwork))
	}
	if _, err := h.chains.Get(target); err != nil {
		return apperrors.BadRequestError(err, fmt.Sprintf("unknown target network %q", req.TargetNetwork))
	}

	amount, err := bridge.ToBaseUnits(req.Amount, conn.TokenDecimals())
	if err != nil {
		return apperrors.BadRequestError(err, err.Error())
	}
	value, err := bridge.AmountToBigInt(amount)
	if err != nil {
		return apperrors.BadRequestError(err, err.Error())
	}
	data, err := ethereum.PackBurn(common.HexToAddress(req.Recipient), value)
	if err != nil {
		return apperrors.BadRequestError(err, err.Error())
	}

	h.logger.Info("Bridge request prepared",
		zap.String("recipient", req.Recipient),
		zap.String("amount", amount),
		zap.String("source_network", source.String()),
		zap.String("target_network", target.String()))

	apphttp.WriteJSON(w, http.StatusOK, BridgeResponse{
		ChainID: conn.ChainID(),
		To:      conn.TokenAddress().Hex(),
		Data:    hexutil.Encode(data),
		Amount:  amount,
	})
	return nil
}
