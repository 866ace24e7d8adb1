package dining

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	logger    apt.Logger
	config    *apt.Config
	tlm       *telemetry.HTTP
	service   *Service
	rateLimit func(http.Handler) http.Handler
}

type HandlerDeps struct {
	Service *Service
	// RateLimit guards the guest submission endpoint. Nil disables it.
	RateLimit func(http.Handler) http.Handler
}

func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	rl := hd.RateLimit
	if rl == nil {
		rl = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{
		config:    config,
		logger:    logger,
		tlm:       telemetry.NewHTTP(),
		service:   hd.Service,
		rateLimit: rl,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tables", func(r chi.Router) {
		r.Get("/", h.ListTables)
		r.Get("/{id}/orders", h.ListTableOrders)
		r.Post("/{id}/open", h.OpenTable)
		r.Post("/{id}/request-bill", h.RequestBill)
		r.Post("/{id}/set-cleaning", h.SetCleaning)
		r.Post("/{id}/set-available", h.SetAvailable)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/draft", h.GetDraftOrder)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/confirm", h.ConfirmOrder)
		r.Get("/{id}/bill", h.GetBill)
		r.Post("/{id}/checkout", h.Checkout)

		r.Route("/{id}/items", func(r chi.Router) {
			r.Post("/", h.AddItem)
			r.Put("/{itemID}", h.UpdateItem)
			r.Delete("/{itemID}", h.RemoveItem)
			r.Post("/{itemID}/status", h.UpdateItemStatus)
		})
	})

	r.Route("/public", func(r chi.Router) {
		r.Get("/menu", h.GetPublicMenu)
		r.Get("/tables/{token}", h.GetPublicTable)
		r.With(h.rateLimit).Post("/tables/{token}/submit", h.SubmitOrder)
	})
}

// Table handlers

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTables")
	defer finish()

	tables, err := h.service.ListTables(r.Context())
	if err != nil {
		h.respondError(w, h.log(r), err, "Could not retrieve tables")
		return
	}

	apt.RespondCollection(w, tables, "table")
}

func (h *Handler) ListTableOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTableOrders")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, "id", log)
	if !ok {
		return
	}

	var statuses []OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, OrderStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}

	orders, err := h.service.ListTableOrders(r.Context(), id, statuses...)
	if err != nil {
		h.respondError(w, log, err, "Could not retrieve orders")
		return
	}

	apt.RespondCollection(w, orders, "order")
}

func (h *Handler) OpenTable(w http.ResponseWriter, r *http.Request) {
	h.tableCommand(w, r, "Handler.OpenTable", h.service.OpenTable)
}

func (h *Handler) RequestBill(w http.ResponseWriter, r *http.Request) {
	h.tableCommand(w, r, "Handler.RequestBill", h.service.RequestBill)
}

func (h *Handler) SetCleaning(w http.ResponseWriter, r *http.Request) {
	h.tableCommand(w, r, "Handler.SetCleaning", h.service.SetCleaning)
}

func (h *Handler) SetAvailable(w http.ResponseWriter, r *http.Request) {
	h.tableCommand(w, r, "Handler.SetAvailable", h.service.SetAvailable)
}

type tableCommandFunc func(ctx context.Context, id uuid.UUID) (TableSummary, error)

func (h *Handler) tableCommand(w http.ResponseWriter, r *http.Request, name string, cmd tableCommandFunc) {
	w, r, finish := h.tlm.Start(w, r, name)
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, "id", log)
	if !ok {
		return
	}

	table, err := cmd(r.Context(), id)
	if err != nil {
		h.respondError(w, log, err, "Could not update table")
		return
	}

	log.Info("table status changed", "table_id", id.String(), "status", table.Status)
	apt.RespondSuccess(w, table, apt.RESTfulLinksFor(table)...)
}

// Order handlers

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, "id", log)
	if !ok {
		return
	}

	detail, err := h.service.GetOrderDetail(r.Context(), id)
	if err != nil {
		h.respondError(w, log, err, "Could not retrieve order")
		return
	}

	apt.RespondSuccess(w, detail, apt.RESTfulLinksFor(detail)...)
}

func (h *Handler) GetDraftOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetDraftOrder")
	defer finish()

	log := h.log(r)

	raw := r.URL.Query().Get("table_id")
	tableID, err := uuid.Parse(raw)
	if err != nil {
		log.Debug("invalid table_id parameter", "table_id", raw)
		apt.RespondError(w, http.StatusBadRequest, "Invalid table_id parameter")
		return
	}

	detail, err := h.service.GetDraftByTable(r.Context(), tableID)
	if err != nil {
		h.respondError(w, log, err, "Could not retrieve draft order")
		return
	}

	apt.RespondSuccess(w, detail, apt.RESTfulLinksFor(detail)...)
}

func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ConfirmOrder")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, "id", log)
	if !ok {
		return
	}

	res, err := h.service.ConfirmOrder(r.Context(), id)
	if err != nil {
		h.respondError(w, log, err, "Could not confirm order")
		return
	}

	log.Info("order confirmed", "order_id", id.String())
	apt.RespondSuccess(w, res)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddItem")
	defer finish()

	log := h.log(r)

	orderID, ok := h.parseIDParam(w, r, "id", log)
	if !ok {
		return
	}

	var req AddItemRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}
	if req.MenuItemID == uuid.Nil {
		apt.RespondError(w, http.StatusBadRequest, "menu_item_id is required")
		return
	}

	item, err := h.service.AddItem(r.Context(), orderID, req)
	if err != nil {
		h.respondError(w, log, err, "Could not add item")
		return
	}

	apt.Respond(w, http.StatusCreated, item, nil)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateItem")
	defer finish()

	log := h.log(r)

	orderID, itemID, ok := h.parseItemParams(w, r, log)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	item, err := h.service.UpdateItem(r.Context(), orderID, itemID, req)
	if err != nil {
		h.respondError(w, log, err, "Could not update item")
		return
	}

	apt.RespondSuccess(w, item, apt.RESTfulLinksFor(item)...)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RemoveItem")
	defer finish()

	log := h.log(r)

	orderID, itemID, ok := h.parseItemParams(w, r, log)
	if !ok {
		return
	}

	res, err := h.service.RemoveItem(r.Context(), orderID, itemID)
	if err != nil {
		h.respondError(w, log, err, "Could not remove item")
		return
	}

	apt.RespondSuccess(w, res)
}

func (h *Handler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateItemStatus")
	defer finish()

	log := h.log(r)

	orderID, itemID, ok := h.parseItemParams(w, r, log)
	if !ok {
		return
	}

	var req ItemStatusRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}
	req.Status = ItemStatus(strings.ToUpper(strings.TrimSpace(string(req.Status))))

	res, err := h.service.UpdateItemStatus(r.Context(), orderID, itemID, req)
	if err != nil {
		h.respondError(w, log, err, "Could not change item status")
		return
	}

	apt.RespondSuccess(w, res)
}

func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetBill")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, "id", log)
	if !ok {
		return
	}

	bill, err := h.service.Bill(r.Context(), id)
	if err != nil {
		h.respondError(w, log, err, "Could not compute bill")
		return
	}

	apt.RespondSuccess(w, bill)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Checkout")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, "id", log)
	if !ok {
		return
	}

	var req CheckoutRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}
	req.Method = PaymentMethod(strings.ToUpper(strings.TrimSpace(string(req.Method))))

	res, err := h.service.Checkout(r.Context(), id, req)
	if err != nil {
		h.respondError(w, log, err, "Could not check out order")
		return
	}

	log.Info("order checked out", "order_id", id.String(), "payment_id", res.PaymentID.String(), "total", res.Total.StringFixed(2))
	apt.Respond(w, http.StatusCreated, res, nil)
}

// Public handlers

func (h *Handler) GetPublicMenu(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetPublicMenu")
	defer finish()

	items, err := h.service.PublicMenu(r.Context())
	if err != nil {
		h.respondError(w, h.log(r), err, "Could not retrieve menu")
		return
	}

	apt.RespondCollection(w, items, "menu-item")
}

func (h *Handler) GetPublicTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetPublicTable")
	defer finish()

	info, err := h.service.PublicTable(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.respondError(w, h.log(r), err, "Could not resolve table")
		return
	}

	apt.RespondSuccess(w, info)
}

func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SubmitOrder")
	defer finish()

	log := h.log(r)

	var req SubmitRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	res, err := h.service.SubmitByToken(r.Context(), chi.URLParam(r, "token"), req)
	if err != nil {
		h.respondError(w, log, err, "Could not submit order")
		return
	}

	log.Info("guest order submitted", "order_id", res.OrderID.String(), "table_id", res.TableID.String(), "items", len(req.Items))
	apt.RespondSuccess(w, res)
}

// Helpers

func (h *Handler) respondError(w http.ResponseWriter, log apt.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Debug("resource not found", "error", err)
		apt.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrRejected):
		log.Info("request rejected", "error", err)
		apt.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrConflict):
		log.Info("concurrent modification", "error", err)
		apt.RespondError(w, http.StatusConflict, "Resource was modified concurrently, please retry")
	default:
		log.Error(strings.ToLower(fallback), "error", err)
		apt.RespondError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, name string, log apt.Logger) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Debug("invalid id parameter", "param", name, "value", raw)
		apt.RespondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) parseItemParams(w http.ResponseWriter, r *http.Request, log apt.Logger) (uuid.UUID, uuid.UUID, bool) {
	orderID, ok := h.parseIDParam(w, r, "id", log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	itemID, ok := h.parseIDParam(w, r, "itemID", log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return orderID, itemID, true
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request, log apt.Logger, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("cannot read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		log.Debug("cannot decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	return true
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", apt.RequestIDFrom(r.Context()))
}
