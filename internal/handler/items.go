package handler

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/auth"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/model"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/store"
)

// ItemsBasePath is the collection path of the item API.
const ItemsBasePath = "/api/items"

// EventPublisher receives item change events.
type EventPublisher interface {
	Publish(event model.ItemEvent)
}

// ItemsHandler handles REST API requests for items.
type ItemsHandler struct {
	// mu keeps feed events in the order the store applied the mutations.
	mu     sync.Mutex
	store  store.ItemRepository
	events EventPublisher
	logger *zap.Logger
}

// NewItemsHandler creates a new ItemsHandler. events may be nil.
func NewItemsHandler(s store.ItemRepository, events EventPublisher, logger *zap.Logger) *ItemsHandler {
	h := &ItemsHandler{
		store:  s,
		events: events,
		logger: logger,
	}
	itemsStored.Set(float64(s.Len()))
	return h
}

// RegisterRoutes registers the item routes. The error probe goes on public,
// the CRUD operations on protected, which must be a subrouter rooted at
// ItemsBasePath.
func (h *ItemsHandler) RegisterRoutes(public, protected *mux.Router) {
	public.HandleFunc(ItemsBasePath+"/TestError", h.TestError).Methods(http.MethodGet)

	protected.HandleFunc("", h.ListItems).Methods(http.MethodGet)
	protected.HandleFunc("", h.CreateItem).Methods(http.MethodPost)
	protected.HandleFunc("/"+idPattern, h.GetItem).Methods(http.MethodGet)
	protected.HandleFunc("/"+idPattern, h.UpdateItem).Methods(http.MethodPut)
	protected.HandleFunc("/"+idPattern, h.DeleteItem).Methods(http.MethodDelete)
}

// ListItems handles GET /api/items requests.
func (h *ItemsHandler) ListItems(w http.ResponseWriter, _ *http.Request) {
	items := h.store.List()
	h.logger.Info("fetching all items", zap.Int("count", len(items)))

	writeJSON(h.logger, w, http.StatusOK, items)
}

// GetItem handles GET /api/items/{id} requests.
func (h *ItemsHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(h.logger, w, http.StatusBadRequest, msgInvalidID)
		return
	}

	h.logger.Info("fetching item", zap.Int("id", id))

	item, found := h.store.GetByID(id)
	if !found {
		writeError(h.logger, w, http.StatusNotFound, "item not found")
		return
	}

	writeJSON(h.logger, w, http.StatusOK, item)
}

// CreateItem handles POST /api/items requests.
func (h *ItemsHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var input model.ItemCreate
	if !decodeJSON(h.logger, w, r, &input) {
		return
	}

	h.mu.Lock()
	item, err := h.store.Create(input)
	if err == nil {
		h.changed(model.ItemEventCreated, item.ID, &item)
	}
	h.mu.Unlock()

	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			h.logger.Warn("item rejected",
				zap.String("field", verr.Field),
				zap.String("reason", verr.Message),
			)
			writeError(h.logger, w, http.StatusBadRequest, verr.Message)
			return
		}

		h.logger.Error("failed to create item", zap.Error(err))
		writeError(h.logger, w, http.StatusInternalServerError, msgInternal)
		return
	}

	h.logger.Info("item created", zap.Int("id", item.ID), zap.String("user", auth.Subject(r.Context())))

	w.Header().Set("Location", ItemsBasePath+"/"+strconv.Itoa(item.ID))
	writeJSON(h.logger, w, http.StatusCreated, item)
}

// UpdateItem handles PUT /api/items/{id} requests.
func (h *ItemsHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(h.logger, w, http.StatusBadRequest, msgInvalidID)
		return
	}

	var input model.ItemUpdate
	if !decodeJSON(h.logger, w, r, &input) {
		return
	}

	h.mu.Lock()
	item, found := h.store.Update(id, input)
	if found {
		h.changed(model.ItemEventUpdated, id, &item)
	}
	h.mu.Unlock()

	if !found {
		writeError(h.logger, w, http.StatusNotFound, "item not found")
		return
	}

	h.logger.Info("item updated", zap.Int("id", id), zap.String("user", auth.Subject(r.Context())))

	writeJSON(h.logger, w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/items/{id} requests.
func (h *ItemsHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(h.logger, w, http.StatusBadRequest, msgInvalidID)
		return
	}

	h.mu.Lock()
	deleted := h.store.Delete(id)
	if deleted {
		h.changed(model.ItemEventDeleted, id, nil)
	}
	h.mu.Unlock()

	if !deleted {
		writeError(h.logger, w, http.StatusNotFound, "item not found")
		return
	}

	h.logger.Info("item deleted", zap.Int("id", id), zap.String("user", auth.Subject(r.Context())))

	w.WriteHeader(http.StatusNoContent)
}

// TestError handles GET /api/items/TestError by panicking, exercising the
// recovery middleware and error logging.
func (h *ItemsHandler) TestError(_ http.ResponseWriter, _ *http.Request) {
	h.logger.Info("test error endpoint called")
	panic("test exception for logging")
}

// changed refreshes the store gauge and publishes an item event. Callers
// hold h.mu.
func (h *ItemsHandler) changed(eventType string, id int, item *model.Item) {
	itemsStored.Set(float64(h.store.Len()))

	if h.events == nil {
		return
	}

	var snapshot *model.Item
	if item != nil {
		c := item.Clone()
		snapshot = &c
	}
	h.events.Publish(model.NewItemEvent(eventType, id, snapshot))
}
