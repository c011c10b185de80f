package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/model"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/store"
)

// ProductsBasePath is the collection path of the product API.
const ProductsBasePath = "/api/product"

// Validator checks request payloads and returns the failures of the first
// invalid one.
type Validator interface {
	Validate(args ...any) []model.FieldError
}

// ProductsHandler handles REST API requests for products.
type ProductsHandler struct {
	store     store.ProductRepository
	validator Validator
	logger    *zap.Logger
}

// NewProductsHandler creates a new ProductsHandler.
func NewProductsHandler(s store.ProductRepository, v Validator, logger *zap.Logger) *ProductsHandler {
	return &ProductsHandler{
		store:     s,
		validator: v,
		logger:    logger,
	}
}

// RegisterRoutes registers the product routes with the router.
func (h *ProductsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(ProductsBasePath, h.ListProducts).Methods(http.MethodGet)
	router.HandleFunc(ProductsBasePath, h.AddProduct).Methods(http.MethodPost)
	router.HandleFunc(ProductsBasePath+"/"+idPattern, h.GetProduct).Methods(http.MethodGet)
	router.HandleFunc(ProductsBasePath+"/"+idPattern, h.UpdateProduct).Methods(http.MethodPut)
	router.HandleFunc(ProductsBasePath+"/"+idPattern, h.DeleteProduct).Methods(http.MethodDelete)
}

// ListProducts handles GET /api/product requests.
func (h *ProductsHandler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	h.logger.Info("fetching all products")
	writeJSON(h.logger, w, http.StatusOK, h.store.List())
}

// GetProduct handles GET /api/product/{id} requests.
func (h *ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(h.logger, w, http.StatusBadRequest, msgInvalidID)
		return
	}

	h.logger.Info("fetching product by id", zap.Int("id", id))

	product, found := h.store.GetByID(id)
	if !found {
		writeError(h.logger, w, http.StatusNotFound, "product not found")
		return
	}

	writeJSON(h.logger, w, http.StatusOK, product)
}

// AddProduct handles POST /api/product requests.
func (h *ProductsHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var input model.Product
	if !h.decodeValid(w, r, &input) {
		return
	}

	h.logger.Info("adding a new product",
		zap.String("name", input.Name),
		zap.Float64("price", input.Price),
		zap.String("category", input.Category),
	)

	created := h.store.Add(input)

	w.Header().Set("Location", ProductsBasePath+"/"+strconv.Itoa(created.ID))
	writeJSON(h.logger, w, http.StatusCreated, created)
}

// UpdateProduct handles PUT /api/product/{id} requests.
func (h *ProductsHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(h.logger, w, http.StatusBadRequest, msgInvalidID)
		return
	}

	var input model.Product
	if !h.decodeValid(w, r, &input) {
		return
	}

	if input.ID != id {
		h.logger.Warn("product id mismatch",
			zap.Int("id", id),
			zap.Int("body_id", input.ID),
		)
		writeError(h.logger, w, http.StatusBadRequest, "id in path does not match id in body")
		return
	}

	h.logger.Info("updating product", zap.Int("id", id))

	if !h.store.Update(input) {
		writeError(h.logger, w, http.StatusNotFound, "product not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteProduct handles DELETE /api/product/{id} requests.
func (h *ProductsHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(h.logger, w, http.StatusBadRequest, msgInvalidID)
		return
	}

	h.logger.Warn("deleting product", zap.Int("id", id))

	if !h.store.Delete(id) {
		writeError(h.logger, w, http.StatusNotFound, "product not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeValid decodes the body into dst and runs the registered validation
// rules, answering 400 when either step fails.
func (h *ProductsHandler) decodeValid(w http.ResponseWriter, r *http.Request, dst *model.Product) bool {
	if !decodeJSON(h.logger, w, r, dst) {
		return false
	}

	if failures := h.validator.Validate(*dst); len(failures) > 0 {
		h.logger.Warn("validation failed",
			zap.String("path", r.URL.Path),
			zap.Int("errors", len(failures)),
		)
		writeJSON(h.logger, w, http.StatusBadRequest, failures)
		return false
	}

	return true
}
