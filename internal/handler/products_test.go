package handler

import (
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/model"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/store"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/validation"
)

func newProductsRouter(t *testing.T, s store.ProductRepository) *mux.Router {
	t.Helper()

	registry, err := validation.NewDefaultRegistry()
	if err != nil {
		t.Fatalf("NewDefaultRegistry() error = %v", err)
	}

	router := mux.NewRouter()
	NewProductsHandler(s, registry, zap.NewNop()).RegisterRoutes(router)
	return router
}

func TestProductsHandler_ListProducts(t *testing.T) {
	// Arrange
	router := newProductsRouter(t, store.NewProductStore(store.DefaultProducts()...))

	// Act
	rr := serve(router, http.MethodGet, "/api/product", nil)

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	products := decodeBody[[]model.Product](t, rr)
	if len(products) != 2 {
		t.Fatalf("len(products) = %d, want 2", len(products))
	}
	if products[0].Name != "Laptop" || products[1].Name != "Mouse" {
		t.Errorf("products = %+v, want Laptop then Mouse", products)
	}
}

func TestProductsHandler_GetProduct(t *testing.T) {
	// Arrange
	router := newProductsRouter(t, store.NewProductStore(store.DefaultProducts()...))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantName   string
	}{
		{"seeded product", "/api/product/2", http.StatusOK, "Mouse"},
		{"missing product", "/api/product/9", http.StatusNotFound, ""},
		{"non-numeric id does not route", "/api/product/x", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			rr := serve(router, http.MethodGet, tt.path, nil)

			// Assert
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantName != "" {
				if p := decodeBody[model.Product](t, rr); p.Name != tt.wantName {
					t.Errorf("Name = %q, want %q", p.Name, tt.wantName)
				}
			}
		})
	}
}

func TestProductsHandler_AddProduct(t *testing.T) {
	// Arrange
	s := store.NewProductStore(store.DefaultProducts()...)
	router := newProductsRouter(t, s)

	// Act
	rr := serve(router, http.MethodPost, "/api/product",
		[]byte(`{"id":77,"name":"Keyboard","price":1500,"category":"Electronics"}`))

	// Assert
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/api/product/3" {
		t.Errorf("Location = %q, want /api/product/3", loc)
	}

	created := decodeBody[model.Product](t, rr)
	if created.ID != 3 {
		t.Errorf("ID = %d, want 3 (client id ignored)", created.ID)
	}
	if _, ok := s.GetByID(3); !ok {
		t.Error("product 3 should be stored")
	}
}

func TestProductsHandler_AddProduct_ValidationFailure(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{
			name:       "short name",
			body:       `{"name":"TV","price":10,"category":"Electronics"}`,
			wantFields: []string{"Name"},
		},
		{
			name:       "non-positive price",
			body:       `{"name":"Lamp","price":0,"category":"Electronics"}`,
			wantFields: []string{"Price"},
		},
		{
			name:       "unknown category",
			body:       `{"name":"Lamp","price":10,"category":"Toys"}`,
			wantFields: []string{"Category"},
		},
		{
			name:       "everything wrong",
			body:       `{}`,
			wantFields: []string{"Name", "Price", "Category"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s := store.NewProductStore(store.DefaultProducts()...)
			router := newProductsRouter(t, s)

			// Act
			rr := serve(router, http.MethodPost, "/api/product", []byte(tt.body))

			// Assert
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
			}

			failures := decodeBody[[]model.FieldError](t, rr)
			if len(failures) != len(tt.wantFields) {
				t.Fatalf("failures = %+v, want fields %v", failures, tt.wantFields)
			}
			for i, field := range tt.wantFields {
				if failures[i].PropertyName != field {
					t.Errorf("failures[%d].PropertyName = %q, want %q", i, failures[i].PropertyName, field)
				}
				if failures[i].ErrorMessage == "" {
					t.Errorf("failures[%d].ErrorMessage is empty", i)
				}
			}
			if len(s.List()) != 2 {
				t.Errorf("store size = %d, want 2", len(s.List()))
			}
		})
	}
}

func TestProductsHandler_UpdateProduct(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantFields bool
	}{
		{
			name:       "valid update",
			path:       "/api/product/1",
			body:       `{"id":1,"name":"Gaming Laptop","price":99000,"category":"Electronics"}`,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "id mismatch",
			path:       "/api/product/1",
			body:       `{"id":2,"name":"Gaming Laptop","price":99000,"category":"Electronics"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "validation runs before id check",
			path:       "/api/product/1",
			body:       `{"id":2,"name":"X","price":99000,"category":"Electronics"}`,
			wantStatus: http.StatusBadRequest,
			wantFields: true,
		},
		{
			name:       "missing product",
			path:       "/api/product/9",
			body:       `{"id":9,"name":"Monitor","price":100,"category":"Electronics"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid json",
			path:       "/api/product/1",
			body:       `{"id":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s := store.NewProductStore(store.DefaultProducts()...)
			router := newProductsRouter(t, s)

			// Act
			rr := serve(router, http.MethodPut, tt.path, []byte(tt.body))

			// Assert
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantFields {
				if failures := decodeBody[[]model.FieldError](t, rr); len(failures) == 0 {
					t.Error("expected field errors")
				}
			}

			laptop, _ := s.GetByID(1)
			wantName := "Laptop"
			if tt.wantStatus == http.StatusNoContent {
				wantName = "Gaming Laptop"
			}
			if laptop.Name != wantName {
				t.Errorf("stored name = %q, want %q", laptop.Name, wantName)
			}
		})
	}
}

func TestProductsHandler_DeleteProduct(t *testing.T) {
	// Arrange
	s := store.NewProductStore(store.DefaultProducts()...)
	router := newProductsRouter(t, s)

	// Act
	first := serve(router, http.MethodDelete, "/api/product/2", nil)
	second := serve(router, http.MethodDelete, "/api/product/2", nil)

	// Assert
	if first.Code != http.StatusNoContent {
		t.Errorf("first delete status = %d, want %d", first.Code, http.StatusNoContent)
	}
	if second.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", second.Code, http.StatusNotFound)
	}
	if len(s.List()) != 1 {
		t.Errorf("store size = %d, want 1", len(s.List()))
	}
}
