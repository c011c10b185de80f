// Package openapi builds the OpenAPI 3 document describing the HTTP API.
package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/handler"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/model"
)

// DocumentPath is where the document is served outside Production.
const DocumentPath = "/swagger/v1/swagger.json"

// BearerSchemeName names the JWT security scheme in the document.
const BearerSchemeName = "Bearer"

// response describes one documented response.
type response struct {
	description string
	body        any
}

// operation describes one documented route.
type operation struct {
	method    string
	path      string
	summary   string
	tag       string
	secured   bool
	pathID    bool
	request   any
	responses map[int]response
}

var (
	errorBody  = model.ErrorResponse{}
	fieldsBody = []model.FieldError{}
)

// operations lists every documented route.
func operations() []operation {
	itemPath := handler.ItemsBasePath + "/{id}"
	productPath := handler.ProductsBasePath + "/{id}"

	return []operation{
		{
			method: http.MethodPost, path: handler.LoginPath, tag: "Auth",
			summary: "Exchange credentials for a bearer token",
			request: model.LoginRequest{},
			responses: map[int]response{
				http.StatusOK:           {"token issued", model.TokenResponse{}},
				http.StatusBadRequest:   {"malformed body", errorBody},
				http.StatusUnauthorized: {"invalid credentials", errorBody},
			},
		},
		{
			method: http.MethodGet, path: handler.ItemsBasePath, tag: "Items", secured: true,
			summary: "List items",
			responses: map[int]response{
				http.StatusOK:           {"all items in insertion order", []model.Item{}},
				http.StatusUnauthorized: {"missing or invalid token", errorBody},
			},
		},
		{
			method: http.MethodPost, path: handler.ItemsBasePath, tag: "Items", secured: true,
			summary: "Create an item",
			request: model.ItemCreate{},
			responses: map[int]response{
				http.StatusCreated:      {"item created", model.Item{}},
				http.StatusBadRequest:   {"name missing or body malformed", errorBody},
				http.StatusUnauthorized: {"missing or invalid token", errorBody},
			},
		},
		{
			method: http.MethodGet, path: itemPath, tag: "Items", secured: true, pathID: true,
			summary: "Get an item",
			responses: map[int]response{
				http.StatusOK:           {"the item", model.Item{}},
				http.StatusNotFound:     {"no such item", errorBody},
				http.StatusUnauthorized: {"missing or invalid token", errorBody},
			},
		},
		{
			method: http.MethodPut, path: itemPath, tag: "Items", secured: true, pathID: true,
			summary: "Update an item",
			request: model.ItemUpdate{},
			responses: map[int]response{
				http.StatusOK:           {"the updated item", model.Item{}},
				http.StatusNotFound:     {"no such item", errorBody},
				http.StatusUnauthorized: {"missing or invalid token", errorBody},
			},
		},
		{
			method: http.MethodDelete, path: itemPath, tag: "Items", secured: true, pathID: true,
			summary: "Delete an item",
			responses: map[int]response{
				http.StatusNoContent:    {"item deleted", nil},
				http.StatusNotFound:     {"no such item", errorBody},
				http.StatusUnauthorized: {"missing or invalid token", errorBody},
			},
		},
		{
			method: http.MethodGet, path: handler.ItemsBasePath + "/TestError", tag: "Items",
			summary: "Raise a server error",
			responses: map[int]response{
				http.StatusInternalServerError: {"always", errorBody},
			},
		},
		{
			method: http.MethodGet, path: handler.ProductsBasePath, tag: "Product",
			summary: "List products",
			responses: map[int]response{
				http.StatusOK: {"all products", []model.Product{}},
			},
		},
		{
			method: http.MethodPost, path: handler.ProductsBasePath, tag: "Product",
			summary: "Add a product",
			request: model.Product{},
			responses: map[int]response{
				http.StatusCreated:    {"product added", model.Product{}},
				http.StatusBadRequest: {"validation failed", fieldsBody},
			},
		},
		{
			method: http.MethodGet, path: productPath, tag: "Product", pathID: true,
			summary: "Get a product",
			responses: map[int]response{
				http.StatusOK:       {"the product", model.Product{}},
				http.StatusNotFound: {"no such product", errorBody},
			},
		},
		{
			method: http.MethodPut, path: productPath, tag: "Product", pathID: true,
			summary: "Replace a product",
			request: model.Product{},
			responses: map[int]response{
				http.StatusNoContent:  {"product updated", nil},
				http.StatusBadRequest: {"validation failed or id mismatch", fieldsBody},
				http.StatusNotFound:   {"no such product", errorBody},
			},
		},
		{
			method: http.MethodDelete, path: productPath, tag: "Product", pathID: true,
			summary: "Delete a product",
			responses: map[int]response{
				http.StatusNoContent: {"product deleted", nil},
				http.StatusNotFound:  {"no such product", errorBody},
			},
		},
	}
}

// Build creates the OpenAPI document for the API.
func Build(title, version string) (*openapi3.Spec, error) {
	spec := &openapi3.Spec{
		Openapi: "3.0.3",
		Info: openapi3.Info{
			Title:   title,
			Version: version,
		},
	}

	spec.ComponentsEns().SecuritySchemesEns().WithMapOfSecuritySchemeOrRefValuesItem(
		BearerSchemeName,
		openapi3.SecuritySchemeOrRef{
			SecurityScheme: &openapi3.SecurityScheme{
				HTTPSecurityScheme: &openapi3.HTTPSecurityScheme{
					Scheme:       "bearer",
					BearerFormat: model.Ptr("JWT"),
				},
			},
		},
	)

	for _, op := range operations() {
		def, err := op.definition()
		if err != nil {
			return nil, fmt.Errorf("describing %s %s: %w", op.method, op.path, err)
		}

		if err := spec.AddOperation(op.method, op.path, def); err != nil {
			return nil, fmt.Errorf("adding %s %s: %w", op.method, op.path, err)
		}
	}

	return spec, nil
}

// definition converts op into an openapi3.Operation.
func (op operation) definition() (openapi3.Operation, error) {
	def := openapi3.Operation{
		Summary: model.Ptr(op.summary),
		Tags:    []string{op.tag},
		Responses: openapi3.Responses{
			MapOfResponseOrRefValues: make(map[string]openapi3.ResponseOrRef, len(op.responses)),
		},
	}

	if op.pathID {
		def.Parameters = append(def.Parameters, openapi3.ParameterOrRef{
			Parameter: &openapi3.Parameter{
				Name:     "id",
				In:       openapi3.ParameterInPath,
				Required: model.Ptr(true),
				Schema: &openapi3.SchemaOrRef{
					Schema: &openapi3.Schema{
						Type:   model.Ptr(openapi3.SchemaTypeInteger),
						Format: model.Ptr("int32"),
					},
				},
			},
		})
	}

	if op.request != nil {
		schema, err := schemaOf(op.request)
		if err != nil {
			return def, err
		}
		def.RequestBody = &openapi3.RequestBodyOrRef{
			RequestBody: &openapi3.RequestBody{
				Required: model.Ptr(true),
				Content: map[string]openapi3.MediaType{
					"application/json": {Schema: schema},
				},
			},
		}
	}

	for status, resp := range op.responses {
		r := &openapi3.Response{Description: resp.description}
		if resp.body != nil {
			schema, err := schemaOf(resp.body)
			if err != nil {
				return def, err
			}
			r.Content = map[string]openapi3.MediaType{
				"application/json": {Schema: schema},
			}
		}
		def.Responses.MapOfResponseOrRefValues[strconv.Itoa(status)] = openapi3.ResponseOrRef{Response: r}
	}

	if op.secured {
		def.WithSecurity(map[string][]string{BearerSchemeName: {}})
	}

	return def, nil
}

// schemaOf reflects the JSON schema of v.
func schemaOf(v any) (*openapi3.SchemaOrRef, error) {
	var reflector jsonschema.Reflector

	js, err := reflector.Reflect(v, jsonschema.InlineRefs)
	if err != nil {
		return nil, fmt.Errorf("reflecting %T: %w", v, err)
	}

	var schemaOrRef openapi3.SchemaOrRef
	schemaOrRef.FromJSONSchema(js.ToSchemaOrBool())

	return &schemaOrRef, nil
}

// Handler serves spec as JSON. The document is encoded once.
func Handler(spec *openapi3.Spec, logger *zap.Logger) (http.Handler, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("encoding openapi document: %w", err)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(body); err != nil {
			logger.Debug("failed to write openapi document", zap.Error(err))
		}
	}), nil
}
