package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"go-storefront/apperrors"
	"go-storefront/middleware"
	"go-storefront/services"
)

// ProductController handles product-related requests
type ProductController struct {
	products *services.ProductService
	logger   *slog.Logger
}

// NewProductController creates a new ProductController
func NewProductController(products *services.ProductService, logger *slog.Logger) *ProductController {
	return &ProductController{products: products, logger: logger}
}

// CreateProduct adds a product authored by the caller unless an author is given.
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, pc.logger, apperrors.Unauthorized("No token provided!"))
		return
	}

	var input services.CreateProductInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, pc.logger, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.products.Create(ctx, claims.UserID, input)
	if err != nil {
		writeError(w, r, pc.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func floatParam(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.Validation("invalid " + name)
	}
	return &v, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.Validation("invalid " + name)
	}
	return v, nil
}

// GetProducts returns one page of the catalog.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	input := services.ListProductsInput{Category: r.URL.Query().Get("category")}
	var err error
	if input.MinPrice, err = floatParam(r, "minPrice"); err != nil {
		writeError(w, r, pc.logger, err)
		return
	}
	if input.MaxPrice, err = floatParam(r, "maxPrice"); err != nil {
		writeError(w, r, pc.logger, err)
		return
	}
	if input.Page, err = intParam(r, "page"); err != nil {
		writeError(w, r, pc.logger, err)
		return
	}
	if input.Limit, err = intParam(r, "limit"); err != nil {
		writeError(w, r, pc.logger, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	page, err := pc.products.List(ctx, input)
	if err != nil {
		writeError(w, r, pc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetProductByID returns a product with its reviews.
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	detail, err := pc.products.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, pc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// UpdateProduct changes the client-writable fields of a product.
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input services.UpdateProductInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, pc.logger, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.products.Update(ctx, mux.Vars(r)["id"], input)
	if err != nil {
		writeError(w, r, pc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "product updated successfully",
		"product": product,
	})
}

// DeleteProduct removes a product and its reviews.
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	if err := pc.products.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, pc.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "product deleted successfully")
}

// RelatedProducts returns products sharing name tokens or the category.
func (pc *ProductController) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	products, err := pc.products.Related(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, pc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}
