package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"styleme/internal/model"
)

// ProductCatalog serves the storefront listing and detail views
type ProductCatalog interface {
	ListProducts(ctx context.Context, f *model.ProductFilters, sort model.SortKey, page int) *model.ProductListResponse
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	FilterOptions(ctx context.Context) (*model.FilterOptions, error)
}

// ProductHandler handles product listing HTTP requests
type ProductHandler struct {
	catalog ProductCatalog
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog ProductCatalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	sort := model.ParseSortKey(c.Query("sort"))
	c.JSON(http.StatusOK, h.catalog.ListProducts(c.Request.Context(), productFilters(c), sort, page))
}

// Get handles GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product ID"})
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to get product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// Filters handles GET /api/v1/filters
func (h *ProductHandler) Filters(c *gin.Context) {
	options, err := h.catalog.FilterOptions(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load filters"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "filters": options})
}

// productFilters reads the storefront filter parameters. Malformed numbers are
// ignored rather than rejected.
func productFilters(c *gin.Context) *model.ProductFilters {
	f := &model.ProductFilters{
		Search:    strings.TrimSpace(c.Query("search")),
		Brands:    queryList(c, "brand"),
		Sizes:     queryList(c, "size"),
		Colors:    queryList(c, "color"),
		Occasions: queryList(c, "occasion"),
		Gender:    strings.TrimSpace(c.Query("gender")),
		PriceMin:  queryFloat(c, "min_price"),
		PriceMax:  queryFloat(c, "max_price"),
	}
	for _, raw := range queryList(c, "category") {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			f.CategoryIDs = append(f.CategoryIDs, id)
		}
	}
	if d := queryFloat(c, "min_discount"); d != nil && *d > 0 {
		f.DiscountOnly = true
	}
	if v, err := strconv.ParseBool(c.DefaultQuery("in_stock", "false")); err == nil {
		f.InStockOnly = v
	}
	return f
}
