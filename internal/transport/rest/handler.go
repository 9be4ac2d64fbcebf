// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	perrors "github.com/mzherdev/product-catalog/internal/errors"
	"github.com/mzherdev/product-catalog/internal/service"
	"github.com/mzherdev/product-catalog/pkg/web"
)

// Client-facing messages for the deliberate service errors. The handler is
// the only place where error kinds are translated to HTTP statuses.
const (
	msgProductNotFound   = "Product not found"
	msgPriceNegative     = "Price cannot be negative"
	msgStockNegative     = "Stock cannot be negative"
	msgInsufficientStock = "Insufficient stock"
)

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the product REST API with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/stock/low", h.LowStock)
		r.Get("/stats/category-count", h.CategoryCount)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
			r.Put("/stock", h.AdjustStock)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// List retrieves products, optionally filtered by exactly one of: category,
// name search, or price range. Filters are not combined; category wins over
// search, which wins over the price range.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	query := r.URL.Query()

	var list []service.ProductDto
	var err error
	switch {
	case query.Get("category") != "":
		list, err = h.service.FindByCategory(r.Context(), query.Get("category"))
	case query.Get("search") != "":
		list, err = h.service.SearchByName(r.Context(), query.Get("search"))
	case query.Get("minPrice") != "" && query.Get("maxPrice") != "":
		minPrice, ok := web.ParseDecimal(r, w, mLogger, "minPrice")
		if !ok {
			return
		}
		maxPrice, ok := web.ParseDecimal(r, w, mLogger, "maxPrice")
		if !ok {
			return
		}
		list, err = h.service.FindByPriceRange(r.Context(), minPrice, maxPrice)
	default:
		list, err = h.service.FindAll(r.Context())
	}
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, msgProductNotFound)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Name", found.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var draft service.ProductCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &draft) {
		return
	}

	created, err := h.service.Create(r.Context(), draft)
	if err != nil {
		if message, ok := validationMessage(err); ok {
			mLogger.WarnContext(r.Context(), "Product draft rejected", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, message)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Update replaces an existing product's details.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var draft service.ProductUpdateDto
	if !h.decodeAndValidate(w, r, mLogger, &draft) {
		return
	}

	if err := h.service.Update(r.Context(), id, draft); err != nil {
		switch {
		case errors.Is(err, perrors.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, msgProductNotFound)
		default:
			if message, ok := validationMessage(err); ok {
				mLogger.WarnContext(r.Context(), "Product draft rejected", "ID", id, "error", err)
				web.RespondError(w, mLogger, http.StatusBadRequest, message)
				return
			}
			mLogger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update product")
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", id)
	web.RespondMessage(w, mLogger, "Product updated successfully")
}

// AdjustStock changes the stock of a product by the quantity delta in the body.
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var adjustment service.StockAdjustDto
	if !h.decodeAndValidate(w, r, mLogger, &adjustment) {
		return
	}

	if err := h.service.AdjustStock(r.Context(), id, adjustment.Quantity); err != nil {
		switch {
		case errors.Is(err, perrors.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Product not found for stock adjustment", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, msgProductNotFound)
		case errors.Is(err, perrors.ErrInsufficientStock):
			mLogger.WarnContext(r.Context(), "Insufficient stock for adjustment", "ID", id, "quantity", adjustment.Quantity)
			web.RespondError(w, mLogger, http.StatusBadRequest, msgInsufficientStock)
		default:
			mLogger.ErrorContext(r.Context(), "Error adjusting stock", "ID", id, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update stock")
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Stock updated successfully", "ID", id, "quantity", adjustment.Quantity)
	web.RespondMessage(w, mLogger, "Stock updated successfully")
}

// DeleteByID removes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, msgProductNotFound)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondMessage(w, mLogger, "Product deleted successfully")
}

// LowStock retrieves products whose stock is below the threshold query parameter (default 10).
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	threshold, ok := web.ParseOptionalGte(r, w, mLogger, "threshold", service.DefaultLowStockThreshold, 0)
	if !ok {
		return
	}

	list, err := h.service.FindLowStock(r.Context(), threshold)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving low stock products", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to retrieve low stock products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved low stock products", "count", len(list), "threshold", threshold)
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// CategoryCount retrieves the number of products per category.
func (h *Handler) CategoryCount(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	counts, err := h.service.CountByCategory(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving category statistics", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to retrieve category statistics")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, counts)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeAndValidate decodes the request body into dst and runs struct validation.
// On failure it writes the error response and returns false.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			// Fold field-specific failures into the single error key every
			// non-2xx response carries.
			var b strings.Builder
			for i, fieldErr := range validationErrors {
				if i > 0 {
					b.WriteString("; ")
				}
				// fieldErr.Tag() returns "required", "max", etc.
				b.WriteString(fieldErr.Field() + ": failed on rule: " + fieldErr.Tag())
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", b.String())
			web.RespondError(w, mLogger, http.StatusBadRequest, b.String())
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// validationMessage maps the service's draft validation errors to client text.
func validationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, perrors.ErrPriceNegative):
		return msgPriceNegative, true
	case errors.Is(err, perrors.ErrStockNegative):
		return msgStockNegative, true
	default:
		return "", false
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, _ := web.GetRequestID(r.Context())
	return h.logger.With("request_id", reqID)
}
