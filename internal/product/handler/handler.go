// Package handler provides HTTP handlers for product-related operations.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/abgdnv/product-catalog/internal/platform/contextkeys"
	"github.com/abgdnv/product-catalog/internal/platform/web"
	"github.com/abgdnv/product-catalog/internal/product/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes limits the size of a product payload.
const maxBodyBytes = 1 << 20

const readinessTimeout = time.Second

// ProductAPI defines HTTP handlers for product-related endpoints.
type ProductAPI interface {
	AddProduct(w http.ResponseWriter, r *http.Request)
	GetAllProducts(w http.ResponseWriter, r *http.Request)
	GetProductByID(w http.ResponseWriter, r *http.Request)

	HealthCheck(w http.ResponseWriter, r *http.Request)
	Readiness(w http.ResponseWriter, r *http.Request)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type api struct {
	service service.ProductService
	store   Pinger
	logger  *zap.Logger
}

// NewAPI creates a new instance of ProductAPI with the provided service.
// store is used only by the readiness probe.
func NewAPI(service service.ProductService, store Pinger, logger *zap.Logger) ProductAPI {
	return &api{
		service: service,
		store:   store,
		logger:  logger.With(zap.String("component", "api")),
	}
}

// AddProduct stores the product from the request body and returns it with its ID.
func (a *api) AddProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(r, a)
	var productDto service.ProductDto
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&productDto); err != nil {
		mLogger.Warn("Error decoding request body", zap.Error(err))
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	mLogger.Debug("Received request to add product", zap.String("ID", productDto.ID), zap.String("Name", productDto.Name))

	created, err := a.service.AddProduct(r.Context(), productDto)
	if err != nil {
		mLogger.Error("Error adding product", zap.String("ID", productDto.ID), zap.Error(err))
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to add product")
		return
	}
	mLogger.Info("Product added successfully", zap.String("ID", created.ID), zap.String("Name", created.Name))
	web.RespondJSON(w, mLogger, http.StatusOK, created)
}

// GetAllProducts returns every product in the catalog.
func (a *api) GetAllProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(r, a)
	list, err := a.service.GetAllProducts(r.Context())
	if err != nil {
		mLogger.Error("Error retrieving product list", zap.Error(err))
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	if list == nil {
		list = []service.ProductDto{}
	}
	mLogger.Debug("Successfully retrieved product list", zap.Int("count", len(list)))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// GetProductByID returns the product or a JSON null when no product has that ID.
func (a *api) GetProductByID(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(r, a)
	id := chi.URLParam(r, "id")

	found, ok, err := a.service.GetProductByID(r.Context(), id)
	if err != nil {
		mLogger.Error("Error retrieving product", zap.String("ID", id), zap.Error(err))
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to retrieve product with ID "+id)
		return
	}
	if !ok {
		mLogger.Debug("Product not found", zap.String("ID", id))
		web.RespondNull(w, http.StatusOK)
		return
	}
	mLogger.Debug("Successfully retrieved product", zap.String("ID", found.ID), zap.String("Name", found.Name))
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// HealthCheck is a simple health check endpoint.
func (a *api) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Readiness reports 200 only while the store answers a ping.
func (a *api) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	mLogger := loggerWithReqID(r, a)
	if err := a.store.Ping(ctx); err != nil {
		mLogger.Warn("Readiness check failed", zap.Error(err))
		web.RespondError(w, mLogger, http.StatusServiceUnavailable, "not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// loggerWithReqID creates a logger with the request ID from the context.
func loggerWithReqID(r *http.Request, a *api) *zap.Logger {
	reqID, found := contextkeys.GetRequestID(r.Context())
	if !found {
		reqID = "unknown"
	}
	return a.logger.With(zap.String("request_id", reqID))
}
