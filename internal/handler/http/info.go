package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/techstore/internal/service"
	"github.com/utafrali/techstore/pkg/httputil"
)

// StorefrontHandler serves checkout and the informational pages.
type StorefrontHandler struct {
	service *service.StorefrontService
	logger  *slog.Logger
}

// NewStorefrontHandler creates a new storefront HTTP handler.
func NewStorefrontHandler(svc *service.StorefrontService, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{service: svc, logger: logger}
}

// Checkout handles GET /api/v1/checkout
func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.CheckoutSummary(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, summary)
}

// Delivery handles GET /api/v1/info/delivery
func (h *StorefrontHandler) Delivery(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.service.DeliveryInfo())
}

// Contacts handles GET /api/v1/info/contacts
func (h *StorefrontHandler) Contacts(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.service.Contacts())
}
