package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/motomart/app/invoice"
	"github.com/shashiranjanraj/motomart/app/services"
	"github.com/shashiranjanraj/motomart/pkg/logger"
	"github.com/shashiranjanraj/motomart/pkg/metrics"
	"github.com/shashiranjanraj/motomart/pkg/middleware"
)

type InvoiceController struct {
	service *services.OrderService
}

func NewInvoiceController(service *services.OrderService) *InvoiceController {
	return &InvoiceController{service: service}
}

// Show streams the invoice PDF for one of the caller's orders. Headers go
// out before rendering, so a mid-stream render failure can only truncate
// the body and is logged rather than reported.
func (c *InvoiceController) Show(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromCtx(r.Context())

	data, err := c.service.InvoiceData(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s", invoice.Filename(data.OrderID)))

	if err := invoice.Render(w, data); err != nil {
		logger.WithCtx(r.Context()).Error("invoice stream failed",
			"order", data.OrderID, "error", err)
		return
	}
	metrics.InvoicesRendered.WithLabelValues("download").Inc()
}
