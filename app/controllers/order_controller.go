package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/motomart/app/services"
	"github.com/shashiranjanraj/motomart/pkg/bind"
	"github.com/shashiranjanraj/motomart/pkg/middleware"
	"github.com/shashiranjanraj/motomart/pkg/response"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

func (c *OrderController) Store(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromCtx(r.Context())

	var in services.OrderInput
	if _, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	order, err := c.service.Create(r.Context(), caller.ID, in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Created(w, order)
}

func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromCtx(r.Context())

	orders, err := c.service.List(r.Context(), caller.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, orders)
}

func (c *OrderController) Pay(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromCtx(r.Context())

	order, err := c.service.Pay(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, order)
}

func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromCtx(r.Context())

	if err := c.service.Cancel(r.Context(), caller.ID, chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	response.Message(w, "Order cancelled successfully")
}
