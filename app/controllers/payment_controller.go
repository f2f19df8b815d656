package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/motomart/app/services"
	"github.com/shashiranjanraj/motomart/pkg/bind"
	"github.com/shashiranjanraj/motomart/pkg/response"
	"github.com/shashiranjanraj/motomart/pkg/validate"
)

type PaymentController struct {
	service *services.PaymentService
}

func NewPaymentController(service *services.PaymentService) *PaymentController {
	return &PaymentController{service: service}
}

// CreateIntent opens a payment intent and hands the confirmation secret to
// the client. The secret rides at the top level of the body, next to
// success, which is what the web client expects.
func (c *PaymentController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var in services.IntentInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if validate.HasErrors(errs) {
		response.BadRequest(w, validate.First(errs))
		return
	}

	secret, err := c.service.CreateIntent(in)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Success      bool   `json:"success"`
		ClientSecret string `json:"clientSecret"`
	}{Success: true, ClientSecret: secret})
}
