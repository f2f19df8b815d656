package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/motomart/app/services"
	"github.com/shashiranjanraj/motomart/pkg/bind"
	"github.com/shashiranjanraj/motomart/pkg/response"
)

type ProductController struct {
	service *services.ProductService
}

func NewProductController(service *services.ProductService) *ProductController {
	return &ProductController{service: service}
}

func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	products, err := c.service.List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, products)
}

func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if _, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	product, err := c.service.Create(r.Context(), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Created(w, product)
}

// Update decodes into a map so only the keys present in the body get
// merged; absent keys keep their stored values.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	product, err := c.service.Update(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, product)
}

func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	response.Message(w, "Product deleted successfully")
}
