package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/motomart/app/services"
	"github.com/shashiranjanraj/motomart/pkg/bind"
	"github.com/shashiranjanraj/motomart/pkg/middleware"
	"github.com/shashiranjanraj/motomart/pkg/response"
	"github.com/shashiranjanraj/motomart/pkg/validate"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if validate.HasErrors(errs) {
		response.BadRequest(w, validate.First(errs))
		return
	}

	payload, err := c.service.Signup(r.Context(), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Created(w, payload)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if validate.HasErrors(errs) {
		response.BadRequest(w, validate.First(errs))
		return
	}

	payload, err := c.service.Login(r.Context(), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, payload)
}

func (c *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromCtx(r.Context())

	var in services.ProfileInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if validate.HasErrors(errs) {
		response.BadRequest(w, validate.First(errs))
		return
	}

	payload, err := c.service.UpdateProfile(r.Context(), caller.ID, in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, payload)
}

func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromCtx(r.Context())

	var in services.PasswordInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if validate.HasErrors(errs) {
		response.BadRequest(w, validate.First(errs))
		return
	}

	if err := c.service.ChangePassword(r.Context(), caller.ID, in); err != nil {
		respondErr(w, r, err)
		return
	}
	response.Message(w, "Password updated")
}

func (c *AuthController) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromCtx(r.Context())

	if err := c.service.DeleteAccount(r.Context(), caller.ID); err != nil {
		respondErr(w, r, err)
		return
	}
	response.Message(w, "Account deleted")
}
