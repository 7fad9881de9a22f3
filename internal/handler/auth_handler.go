package handler

import (
	"errors"
	"net/http"

	"github.com/boxline/boxline-backend/internal/model"
	"github.com/boxline/boxline-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type userResponse struct {
	UID                string `json:"uid"`
	Email              string `json:"email"`
	DisplayName        string `json:"displayName"`
	Role               string `json:"role"`
	VerificationStatus string `json:"verificationStatus"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		UID:                u.UID,
		Email:              u.Email,
		DisplayName:        u.DisplayName,
		Role:               string(u.Role),
		VerificationStatus: string(u.VerificationStatus),
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var body struct {
		Email         string   `json:"email"`
		Password      string   `json:"password"`
		DisplayName   string   `json:"displayName"`
		Role          string   `json:"role"`
		VoucherEmails []string `json:"voucherEmails"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	user, err := h.svc.Register(c.Request().Context(), service.RegisterInput{
		Email:         body.Email,
		Password:      body.Password,
		DisplayName:   body.DisplayName,
		Role:          model.Role(body.Role),
		VoucherEmails: body.VoucherEmails,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	token, user, err := h.svc.Login(c.Request().Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "invalid credentials"))
		}
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  toUserResponse(user),
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	p := principalFrom(c)
	if p == nil {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "authentication required"))
	}
	return c.JSON(http.StatusOK, userResponse{
		UID:                p.UID,
		Email:              p.Email,
		Role:               string(p.Role),
		VerificationStatus: string(p.Verification),
	})
}
