package handler

import (
	"net/http"

	"github.com/boxline/boxline-backend/internal/model"
	"github.com/boxline/boxline-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type PickupHandler struct {
	svc service.PickupService
}

func NewPickupHandler(svc service.PickupService) *PickupHandler {
	return &PickupHandler{svc: svc}
}

type pickupResponse struct {
	ID         uint64         `json:"id"`
	ClientName string         `json:"clientName"`
	Address    string         `json:"address"`
	Items      []itemResponse `json:"items,omitempty"`
}

func toPickupResponse(p *model.Pickup, items []model.Item) pickupResponse {
	return pickupResponse{
		ID:         p.ID,
		ClientName: p.ClientName,
		Address:    p.Address,
		Items:      toItemResponses(items),
	}
}

func (h *PickupHandler) Create(c echo.Context) error {
	var body struct {
		ClientName string `json:"clientName"`
		Address    string `json:"address"`
		Items      []struct {
			Description       string  `json:"description"`
			EstimatedWeightLb float64 `json:"estimatedWeightLb"`
		} `json:"items"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	in := service.CreatePickupInput{
		ClientName: body.ClientName,
		Address:    body.Address,
	}
	for _, it := range body.Items {
		in.Items = append(in.Items, service.PickupItemInput{
			Description:       it.Description,
			EstimatedWeightLb: it.EstimatedWeightLb,
		})
	}
	detail, err := h.svc.Create(c.Request().Context(), principalFrom(c), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toPickupResponse(&detail.Pickup, detail.Items))
}

func (h *PickupHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid pickup id"))
	}
	detail, err := h.svc.GetByID(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toPickupResponse(&detail.Pickup, detail.Items))
}

func (h *PickupHandler) List(c echo.Context) error {
	rows, err := h.svc.List(c.Request().Context(), principalFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	out := make([]pickupResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toPickupResponse(&rows[i], nil))
	}
	return c.JSON(http.StatusOK, out)
}
