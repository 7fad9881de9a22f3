package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/boxline/boxline-backend/internal/model"
	"github.com/boxline/boxline-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type BoxHandler struct {
	svc service.BoxService
}

func NewBoxHandler(svc service.BoxService) *BoxHandler {
	return &BoxHandler{svc: svc}
}

type BoxResponse struct {
	ID                uint64  `json:"id"`
	Label             string  `json:"label"`
	OwnerUserUID      string  `json:"ownerUserUid"`
	CreatedByUserUID  string  `json:"createdByUserUid"`
	Status            string  `json:"status"`
	EstimatedWeightLb float64 `json:"estimatedWeightLb"`
	ShippedAt         *string `json:"shippedAt,omitempty"`
	DeliveredAt       *string `json:"deliveredAt,omitempty"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

func toBoxResponse(b *model.Box) BoxResponse {
	var shippedAt, deliveredAt *string
	if b.ShippedAt != nil {
		val := b.ShippedAt.Format(time.RFC3339)
		shippedAt = &val
	}
	if b.DeliveredAt != nil {
		val := b.DeliveredAt.Format(time.RFC3339)
		deliveredAt = &val
	}
	return BoxResponse{
		ID:                b.ID,
		Label:             b.Label,
		OwnerUserUID:      b.OwnerUserUID,
		CreatedByUserUID:  b.CreatedByUserUID,
		Status:            string(b.Status),
		EstimatedWeightLb: b.EstimatedWeightLb,
		ShippedAt:         shippedAt,
		DeliveredAt:       deliveredAt,
		CreatedAt:         b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         b.UpdatedAt.Format(time.RFC3339),
	}
}

func parseID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

func (h *BoxHandler) Create(c echo.Context) error {
	var body struct {
		Label     string   `json:"label"`
		PickupIDs []uint64 `json:"pickupIds"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	box, err := h.svc.Create(c.Request().Context(), principalFrom(c), service.CreateBoxInput{
		Label:     body.Label,
		PickupIDs: body.PickupIDs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toBoxResponse(box))
}

func (h *BoxHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid box id"))
	}
	var body struct {
		Label  *string `json:"label"`
		Status *string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	patch := service.UpdateBoxPatch{Label: body.Label}
	if body.Status != nil {
		st := model.BoxStatus(*body.Status)
		patch.Status = &st
	}
	box, err := h.svc.Update(c.Request().Context(), principalFrom(c), id, patch)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toBoxResponse(box))
}

func (h *BoxHandler) AddPickups(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid box id"))
	}
	var body struct {
		PickupIDs []uint64 `json:"pickupIds"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	box, err := h.svc.AddPickups(c.Request().Context(), principalFrom(c), id, body.PickupIDs)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toBoxResponse(box))
}

func (h *BoxHandler) RemovePickup(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid box id"))
	}
	pickupID, err := parseID(c, "pickupId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid pickup id"))
	}
	box, err := h.svc.RemovePickup(c.Request().Context(), principalFrom(c), id, pickupID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toBoxResponse(box))
}

func (h *BoxHandler) ManageItems(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid box id"))
	}
	var body struct {
		Add    []uint64 `json:"add"`
		Remove []uint64 `json:"remove"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	box, err := h.svc.ManageItems(c.Request().Context(), principalFrom(c), id, body.Add, body.Remove)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toBoxResponse(box))
}

func (h *BoxHandler) Transfer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid box id"))
	}
	var body struct {
		NewOwnerEmail string `json:"newOwnerEmail"`
	}
	if err := c.Bind(&body); err != nil || body.NewOwnerEmail == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "newOwnerEmail is required"))
	}
	box, err := h.svc.Transfer(c.Request().Context(), principalFrom(c), id, body.NewOwnerEmail)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toBoxResponse(box))
}

type itemResponse struct {
	ID                uint64  `json:"id"`
	PickupID          uint64  `json:"pickupId"`
	BoxID             *uint64 `json:"boxId,omitempty"`
	Description       string  `json:"description"`
	EstimatedWeightLb float64 `json:"estimatedWeightLb"`
	Status            string  `json:"status"`
}

func toItemResponses(items []model.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, itemResponse{
			ID:                it.ID,
			PickupID:          it.PickupID,
			BoxID:             it.BoxID,
			Description:       it.Description,
			EstimatedWeightLb: it.EstimatedWeightLb,
			Status:            string(it.Status),
		})
	}
	return out
}

type boxDetailResponse struct {
	BoxResponse
	IsTransferred bool                 `json:"isTransferred"`
	Items         []itemResponse       `json:"items"`
	Pickups       []pickupGroupPayload `json:"pickups,omitempty"`
}

type pickupGroupPayload struct {
	PickupID   uint64         `json:"pickupId"`
	ClientName string         `json:"clientName"`
	Items      []itemResponse `json:"items"`
}

func (h *BoxHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid box id"))
	}
	detail, err := h.svc.GetByID(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	resp := boxDetailResponse{
		BoxResponse:   toBoxResponse(&detail.Box),
		IsTransferred: detail.IsTransferred,
		Items:         toItemResponses(detail.Items),
	}
	resp.EstimatedWeightLb = detail.EstimatedWeightLb
	for _, g := range detail.Pickups {
		resp.Pickups = append(resp.Pickups, pickupGroupPayload{
			PickupID:   g.Pickup.ID,
			ClientName: g.Pickup.ClientName,
			Items:      toItemResponses(g.Items),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type boxSummaryResponse struct {
	BoxResponse
	Type           string `json:"type"`
	IsCurrentOwner bool   `json:"isCurrentOwner"`
}

func (h *BoxHandler) List(c echo.Context) error {
	filter := service.BoxListFilter(c.QueryParam("filter"))
	if filter == "" {
		filter = service.BoxFilterAll
	}
	rows, err := h.svc.List(c.Request().Context(), principalFrom(c), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	out := make([]boxSummaryResponse, 0, len(rows))
	for i := range rows {
		out = append(out, boxSummaryResponse{
			BoxResponse:    toBoxResponse(&rows[i].Box),
			Type:           rows[i].Type,
			IsCurrentOwner: rows[i].IsCurrentOwner,
		})
	}
	return c.JSON(http.StatusOK, out)
}
