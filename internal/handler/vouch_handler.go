package handler

import (
	"net/http"
	"time"

	"github.com/boxline/boxline-backend/internal/model"
	"github.com/boxline/boxline-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type VouchHandler struct {
	svc service.VouchService
}

func NewVouchHandler(svc service.VouchService) *VouchHandler {
	return &VouchHandler{svc: svc}
}

type vouchResponse struct {
	ID               uint64  `json:"id"`
	RequesterUserUID string  `json:"requesterUserUid"`
	VoucherEmail     string  `json:"voucherEmail"`
	VoucherUserUID   *string `json:"voucherUserUid,omitempty"`
	Status           string  `json:"status"`
	DecidedAt        *string `json:"decidedAt,omitempty"`
	CreatedAt        string  `json:"createdAt"`
}

func toVouchResponse(v *model.VouchRequest) vouchResponse {
	var decidedAt *string
	if v.DecidedAt != nil {
		val := v.DecidedAt.Format(time.RFC3339)
		decidedAt = &val
	}
	return vouchResponse{
		ID:               v.ID,
		RequesterUserUID: v.RequesterUserUID,
		VoucherEmail:     v.VoucherEmail,
		VoucherUserUID:   v.VoucherUserUID,
		Status:           string(v.Status),
		DecidedAt:        decidedAt,
		CreatedAt:        v.CreatedAt.Format(time.RFC3339),
	}
}

func toVouchResponses(list []model.VouchRequest) []vouchResponse {
	out := make([]vouchResponse, 0, len(list))
	for i := range list {
		out = append(out, toVouchResponse(&list[i]))
	}
	return out
}

func (h *VouchHandler) Approve(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid vouch id"))
	}
	v, err := h.svc.Approve(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toVouchResponse(v))
}

func (h *VouchHandler) Decline(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid vouch id"))
	}
	v, err := h.svc.Decline(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toVouchResponse(v))
}

func (h *VouchHandler) ListPending(c echo.Context) error {
	list, err := h.svc.PendingRequests(c.Request().Context(), principalFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toVouchResponses(list))
}

func (h *VouchHandler) History(c echo.Context) error {
	list, err := h.svc.History(c.Request().Context(), principalFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toVouchResponses(list))
}
