package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/boxline/boxline-backend/internal/model"
	"github.com/boxline/boxline-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type RateHandler struct {
	svc service.RateService
}

func NewRateHandler(svc service.RateService) *RateHandler {
	return &RateHandler{svc: svc}
}

type rateResponse struct {
	ID        uint64  `json:"id"`
	Base      string  `json:"base"`
	Quote     string  `json:"quote"`
	Rate      float64 `json:"rate"`
	CreatedAt string  `json:"createdAt"`
}

func toRateResponse(r *model.CurrencyRate) rateResponse {
	return rateResponse{
		ID:        r.ID,
		Base:      r.BaseCurrency,
		Quote:     r.QuoteCurrency,
		Rate:      r.Rate,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

func (h *RateHandler) Create(c echo.Context) error {
	var body struct {
		Base  string  `json:"base"`
		Quote string  `json:"quote"`
		Rate  float64 `json:"rate"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	row, err := h.svc.Create(c.Request().Context(), principalFrom(c), body.Base, body.Quote, body.Rate)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toRateResponse(row))
}

func (h *RateHandler) Latest(c echo.Context) error {
	row, err := h.svc.Latest(c.Request().Context(), principalFrom(c), c.QueryParam("base"), c.QueryParam("quote"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toRateResponse(row))
}

func (h *RateHandler) History(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	rows, err := h.svc.History(c.Request().Context(), principalFrom(c), c.QueryParam("base"), c.QueryParam("quote"), limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	out := make([]rateResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toRateResponse(&rows[i]))
	}
	return c.JSON(http.StatusOK, out)
}
