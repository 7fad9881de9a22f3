package handler

import (
	appmw "github.com/boxline/boxline-backend/internal/middleware"
	"github.com/boxline/boxline-backend/internal/policy"
	"github.com/labstack/echo/v4"
)

func principalFrom(c echo.Context) *policy.Principal {
	p, _ := c.Get(appmw.PrincipalContextKey).(*policy.Principal)
	return p
}
