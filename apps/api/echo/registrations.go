package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core/registration"
)

type registrationApi struct {
	svc      *registration.Service
	validate *validator.Validate
}

func registerRegistrationAPI(g *echo.Group, validate *validator.Validate, deps *Deps) {
	api := registrationApi{svc: deps.Registrations, validate: validate}

	rg := g.Group("/registrations")
	rg.GET("", api.query)
	rg.POST("/:id/approve", api.approve)
	rg.POST("/:id/reject", api.reject)
}

// registrationFilter binds the registrations filter of the club admin listings & exports.
func registrationFilter(ctx echo.Context) *registration.QueryFilter {
	filter := &registration.QueryFilter{
		Status: registration.Status(ctx.QueryParam("status")),
		Search: ctx.QueryParam("search"),
	}
	filter.Clean()
	return filter
}

func (api *registrationApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	regs, err := api.svc.ListForClub(ctx.Request().Context(), getContextClub(ctx).ID, registrationFilter(ctx), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "listing registrations")
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *registrationApi) approve(ctx echo.Context) error {
	c := getContextClub(ctx)
	rctx := ctx.Request().Context()
	reg, err := api.svc.Get(rctx, c.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting registration")
	}

	reg, err = api.svc.Approve(rctx, c, reg)
	if err != nil {
		return errors.Wrap(err, "approving registration")
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *registrationApi) reject(ctx echo.Context) error {
	c := getContextClub(ctx)
	rctx := ctx.Request().Context()
	reg, err := api.svc.Get(rctx, c.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting registration")
	}

	var data registration.Rejection
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Rejection")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	reg, err = api.svc.Reject(rctx, c, reg, data)
	if err != nil {
		return errors.Wrap(err, "rejecting registration")
	}
	return ctx.JSON(http.StatusOK, reg)
}
