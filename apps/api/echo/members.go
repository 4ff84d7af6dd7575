package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core/member"
)

type memberApi struct {
	svc      *member.Service
	validate *validator.Validate
}

func registerMemberAPI(g *echo.Group, validate *validator.Validate, deps *Deps) {
	api := memberApi{svc: deps.Members, validate: validate}

	mg := g.Group("/members")
	mg.GET("", api.query)
	mg.POST("", api.create)
	mg.PUT("/:id", api.update)
	mg.DELETE("/:id", api.destroy)
}

func (api *memberApi) query(ctx echo.Context) error {
	filter := &member.QueryFilter{
		Search:   ctx.QueryParam("search"),
		Position: ctx.QueryParam("position"),
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	members, err := api.svc.Query(ctx.Request().Context(), getContextClub(ctx).ID, filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	if members == nil {
		members = []member.Member{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *memberApi) create(ctx echo.Context) error {
	clubID := getContextClub(ctx).ID

	var data member.NewMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMember")
	}
	rctx := ctx.Request().Context()
	if err := data.Validate(rctx, clubID, api.validate, api.svc); err != nil {
		return err
	}

	m, err := api.svc.Add(rctx, clubID, data)
	if err != nil {
		return errors.Wrap(err, "adding member")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *memberApi) update(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	m, err := api.svc.Get(rctx, getContextClub(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting member")
	}

	var data member.UpdateMember
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMember")
	}
	if err = data.Validate(m, api.validate); err != nil {
		return err
	}

	m, err = api.svc.Update(rctx, m, data)
	if err != nil {
		return errors.Wrap(err, "updating member")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *memberApi) destroy(ctx echo.Context) error {
	if err := api.svc.Remove(ctx.Request().Context(), getContextClub(ctx).ID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing member")
	}
	return ctx.NoContent(http.StatusNoContent)
}
