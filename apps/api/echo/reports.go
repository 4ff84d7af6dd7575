package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core/report"
)

type reportApi struct {
	svc      *report.Service
	validate *validator.Validate
}

// registerClubReportAPI registers the endpoints of club admins filing their reports.
func registerClubReportAPI(g *echo.Group, validate *validator.Validate, deps *Deps) {
	api := reportApi{svc: deps.Reports, validate: validate}

	rg := g.Group("/reports")
	rg.GET("", api.queryOwn)
	rg.POST("", api.create)
	rg.GET("/:id", api.retrieveOwn)
	rg.PUT("/:id", api.update)
	rg.DELETE("/:id", api.destroy)
}

// registerMentorReportAPI registers the endpoints of mentors reading the reports of all clubs.
func registerMentorReportAPI(g *echo.Group, deps *Deps) {
	api := reportApi{svc: deps.Reports}

	rg := g.Group("/reports")
	rg.GET("", api.query)
	rg.GET("/:id", api.retrieve)
}

func (api *reportApi) list(ctx echo.Context, filter *report.QueryFilter) error {
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	reports, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying reports")
	}
	if reports == nil {
		reports = []report.Report{}
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *reportApi) queryOwn(ctx echo.Context) error {
	return api.list(ctx, &report.QueryFilter{
		ClubID: getContextClub(ctx).ID,
		Kind:   report.Kind(ctx.QueryParam("kind")),
	})
}

func (api *reportApi) query(ctx echo.Context) error {
	return api.list(ctx, &report.QueryFilter{
		ClubID: ctx.QueryParam("club_id"),
		Kind:   report.Kind(ctx.QueryParam("kind")),
	})
}

func (api *reportApi) create(ctx echo.Context) error {
	var data report.NewReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReport")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), getContextClub(ctx).ID, data)
	if err != nil {
		return errors.Wrap(err, "creating report")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *reportApi) retrieveOwn(ctx echo.Context) error {
	r, err := api.svc.GetOwned(ctx.Request().Context(), getContextClub(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reportApi) retrieve(ctx echo.Context) error {
	r, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reportApi) update(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	r, err := api.svc.GetOwned(rctx, getContextClub(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting report")
	}

	var data report.UpdateReport
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateReport")
	}
	if err = data.Validate(r, api.validate); err != nil {
		return err
	}

	r, err = api.svc.Update(rctx, r, data)
	if err != nil {
		return errors.Wrap(err, "updating report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reportApi) destroy(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	r, err := api.svc.GetOwned(rctx, getContextClub(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting report")
	}
	if err = api.svc.Delete(rctx, r); err != nil {
		return errors.Wrap(err, "deleting report")
	}
	return ctx.NoContent(http.StatusNoContent)
}
