package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core/certificate"
)

type certificateApi struct {
	svc      *certificate.Service
	validate *validator.Validate
}

func registerClubCertificateAPI(g *echo.Group, validate *validator.Validate, deps *Deps) {
	api := certificateApi{svc: deps.Certificates, validate: validate}

	cg := g.Group("/certificates")
	cg.GET("", api.queryOwn)
	cg.POST("", api.create)
}

func registerMentorCertificateAPI(g *echo.Group, validate *validator.Validate, deps *Deps) {
	api := certificateApi{svc: deps.Certificates, validate: validate}

	cg := g.Group("/certificates")
	cg.GET("", api.query)
	cg.POST("/:id/approve", api.approve)
	cg.POST("/:id/reject", api.reject)
}

func certificateList(ctx echo.Context, reqs []certificate.Request, err error) error {
	if err != nil {
		return errors.Wrap(err, "querying certificate requests")
	}
	if reqs == nil {
		reqs = []certificate.Request{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *certificateApi) queryOwn(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)
	reqs, err := api.svc.ListForClub(ctx.Request().Context(), getContextClub(ctx).ID, ordering.Orderings)
	return certificateList(ctx, reqs, err)
}

func (api *certificateApi) query(ctx echo.Context) error {
	filter := &certificate.QueryFilter{
		ClubID: ctx.QueryParam("club_id"),
		Status: certificate.Status(ctx.QueryParam("status")),
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)
	reqs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	return certificateList(ctx, reqs, err)
}

func (api *certificateApi) create(ctx echo.Context) error {
	var data certificate.NewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), getContextClub(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating certificate request")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *certificateApi) approve(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	r, err := api.svc.Get(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting certificate request")
	}
	r, err = api.svc.Approve(rctx, getContextMentor(ctx), r)
	if err != nil {
		return errors.Wrap(err, "approving certificate request")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *certificateApi) reject(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	r, err := api.svc.Get(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting certificate request")
	}

	var data certificate.Rejection
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Rejection")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	r, err = api.svc.Reject(rctx, getContextMentor(ctx), r, data)
	if err != nil {
		return errors.Wrap(err, "rejecting certificate request")
	}
	return ctx.JSON(http.StatusOK, r)
}
