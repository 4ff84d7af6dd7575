package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core/announcement"
)

type announcementApi struct {
	svc      *announcement.Service
	validate *validator.Validate
}

func registerAnnouncementAPI(g *echo.Group, validate *validator.Validate, deps *Deps) {
	api := announcementApi{svc: deps.Announcements, validate: validate}

	ag := g.Group("/announcements")
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.DELETE("/:id", api.destroy)
	ag.POST("/:id/notify", api.notify)
}

type (
	AnnouncementResponse struct {
		announcement.Announcement
		Recipients int `json:"recipients"`
	}

	NotifyResponse struct {
		Recipients int `json:"recipients"`
	}
)

func (api *announcementApi) query(ctx echo.Context) error {
	anns, err := api.svc.List(ctx.Request().Context(), getContextClub(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "listing announcements")
	}
	if anns == nil {
		anns = []announcement.Announcement{}
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *announcementApi) create(ctx echo.Context) error {
	var data announcement.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, n, err := api.svc.Create(ctx.Request().Context(), getContextClub(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, AnnouncementResponse{Announcement: a, Recipients: n})
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), getContextClub(ctx).ID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// notify re-sends an announcement to the club members.
func (api *announcementApi) notify(ctx echo.Context) error {
	c := getContextClub(ctx)
	rctx := ctx.Request().Context()
	a, err := api.svc.Get(rctx, c.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting announcement")
	}
	n, err := api.svc.Notify(rctx, c, a)
	if err != nil {
		return errors.Wrap(err, "notifying members")
	}
	return ctx.JSON(http.StatusOK, NotifyResponse{Recipients: n})
}
