package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core/event"
)

func registerEventAPI(g *echo.Group, deps *Deps) {
	api := eventApi{svc: deps.Events}

	eg := g.Group("/events")
	eg.GET("", api.query)
	eg.GET("/:id", api.retrieve)
}

type eventApi struct {
	svc *event.Service
}

func (api *eventApi) query(ctx echo.Context) error {
	filter := &event.QueryFilter{ClubID: ctx.QueryParam("club_id")}
	if b := queryBool(ctx, "upcoming"); b != nil {
		filter.Upcoming = *b
	}
	if b := queryBool(ctx, "institution"); b != nil {
		filter.Institution = *b
	}
	return listEvents(ctx, api.svc, filter)
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	e, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting event")
	}
	return ctx.JSON(http.StatusOK, e)
}

func listEvents(ctx echo.Context, svc *event.Service, filter *event.QueryFilter) error {
	events, err := svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing events")
	}
	if events == nil {
		events = []event.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

// eventAdminApi manages the events of a club, or the institution-wide events for mentors.
type eventAdminApi struct {
	svc           *event.Service
	validate      *validator.Validate
	maxUploadSize int64
	// owner returns the ID of the club managing the events; empty for mentors.
	owner func(ctx echo.Context) string
}

func registerEventAdminAPI(
	g *echo.Group,
	owner func(ctx echo.Context) string,
	validate *validator.Validate,
	maxUploadSize int64,
	deps *Deps,
) {
	api := eventAdminApi{
		svc:           deps.Events,
		validate:      validate,
		maxUploadSize: maxUploadSize,
		owner:         owner,
	}

	eg := g.Group("/events")
	eg.GET("", api.query)
	eg.POST("", api.create)

	dg := eg.Group("/:id", api.eventMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/images", api.uploadImage)
	dg.DELETE("/images/:imageId", api.destroyImage)
}

// eventMiddleware loads the event of the request if it is managed by the context account.
func (api *eventAdminApi) eventMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		e, err := api.svc.GetOwned(ctx.Request().Context(), api.owner(ctx), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "getting event")
		}
		ctx.Set("object", e)
		return next(ctx)
	}
}

func contextEvent(ctx echo.Context) event.Event {
	e, _ := ctx.Get("object").(event.Event)
	return e
}

func (api *eventAdminApi) query(ctx echo.Context) error {
	filter := &event.QueryFilter{ClubID: api.owner(ctx)}
	filter.Institution = filter.ClubID == ""
	if b := queryBool(ctx, "upcoming"); b != nil {
		filter.Upcoming = *b
	}
	return listEvents(ctx, api.svc, filter)
}

func (api *eventAdminApi) create(ctx echo.Context) error {
	var data event.EventData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EventData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, err := api.svc.Create(ctx.Request().Context(), api.owner(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *eventAdminApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, contextEvent(ctx))
}

func (api *eventAdminApi) update(ctx echo.Context) error {
	var data event.EventData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EventData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, err := api.svc.Update(ctx.Request().Context(), contextEvent(ctx), data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *eventAdminApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), contextEvent(ctx)); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *eventAdminApi) uploadImage(ctx echo.Context) error {
	ct, r, err := formFile(ctx, "image", api.maxUploadSize)
	if err != nil {
		return err
	}
	up := event.UploadImage{Caption: ctx.FormValue("caption"), ContentType: ct}
	img, err := api.svc.AddImage(ctx.Request().Context(), contextEvent(ctx), up, r)
	if err != nil {
		return errors.Wrap(err, "adding event image")
	}
	return ctx.JSON(http.StatusCreated, img)
}

func (api *eventAdminApi) destroyImage(ctx echo.Context) error {
	if err := api.svc.DeleteImage(ctx.Request().Context(), contextEvent(ctx), ctx.Param("imageId")); err != nil {
		return errors.Wrap(err, "deleting event image")
	}
	return ctx.NoContent(http.StatusNoContent)
}
