package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/announcement"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
	"github.com/Mithesh23/kmit-club-sub001/core/member"
)

type clubApi struct {
	accountApi
	svc           *club.Service
	members       *member.Service
	announcements *announcement.Service
	maxUploadSize int64
}

func registerClubAPI(
	g *echo.Group,
	auth *authenticator,
	throttle echo.MiddlewareFunc,
	validate *validator.Validate,
	maxUploadSize int64,
	deps *Deps,
) {
	api := clubApi{
		accountApi: accountApi{
			role:     account.RoleClub,
			auth:     auth,
			resetter: deps.Clubs,
			validate: validate,
		},
		svc:           deps.Clubs,
		members:       deps.Members,
		announcements: deps.Announcements,
		maxUploadSize: maxUploadSize,
	}

	// public endpoints
	pg := g.Group("/clubs")
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve)
	pg.GET("/:id/announcements", api.queryAnnouncements)
	pg.POST("/login", api.login, throttle)
	pg.POST("/password-reset", api.resetPassword, throttle)
	pg.POST("/password-reset-confirm", api.confirmPasswordReset, throttle)

	// club admin endpoints
	ag := g.Group("/club", auth.require(account.RoleClub)...)
	ag.GET("/me", api.me)
	ag.PUT("/me", api.update)
	ag.POST("/me/password", api.changePassword)
	ag.POST("/me/logo", api.uploadLogo)
	ag.PUT("/me/registration", api.setRegistrationOpen)
	ag.POST("/token-refresh", api.refreshToken)
	ag.POST("/logout", api.logout)

	owner := func(ctx echo.Context) string { return getContextClub(ctx).ID }
	registerMemberAPI(ag, validate, deps)
	registerRegistrationAPI(ag, validate, deps)
	registerAnnouncementAPI(ag, validate, deps)
	registerEventAdminAPI(ag, owner, validate, maxUploadSize, deps)
	registerClubReportAPI(ag, validate, deps)
	registerClubCertificateAPI(ag, validate, deps)
	registerExportAPI(ag, deps)
}

// ClubDetail is the public profile of a club.
type ClubDetail struct {
	club.Club
	MembersCount int `json:"members_count"`
}

func (api *clubApi) query(ctx echo.Context) error {
	filter := &club.QueryFilter{
		Search:           ctx.QueryParam("search"),
		RegistrationOpen: queryBool(ctx, "registration_open"),
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	clubs, err := api.svc.QueryActive(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying clubs")
	}
	if clubs == nil {
		clubs = []club.Club{}
	}
	return ctx.JSON(http.StatusOK, clubs)
}

func (api *clubApi) retrieve(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	c, err := api.svc.GetActive(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting club")
	}
	count, err := api.members.Count(rctx, c.ID)
	if err != nil {
		return errors.Wrap(err, "counting members")
	}
	return ctx.JSON(http.StatusOK, ClubDetail{Club: c, MembersCount: count})
}

func (api *clubApi) queryAnnouncements(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	c, err := api.svc.GetActive(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting club")
	}
	anns, err := api.announcements.List(rctx, c.ID)
	if err != nil {
		return errors.Wrap(err, "listing announcements")
	}
	if anns == nil {
		anns = []announcement.Announcement{}
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *clubApi) login(ctx echo.Context) error {
	var data ClubLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClubLoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.auth.login(ctx, account.RoleClub, c.ID)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Account: c})
}

func (api *clubApi) me(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, getContextClub(ctx))
}

func (api *clubApi) update(ctx echo.Context) error {
	c := getContextClub(ctx)

	var data club.UpdateClub
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClub")
	}
	rctx := ctx.Request().Context()
	if err := data.Validate(rctx, c, api.validate, api.svc); err != nil {
		return err
	}

	c, err := api.svc.UpdateProfile(rctx, c, data)
	if err != nil {
		return errors.Wrap(err, "updating club")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *clubApi) changePassword(ctx echo.Context) error {
	data, err := api.bindChangePassword(ctx)
	if err != nil {
		return err
	}
	err = api.svc.ChangePassword(ctx.Request().Context(), getContextClub(ctx), data, getContextSession(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "changing password")
	}
	return passwordChanged(ctx)
}

func (api *clubApi) uploadLogo(ctx echo.Context) error {
	ct, r, err := formFile(ctx, "logo", api.maxUploadSize)
	if err != nil {
		return err
	}
	c, err := api.svc.SetLogo(ctx.Request().Context(), getContextClub(ctx), ct, r)
	if err != nil {
		return errors.Wrap(err, "setting logo")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *clubApi) setRegistrationOpen(ctx echo.Context) error {
	var data ToggleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ToggleRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	c, err := api.svc.SetRegistrationOpen(ctx.Request().Context(), getContextClub(ctx), *data.Open)
	if err != nil {
		return errors.Wrap(err, "setting registration open")
	}
	return ctx.JSON(http.StatusOK, c)
}

type (
	ClubLoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	// ToggleRequest opens or closes something (registrations).
	ToggleRequest struct {
		Open *bool `json:"open" validate:"required"`
	}
)

func (lr *ClubLoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
