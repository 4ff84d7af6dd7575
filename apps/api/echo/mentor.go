package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
	"github.com/Mithesh23/kmit-club-sub001/core/member"
	"github.com/Mithesh23/kmit-club-sub001/core/mentor"
)

type mentorApi struct {
	accountApi
	svc     *mentor.Service
	clubs   *club.Service
	members *member.Service
}

func registerMentorAPI(
	g *echo.Group,
	auth *authenticator,
	throttle echo.MiddlewareFunc,
	validate *validator.Validate,
	maxUploadSize int64,
	deps *Deps,
) {
	api := mentorApi{
		accountApi: accountApi{
			role:     account.RoleMentor,
			auth:     auth,
			resetter: deps.Mentors,
			validate: validate,
		},
		svc:     deps.Mentors,
		clubs:   deps.Clubs,
		members: deps.Members,
	}

	// un-authed endpoints
	pg := g.Group("/mentors")
	pg.POST("/login", api.login, throttle)
	pg.POST("/password-reset", api.resetPassword, throttle)
	pg.POST("/password-reset-confirm", api.confirmPasswordReset, throttle)

	// mentor endpoints
	ag := g.Group("/mentor", auth.require(account.RoleMentor)...)
	ag.GET("/me", api.me)
	ag.POST("/me/password", api.changePassword)
	ag.POST("/token-refresh", api.refreshToken)
	ag.POST("/logout", api.logout)

	cg := ag.Group("/clubs")
	cg.GET("", api.queryClubs)
	cg.POST("", api.createClub)
	cg.GET("/:id", api.retrieveClub)
	cg.PUT("/:id/activation", api.setClubActive)

	institution := func(echo.Context) string { return "" }
	registerEventAdminAPI(ag, institution, validate, maxUploadSize, deps)
	registerMentorReportAPI(ag, deps)
	registerMentorCertificateAPI(ag, validate, deps)
}

func (api *mentorApi) login(ctx echo.Context) error {
	var data MentorLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MentorLoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.auth.login(ctx, account.RoleMentor, m.ID)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Account: m})
}

func (api *mentorApi) me(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, getContextMentor(ctx))
}

func (api *mentorApi) changePassword(ctx echo.Context) error {
	data, err := api.bindChangePassword(ctx)
	if err != nil {
		return err
	}
	err = api.svc.ChangePassword(ctx.Request().Context(), getContextMentor(ctx), data, getContextSession(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "changing password")
	}
	return passwordChanged(ctx)
}

func (api *mentorApi) queryClubs(ctx echo.Context) error {
	filter := &club.QueryFilter{
		Search:           ctx.QueryParam("search"),
		IsActive:         queryBool(ctx, "is_active"),
		RegistrationOpen: queryBool(ctx, "registration_open"),
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	clubs, err := api.clubs.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying clubs")
	}
	if clubs == nil {
		clubs = []club.Club{}
	}
	return ctx.JSON(http.StatusOK, clubs)
}

func (api *mentorApi) createClub(ctx echo.Context) error {
	var data club.NewClub
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClub")
	}
	rctx := ctx.Request().Context()
	if err := data.Validate(rctx, api.validate, api.clubs); err != nil {
		return err
	}

	c, err := api.clubs.Create(rctx, data)
	if err != nil {
		return errors.Wrap(err, "creating club")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *mentorApi) retrieveClub(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	c, err := api.clubs.GetByID(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting club")
	}
	count, err := api.members.Count(rctx, c.ID)
	if err != nil {
		return errors.Wrap(err, "counting members")
	}
	return ctx.JSON(http.StatusOK, ClubDetail{Club: c, MembersCount: count})
}

func (api *mentorApi) setClubActive(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	c, err := api.clubs.GetByID(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting club")
	}

	var data ActivationRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ActivationRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	c, err = api.clubs.SetActive(rctx, c, *data.Active)
	if err != nil {
		return errors.Wrap(err, "setting club activation")
	}
	return ctx.JSON(http.StatusOK, c)
}

type (
	MentorLoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	ActivationRequest struct {
		Active *bool `json:"active" validate:"required"`
	}
)

func (lr *MentorLoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
