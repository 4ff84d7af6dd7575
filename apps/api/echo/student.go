package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
	"github.com/Mithesh23/kmit-club-sub001/core/registration"
	"github.com/Mithesh23/kmit-club-sub001/core/student"
)

type studentApi struct {
	accountApi
	svc           *student.Service
	clubs         *club.Service
	registrations *registration.Service
}

func registerStudentAPI(
	g *echo.Group,
	auth *authenticator,
	throttle echo.MiddlewareFunc,
	validate *validator.Validate,
	deps *Deps,
) {
	api := studentApi{
		accountApi: accountApi{
			role:     account.RoleStudent,
			auth:     auth,
			resetter: deps.Students,
			validate: validate,
		},
		svc:           deps.Students,
		clubs:         deps.Clubs,
		registrations: deps.Registrations,
	}

	sg := g.Group("/students")

	// un-authed endpoints
	sg.POST("/signup", api.signUp, throttle)
	sg.POST("/login", api.login, throttle)
	sg.POST("/password-reset", api.resetPassword, throttle)
	sg.POST("/password-reset-confirm", api.confirmPasswordReset, throttle)

	// authed endpoints
	authed := auth.require(account.RoleStudent)
	ag := sg.Group("", authed...)
	ag.GET("/me", api.me)
	ag.PUT("/me", api.update)
	ag.POST("/me/password", api.changePassword)
	ag.GET("/me/registrations", api.myRegistrations)
	ag.POST("/token-refresh", api.refreshToken)
	ag.POST("/logout", api.logout)

	g.POST("/clubs/:id/register", api.register, authed...)
}

func (api *studentApi) signUp(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	rctx := ctx.Request().Context()
	if err := data.Validate(rctx, api.validate, api.svc); err != nil {
		return err
	}

	st, err := api.svc.SignUp(rctx, data)
	if err != nil {
		return errors.Wrap(err, "signing up student")
	}
	token, err := api.auth.login(ctx, account.RoleStudent, st.ID)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	return ctx.JSON(http.StatusCreated, LoginResponse{Token: token, Account: st})
}

func (api *studentApi) login(ctx echo.Context) error {
	var data StudentLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentLoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	st, err := api.svc.Authenticate(ctx.Request().Context(), data.RollNumber, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.auth.login(ctx, account.RoleStudent, st.ID)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Account: st})
}

func (api *studentApi) me(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, getContextStudent(ctx))
}

func (api *studentApi) update(ctx echo.Context) error {
	st := getContextStudent(ctx)

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	rctx := ctx.Request().Context()
	if err := data.Validate(rctx, st, api.validate, api.svc); err != nil {
		return err
	}

	st, err := api.svc.Update(rctx, st, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) changePassword(ctx echo.Context) error {
	data, err := api.bindChangePassword(ctx)
	if err != nil {
		return err
	}
	err = api.svc.ChangePassword(ctx.Request().Context(), getContextStudent(ctx), data, getContextSession(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "changing password")
	}
	return passwordChanged(ctx)
}

func (api *studentApi) myRegistrations(ctx echo.Context) error {
	regs, err := api.registrations.ListForStudent(ctx.Request().Context(), getContextStudent(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "listing registrations")
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *studentApi) register(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	c, err := api.clubs.GetActive(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting club")
	}

	var data registration.NewRegistration
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRegistration")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	reg, err := api.registrations.Register(rctx, c, getContextStudent(ctx), data)
	if err != nil {
		return errors.Wrap(err, "registering")
	}
	return ctx.JSON(http.StatusCreated, reg)
}

type StudentLoginRequest struct {
	RollNumber string `json:"roll_number" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

func (lr *StudentLoginRequest) Validate(validate *validator.Validate) error {
	lr.RollNumber = student.CleanRollNumber(lr.RollNumber)
	return validate.Struct(lr)
}
