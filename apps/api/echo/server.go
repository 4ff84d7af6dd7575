package echoapi

import (
	"context"
	"net/http"
	"os"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/announcement"
	"github.com/Mithesh23/kmit-club-sub001/core/certificate"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
	"github.com/Mithesh23/kmit-club-sub001/core/event"
	"github.com/Mithesh23/kmit-club-sub001/core/member"
	"github.com/Mithesh23/kmit-club-sub001/core/mentor"
	"github.com/Mithesh23/kmit-club-sub001/core/registration"
	"github.com/Mithesh23/kmit-club-sub001/core/report"
	"github.com/Mithesh23/kmit-club-sub001/core/session"
	"github.com/Mithesh23/kmit-club-sub001/core/student"
)

type (
	// Deps holds the services exposed by the API.
	Deps struct {
		Sessions      *session.Service
		Students      *student.Service
		Clubs         *club.Service
		Mentors       *mentor.Service
		Members       *member.Service
		Registrations *registration.Service
		Announcements *announcement.Service
		Events        *event.Service
		Reports       *report.Service
		Certificates  *certificate.Service
	}

	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
		// Shutdown receives a signal when the server hits an unrecoverable error.
		Shutdown chan os.Signal
		Deps     *Deps
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts    *Options
		app     *echo.Echo
		auth    *authenticator
		metrics *metrics
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:    opts,
		app:     echo.New(),
		auth:    newAuthenticator(opts.Conf, opts.Deps),
		metrics: newMetrics(prometheus.NewRegistry()),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf
	debug := conf.Debug

	s.app.HideBanner = true
	s.app.IPExtractor = newIPExtractor(conf.Server.TrustedProxies, s.opts.Logger)
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Pre(sessionTokenHeader)
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: conf.Server.CORSOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, headerSessionToken,
		},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))
	s.app.Use(s.metrics.middleware)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = debug

	s.app.GET("/", s.home)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	if conf.Media.Root != "" && conf.Media.URL != "" {
		s.app.Static(conf.Media.URL, conf.Media.Root)
	}

	v1 := s.app.Group("/v1")
	throttle := newLoginLimiter(conf.Server.LoginRateLimit, conf.Server.LoginRateBurst).middleware

	deps := s.opts.Deps
	registerStudentAPI(v1, s.auth, throttle, s.opts.Validate, deps)
	registerClubAPI(v1, s.auth, throttle, s.opts.Validate, conf.Media.MaxUploadSize, deps)
	registerMentorAPI(v1, s.auth, throttle, s.opts.Validate, conf.Media.MaxUploadSize, deps)
	registerEventAPI(v1, deps)
}

func (s *server) signalShutdown() {
	if s.opts.Shutdown != nil {
		s.opts.Shutdown <- syscall.SIGTERM
	}
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Conf.Server.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.opts.Conf.AppName+" API!")
}
