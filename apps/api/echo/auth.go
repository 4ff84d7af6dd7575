package echoapi

import (
	"context"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
	"github.com/Mithesh23/kmit-club-sub001/core/mentor"
	"github.com/Mithesh23/kmit-club-sub001/core/session"
	"github.com/Mithesh23/kmit-club-sub001/core/student"
)

const (
	headerSessionToken = "X-Session-Token"

	contextTokenKey   = "sessionToken"
	contextSessionKey = "session"
	contextAccountKey = "account"
)

// Claims represents the authorization claims transmitted via a JWT.
// The token ID (jti) is the ID of the session backing the token and the audience is the account role.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64 `json:"oriat,omitempty"`
}

// GenerateToken generates a signed JWT token string for a session.
// origIat is the issue time of the first token of the session (refreshes keep it).
func GenerateToken(conf *core.Config, sess session.Session, origIat ...int64) (string, error) {
	now := time.Now()
	oriat := now.Unix()
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        sess.ID,
			Issuer:    conf.AppName,
			Subject:   sess.SubjectID,
			Audience:  string(sess.Role),
			ExpiresAt: sess.ExpiresAt.Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: oriat,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// sessionTokenHeader lets clients send their token with the X-Session-Token header
// when they do not set the Authorization header.
func sessionTokenHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		if req.Header.Get(echo.HeaderAuthorization) == "" {
			if token := strings.TrimSpace(req.Header.Get(headerSessionToken)); token != "" {
				req.Header.Set(echo.HeaderAuthorization, middleware.DefaultJWTConfig.AuthScheme+" "+token)
			}
		}
		return next(ctx)
	}
}

// accountLoader returns the active account with the given ID.
type accountLoader func(ctx context.Context, id string) (interface{}, error)

type authenticator struct {
	conf     *core.Config
	sessions *session.Service
	jwt      echo.MiddlewareFunc
	loaders  map[account.Role]accountLoader
}

func newAuthenticator(conf *core.Config, deps *Deps) *authenticator {
	return &authenticator{
		conf:     conf,
		sessions: deps.Sessions,
		jwt: middleware.JWTWithConfig(middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(Claims),
		}),
		loaders: map[account.Role]accountLoader{
			account.RoleStudent: func(ctx context.Context, id string) (interface{}, error) {
				st, err := deps.Students.GetByID(ctx, id)
				if err == nil && !st.IsActive {
					err = account.ErrAccountDeactivated
				}
				return st, err
			},
			account.RoleClub: func(ctx context.Context, id string) (interface{}, error) {
				c, err := deps.Clubs.GetByID(ctx, id)
				if err == nil && !c.IsActive {
					err = account.ErrAccountDeactivated
				}
				return c, err
			},
			account.RoleMentor: func(ctx context.Context, id string) (interface{}, error) {
				m, err := deps.Mentors.GetByID(ctx, id)
				if err == nil && !m.IsActive {
					err = account.ErrAccountDeactivated
				}
				return m, err
			},
		},
	}
}

// require returns the middlewares authenticating the accounts of the given role.
// The token must be valid, of the role, and backed by a live session.
func (a *authenticator) require(role account.Role) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{a.jwt, a.sessionMiddleware(role)}
}

func (a *authenticator) sessionMiddleware(role account.Role) echo.MiddlewareFunc {
	load := a.loaders[role]
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.Audience != string(role) {
				return errHttpForbidden
			}

			rctx := ctx.Request().Context()
			sess, err := a.sessions.Get(rctx, claims.Id)
			if err != nil {
				if core.IsNotFound(err) {
					return errInvalidToken
				}
				return errors.Wrap(err, "getting session")
			}
			if sess.Role != role || sess.SubjectID != claims.Subject {
				return errInvalidToken
			}

			acc, err := load(rctx, sess.SubjectID)
			if err != nil {
				if core.IsNotFound(err) {
					return errInvalidToken
				}
				return errors.Wrap(err, "loading account")
			}
			ctx.Set(contextSessionKey, sess)
			ctx.Set(contextAccountKey, acc)
			return next(ctx)
		}
	}
}

// login opens a session for an authenticated account and returns its token.
func (a *authenticator) login(ctx echo.Context, role account.Role, subjectID string) (string, error) {
	sess, err := a.sessions.Open(ctx.Request().Context(), role, subjectID)
	if err != nil {
		return "", errors.Wrap(err, "opening session")
	}
	return GenerateToken(a.conf, sess)
}

// refresh extends the session of the request and returns a new token for it.
// Sessions cannot be refreshed past the refresh window, counted from the first login.
func (a *authenticator) refresh(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	sess, err := a.sessions.Extend(ctx.Request().Context(), claims.Id)
	if err != nil {
		if core.IsNotFound(err) {
			return "", errInvalidToken
		}
		return "", errors.Wrap(err, "extending session")
	}
	return GenerateToken(a.conf, sess, claims.OrigIssuedAt)
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextSession(ctx echo.Context) session.Session {
	sess, _ := ctx.Get(contextSessionKey).(session.Session)
	return sess
}

func getContextStudent(ctx echo.Context) student.Student {
	st, _ := ctx.Get(contextAccountKey).(student.Student)
	return st
}

func getContextClub(ctx echo.Context) club.Club {
	c, _ := ctx.Get(contextAccountKey).(club.Club)
	return c
}

func getContextMentor(ctx echo.Context) mentor.Mentor {
	m, _ := ctx.Get(contextAccountKey).(mentor.Mentor)
	return m
}

// getContextPerson returns the account behind the request, for error reports.
func getContextPerson(ctx echo.Context) (core.Person, bool) {
	switch acc := ctx.Get(contextAccountKey).(type) {
	case student.Student:
		return acc.Person(), true
	case club.Club:
		return acc.Person(), true
	case mentor.Mentor:
		return acc.Person(), true
	}
	return core.Person{}, false
}
