package mentor

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/session"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("mentor")
	ErrEmailExists = errors.New("a mentor with this email already exists")
)

type Repository interface {
	CreateMentor(ctx context.Context, m Mentor) (Mentor, error)
	GetMentor(ctx context.Context, filter GetFilter) (Mentor, error)
	QueryMentors(ctx context.Context) ([]Mentor, error)
	UpdateMentor(ctx context.Context, m Mentor) (Mentor, error)
}

type Service struct {
	repo     Repository
	sessions *session.Service
	mailSvc  core.EmailService
	tokens   *account.TokenGenerator
}

func NewService(repo Repository, sessions *session.Service, mailSvc core.EmailService, tokens *account.TokenGenerator) *Service {
	return &Service{repo: repo, sessions: sessions, mailSvc: mailSvc, tokens: tokens}
}

// Save creates a mentor or, if one already exists with the same email, updates it and resets
// its password. The mentor is (re)activated.
func (svc *Service) Save(ctx context.Context, nm NewMentor, validate *validator.Validate) (Mentor, bool, error) {
	nm.Clean()
	if err := validate.Struct(nm); err != nil {
		return Mentor{}, false, err
	}

	now := core.Now()
	m, err := svc.repo.GetMentor(ctx, GetFilter{Email: nm.Email})
	created := false
	if err != nil {
		if !core.IsNotFound(err) {
			return Mentor{}, false, errors.Wrap(err, "finding mentor by email")
		}
		m = Mentor{Email: nm.Email, CreatedAt: now}
		created = true
	}
	m.Name = nm.Name
	m.Department = nm.Department
	m.IsActive = true
	m.UpdatedAt = now
	if err = m.SetPassword(nm.Password); err != nil {
		return Mentor{}, false, err
	}

	if created {
		m, err = svc.repo.CreateMentor(ctx, m)
		return m, true, errors.Wrap(err, "creating mentor")
	}
	if m, err = svc.repo.UpdateMentor(ctx, m); err != nil {
		return Mentor{}, false, errors.Wrap(err, "updating mentor")
	}
	return m, false, errors.Wrap(svc.sessions.CloseAll(ctx, account.RoleMentor, m.ID), "closing sessions")
}

// SetActive (de)activates a mentor. Deactivation closes all its sessions.
func (svc *Service) SetActive(ctx context.Context, m Mentor, active bool) (Mentor, error) {
	m.IsActive = active
	m.UpdatedAt = core.Now()
	m, err := svc.repo.UpdateMentor(ctx, m)
	if err != nil {
		return Mentor{}, errors.Wrap(err, "updating mentor")
	}
	if !active {
		if err = svc.sessions.CloseAll(ctx, account.RoleMentor, m.ID); err != nil {
			return Mentor{}, errors.Wrap(err, "closing sessions")
		}
	}
	return m, nil
}

// Authenticate checks the credentials of a mentor and records the login.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Mentor, error) {
	m, err := svc.repo.GetMentor(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		if core.IsNotFound(err) {
			return Mentor{}, account.ErrInvalidCredentials
		}
		return Mentor{}, errors.Wrap(err, "finding mentor by email")
	}
	if err = m.CheckPassword(pwd); err != nil {
		return Mentor{}, err
	}
	if !m.IsActive {
		return Mentor{}, account.ErrAccountDeactivated
	}

	m.LastLogin = core.Now()
	m, err = svc.repo.UpdateMentor(ctx, m)
	return m, errors.Wrap(err, "setting last login")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Mentor, error) {
	return svc.repo.GetMentor(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Mentor, error) {
	return svc.repo.GetMentor(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) QueryAll(ctx context.Context) ([]Mentor, error) {
	return svc.repo.QueryMentors(ctx)
}

// ChangePassword sets a new password after checking the current one.
// All other sessions of the mentor are closed.
func (svc *Service) ChangePassword(ctx context.Context, m Mentor, data account.ChangePassword, currSessionID string) error {
	if err := m.CheckPassword(data.Password); err != nil {
		return account.ErrWrongPassword
	}
	return svc.setPassword(ctx, m, data.NewPassword, currSessionID)
}

// SetPassword sets a new password and closes all sessions of the mentor.
func (svc *Service) SetPassword(ctx context.Context, m Mentor, pwd string) error {
	return svc.setPassword(ctx, m, pwd)
}

func (svc *Service) setPassword(ctx context.Context, m Mentor, pwd string, keepSessions ...string) error {
	if err := m.SetPassword(pwd); err != nil {
		return err
	}
	m.UpdatedAt = core.Now()
	if _, err := svc.repo.UpdateMentor(ctx, m); err != nil {
		return errors.Wrap(err, "updating mentor")
	}
	return errors.Wrap(svc.sessions.CloseAll(ctx, account.RoleMentor, m.ID, keepSessions...), "closing sessions")
}

// RequestPasswordReset emails a password reset link to the active mentor with the given email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	m, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !m.IsActive {
		return ErrNotFound
	}
	msg, err := svc.tokens.PasswordResetMessage(account.RoleMentor, m.ID, m.Name, m.Email, m.Credentials)
	if err != nil {
		return err
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

// ResetPassword sets a new password from a password reset link. data must be validated.
func (svc *Service) ResetPassword(ctx context.Context, data account.ResetPassword) error {
	var m Mentor
	_, err := svc.tokens.CheckReset(data, func(id string) (account.Credentials, error) {
		var err error
		m, err = svc.GetByID(ctx, id)
		return m.Credentials, err
	})
	if err != nil {
		return err
	}
	return svc.setPassword(ctx, m, data.Password)
}
