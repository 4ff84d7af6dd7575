package club

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/session"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("club")
	ErrNameExists     = errors.New("a club with this name already exists")
	ErrUsernameExists = errors.New("a club with this username already exists")
)

type Repository interface {
	// CheckUniqueness returns ErrNameExists or ErrUsernameExists if another club,
	// not in excludedIDs, already uses name (case-insensitive) or username.
	CheckUniqueness(ctx context.Context, name, username string, excludedIDs ...string) error
	CreateClub(ctx context.Context, c Club) (Club, error)
	GetClub(ctx context.Context, filter GetFilter) (Club, error)
	// QueryClubs applies AND operation on available QueryFilter fields.
	// QueryFilter.Search does a case-insensitive match on one of Name, Username or ShortDescription.
	QueryClubs(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Club, error)
	UpdateClub(ctx context.Context, c Club) (Club, error)
}

type Service struct {
	repo     Repository
	sessions *session.Service
	mailSvc  core.EmailService
	tokens   *account.TokenGenerator
	files    core.FileStorage
}

func NewService(
	repo Repository,
	sessions *session.Service,
	mailSvc core.EmailService,
	tokens *account.TokenGenerator,
	files core.FileStorage,
) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		mailSvc:  mailSvc,
		tokens:   tokens,
		files:    files,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, name, username string, excludedIDs ...string) error {
	if err := svc.repo.CheckUniqueness(ctx, name, username, excludedIDs...); err != nil {
		var field string
		switch err {
		case ErrNameExists:
			field = "name"
		case ErrUsernameExists:
			field = "username"
		default:
			return errors.Wrap(err, "checking club uniqueness")
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// Create creates a new active Club with registration closed. nc must be validated.
func (svc *Service) Create(ctx context.Context, nc NewClub) (Club, error) {
	now := core.Now()
	c := Club{
		Name:             nc.Name,
		Username:         nc.Username,
		Email:            nc.Email,
		ShortDescription: nc.ShortDescription,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := c.SetPassword(nc.Password); err != nil {
		return Club{}, err
	}
	c, err := svc.repo.CreateClub(ctx, c)
	return c, errors.Wrap(err, "creating club")
}

// Authenticate checks the credentials of a club admin and records the login.
// Deactivated clubs cannot log in.
func (svc *Service) Authenticate(ctx context.Context, username, pwd string) (Club, error) {
	c, err := svc.repo.GetClub(ctx, GetFilter{Username: core.CleanString(username, true /* lower */)})
	if err != nil {
		if core.IsNotFound(err) {
			return Club{}, account.ErrInvalidCredentials
		}
		return Club{}, errors.Wrap(err, "finding club by username")
	}
	if err = c.CheckPassword(pwd); err != nil {
		return Club{}, err
	}
	if !c.IsActive {
		return Club{}, account.ErrAccountDeactivated
	}

	c.LastLogin = core.Now()
	c, err = svc.repo.UpdateClub(ctx, c)
	return c, errors.Wrap(err, "setting last login")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Club, error) {
	return svc.repo.GetClub(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, username string) (Club, error) {
	return svc.repo.GetClub(ctx, GetFilter{Username: core.CleanString(username, true /* lower */)})
}

// GetActive returns an active club. Deactivated clubs are reported as not found.
func (svc *Service) GetActive(ctx context.Context, id string) (Club, error) {
	c, err := svc.GetByID(ctx, id)
	if err != nil {
		return Club{}, err
	}
	if !c.IsActive {
		return Club{}, ErrNotFound
	}
	return c, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Club, error) {
	return svc.repo.QueryClubs(ctx, filter, ordering)
}

// QueryActive lists the clubs visible to the public.
func (svc *Service) QueryActive(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Club, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	active := true
	filter.IsActive = &active
	return svc.repo.QueryClubs(ctx, filter, ordering)
}

// UpdateProfile modifies the public profile of a club. uc must be validated.
func (svc *Service) UpdateProfile(ctx context.Context, c Club, uc UpdateClub) (Club, error) {
	c.Name = uc.Name
	c.Email = uc.Email
	c.ShortDescription = uc.ShortDescription
	c.Description = uc.Description
	c.SocialLinks = uc.SocialLinks
	c.UpdatedAt = core.Now()
	c, err := svc.repo.UpdateClub(ctx, c)
	return c, errors.Wrap(err, "updating club")
}

// SetLogo stores a new logo image and deletes the previous one.
func (svc *Service) SetLogo(ctx context.Context, c Club, contentType string, r io.Reader) (Club, error) {
	ext, ok := core.ImageExtension(contentType)
	if !ok {
		return Club{}, core.ErrInvalidImage
	}
	url, err := svc.files.Save(ctx, "clubs/"+c.ID, "logo-"+uuid.New().String()+ext, r)
	if err != nil {
		return Club{}, errors.Wrap(err, "saving logo")
	}

	prevURL := c.LogoURL
	c.LogoURL = url
	c.UpdatedAt = core.Now()
	if c, err = svc.repo.UpdateClub(ctx, c); err != nil {
		_ = svc.files.Delete(ctx, url)
		return Club{}, errors.Wrap(err, "updating club")
	}
	if prevURL != "" {
		if err = svc.files.Delete(ctx, prevURL); err != nil {
			return c, errors.Wrap(err, "deleting previous logo")
		}
	}
	return c, nil
}

// SetRegistrationOpen opens or closes the registrations of a club.
func (svc *Service) SetRegistrationOpen(ctx context.Context, c Club, open bool) (Club, error) {
	c.RegistrationOpen = open
	c.UpdatedAt = core.Now()
	c, err := svc.repo.UpdateClub(ctx, c)
	return c, errors.Wrap(err, "updating club")
}

// SetActive activates or deactivates a club. Deactivation ends all the club admin sessions.
func (svc *Service) SetActive(ctx context.Context, c Club, active bool) (Club, error) {
	c.IsActive = active
	c.UpdatedAt = core.Now()
	c, err := svc.repo.UpdateClub(ctx, c)
	if err != nil {
		return Club{}, errors.Wrap(err, "updating club")
	}
	if !active {
		if err = svc.sessions.CloseAll(ctx, account.RoleClub, c.ID); err != nil {
			return Club{}, errors.Wrap(err, "closing sessions")
		}
	}
	return c, nil
}

// ChangePassword sets a new password after checking the current one.
// All other sessions of the club are closed.
func (svc *Service) ChangePassword(ctx context.Context, c Club, data account.ChangePassword, currSessionID string) error {
	if err := c.CheckPassword(data.Password); err != nil {
		return account.ErrWrongPassword
	}
	return svc.setPassword(ctx, c, data.NewPassword, currSessionID)
}

// SetPassword sets a new password and closes all sessions of the club.
func (svc *Service) SetPassword(ctx context.Context, c Club, pwd string) error {
	return svc.setPassword(ctx, c, pwd)
}

func (svc *Service) setPassword(ctx context.Context, c Club, pwd string, keepSessions ...string) error {
	if err := c.SetPassword(pwd); err != nil {
		return err
	}
	c.UpdatedAt = core.Now()
	if _, err := svc.repo.UpdateClub(ctx, c); err != nil {
		return errors.Wrap(err, "updating club")
	}
	return errors.Wrap(svc.sessions.CloseAll(ctx, account.RoleClub, c.ID, keepSessions...), "closing sessions")
}

// RequestPasswordReset emails a password reset link to the active club with the given email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	c, err := svc.repo.GetClub(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return err
	}
	if !c.IsActive {
		return ErrNotFound
	}
	msg, err := svc.tokens.PasswordResetMessage(account.RoleClub, c.ID, c.Name, c.Email, c.Credentials)
	if err != nil {
		return err
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

// ResetPassword sets a new password from a password reset link. data must be validated.
func (svc *Service) ResetPassword(ctx context.Context, data account.ResetPassword) error {
	var c Club
	_, err := svc.tokens.CheckReset(data, func(id string) (account.Credentials, error) {
		var err error
		c, err = svc.GetByID(ctx, id)
		return c.Credentials, err
	})
	if err != nil {
		return err
	}
	return svc.setPassword(ctx, c, data.Password)
}
