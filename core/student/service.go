package student

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/session"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("student")
	ErrRollNumberExists = errors.New("a student with this roll number already exists")
	ErrEmailExists      = errors.New("a student with this email already exists")
)

type Repository interface {
	// CheckUniqueness returns ErrRollNumberExists or ErrEmailExists if another student,
	// not in excludedIDs, already uses rollNumber or email.
	CheckUniqueness(ctx context.Context, rollNumber, email string, excludedIDs ...string) error
	CreateStudent(ctx context.Context, st Student) (Student, error)
	GetStudent(ctx context.Context, filter GetFilter) (Student, error)
	// QueryStudents applies AND operation on available QueryFilter fields.
	// QueryFilter.Search does a case-insensitive match on one of Name, RollNumber or Email.
	QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
	UpdateStudent(ctx context.Context, st Student) (Student, error)
}

type Service struct {
	repo     Repository
	sessions *session.Service
	mailSvc  core.EmailService
	tokens   *account.TokenGenerator
	logger   core.Logger
}

func NewService(
	repo Repository,
	sessions *session.Service,
	mailSvc core.EmailService,
	tokens *account.TokenGenerator,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		mailSvc:  mailSvc,
		tokens:   tokens,
		logger:   logger,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, rollNumber, email string, excludedIDs ...string) error {
	if err := svc.repo.CheckUniqueness(ctx, rollNumber, email, excludedIDs...); err != nil {
		var field string
		switch err {
		case ErrRollNumberExists:
			field = "roll_number"
		case ErrEmailExists:
			field = "email"
		default:
			return errors.Wrap(err, "checking student uniqueness")
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// SignUp creates a new active Student. ns must be validated.
func (svc *Service) SignUp(ctx context.Context, ns NewStudent) (Student, error) {
	now := core.Now()
	st := Student{
		RollNumber: ns.RollNumber,
		Name:       ns.Name,
		Email:      ns.Email,
		Branch:     ns.Branch,
		Year:       ns.Year,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := st.SetPassword(ns.Password); err != nil {
		return Student{}, err
	}
	st, err := svc.repo.CreateStudent(ctx, st)
	return st, errors.Wrap(err, "creating student")
}

// Authenticate checks the credentials of a student and records the login.
func (svc *Service) Authenticate(ctx context.Context, rollNumber, pwd string) (Student, error) {
	st, err := svc.repo.GetStudent(ctx, GetFilter{RollNumber: CleanRollNumber(rollNumber)})
	if err != nil {
		if core.IsNotFound(err) {
			return Student{}, account.ErrInvalidCredentials
		}
		return Student{}, errors.Wrap(err, "finding student by roll number")
	}
	if err = st.CheckPassword(pwd); err != nil {
		return Student{}, err
	}
	if !st.IsActive {
		return Student{}, account.ErrAccountDeactivated
	}

	st.LastLogin = core.Now()
	st, err = svc.repo.UpdateStudent(ctx, st)
	return st, errors.Wrap(err, "setting last login")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByRollNumber(ctx context.Context, rollNumber string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{RollNumber: CleanRollNumber(rollNumber)})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

// Update modifies the profile of a Student. us must be validated.
func (svc *Service) Update(ctx context.Context, st Student, us UpdateStudent) (Student, error) {
	st.Name = us.Name
	st.Email = us.Email
	st.Branch = us.Branch
	st.Year = us.Year
	st.UpdatedAt = core.Now()
	st, err := svc.repo.UpdateStudent(ctx, st)
	return st, errors.Wrap(err, "updating student")
}

// SetActive activates or deactivates a Student. Deactivation ends all their sessions.
func (svc *Service) SetActive(ctx context.Context, st Student, active bool) (Student, error) {
	st.IsActive = active
	st.UpdatedAt = core.Now()
	st, err := svc.repo.UpdateStudent(ctx, st)
	if err != nil {
		return Student{}, errors.Wrap(err, "updating student")
	}
	if !active {
		if err = svc.sessions.CloseAll(ctx, account.RoleStudent, st.ID); err != nil {
			return Student{}, errors.Wrap(err, "closing sessions")
		}
	}
	return st, nil
}

// ChangePassword sets a new password after checking the current one.
// All other sessions of the student are closed.
func (svc *Service) ChangePassword(ctx context.Context, st Student, data account.ChangePassword, currSessionID string) error {
	if err := st.CheckPassword(data.Password); err != nil {
		return account.ErrWrongPassword
	}
	return svc.setPassword(ctx, st, data.NewPassword, currSessionID)
}

// SetPassword sets a new password and closes all sessions of the student.
func (svc *Service) SetPassword(ctx context.Context, st Student, pwd string) error {
	return svc.setPassword(ctx, st, pwd)
}

func (svc *Service) setPassword(ctx context.Context, st Student, pwd string, keepSessions ...string) error {
	if err := st.SetPassword(pwd); err != nil {
		return err
	}
	st.UpdatedAt = core.Now()
	if _, err := svc.repo.UpdateStudent(ctx, st); err != nil {
		return errors.Wrap(err, "updating student")
	}
	return errors.Wrap(svc.sessions.CloseAll(ctx, account.RoleStudent, st.ID, keepSessions...), "closing sessions")
}

// RequestPasswordReset emails a password reset link to the active student with the given email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	st, err := svc.repo.GetStudent(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return err
	}
	if !st.IsActive {
		return ErrNotFound
	}
	msg, err := svc.tokens.PasswordResetMessage(account.RoleStudent, st.ID, st.Name, st.Email, st.Credentials)
	if err != nil {
		return err
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

// ResetPassword sets a new password from a password reset link. data must be validated.
func (svc *Service) ResetPassword(ctx context.Context, data account.ResetPassword) error {
	var st Student
	_, err := svc.tokens.CheckReset(data, func(id string) (account.Credentials, error) {
		var err error
		st, err = svc.GetByID(ctx, id)
		return st.Credentials, err
	})
	if err != nil {
		return err
	}
	return svc.setPassword(ctx, st, data.Password)
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Created int
	Skipped []string // "<line>: <reason>"
}

// Import creates students in bulk. Rows that are invalid or already exist are skipped.
// Imported students must reset their password before logging in.
func (svc *Service) Import(ctx context.Context, rows []ImportStudent, validate *validator.Validate) (ImportResult, error) {
	var res ImportResult
	for i, row := range rows {
		line := i + 2 // header is line 1
		row.RollNumber = CleanRollNumber(row.RollNumber)
		row.Name = core.CleanString(row.Name)
		row.Email = core.CleanString(row.Email, true /* lower */)
		row.Branch = strings.ToUpper(core.CleanString(row.Branch))

		if err := validate.Struct(row); err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("%d: %v", line, err))
			continue
		}
		if err := svc.repo.CheckUniqueness(ctx, row.RollNumber, row.Email); err != nil {
			if err == ErrRollNumberExists || err == ErrEmailExists {
				res.Skipped = append(res.Skipped, fmt.Sprintf("%d: %v", line, err))
				continue
			}
			return res, errors.Wrap(err, "checking student uniqueness")
		}

		now := core.Now()
		st := Student{
			RollNumber: row.RollNumber,
			Name:       row.Name,
			Email:      row.Email,
			Branch:     row.Branch,
			Year:       row.Year,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		st.SetUnusablePassword()
		if _, err := svc.repo.CreateStudent(ctx, st); err != nil {
			return res, errors.Wrapf(err, "creating student on line %d", line)
		}
		res.Created++
	}
	return res, nil
}
