// Package di wires the repositories and services of the applications from the configuration.
package di

import (
	"context"
	"fmt"
	"io"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
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
	appfs "github.com/Mithesh23/kmit-club-sub001/fs"
	filesvc "github.com/Mithesh23/kmit-club-sub001/services/files"
	rediscache "github.com/Mithesh23/kmit-club-sub001/storage/cache/redis"
	"github.com/Mithesh23/kmit-club-sub001/storage/database"
	dummydb "github.com/Mithesh23/kmit-club-sub001/storage/database/dummy"
	sqlxrepos "github.com/Mithesh23/kmit-club-sub001/storage/database/sqlx"
)

const (
	EngineMemory   = "memory"
	EnginePostgres = "postgres"

	commonPasswordsPath = "assets/common-passwords.txt"
)

type repositories struct {
	tx            core.Transactor
	sessions      session.Repository
	students      student.Repository
	clubs         club.Repository
	mentors       mentor.Repository
	members       member.Repository
	registrations registration.Repository
	announcements announcement.Repository
	events        event.Repository
	reports       report.Repository
	certificates  certificate.Repository
}

// Container holds the services of the application.
type Container struct {
	Conf       *core.Config
	Validate   *validator.Validate
	Translator ut.Translator

	// DB is nil with the memory engine.
	DB *sqlx.DB

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

	closers []io.Closer
}

type Options struct {
	// Migrate creates the database if needed and runs the migrations before use.
	Migrate bool
	// Files overrides the default local disk storage.
	Files core.FileStorage
}

// NewValidator returns a validator with the validations of every domain registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	account.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	club.InitValidators(validate, translator)
	mentor.InitValidators(validate, translator)
	event.InitValidators(validate, translator)
	return validate, translator
}

// New sets up the storage selected by conf.Database.Engine and the services on top of it.
// Sessions are stored in redis when conf.Redis.Address is set.
func New(ctx context.Context, conf *core.Config, logger core.Logger, mailSvc core.EmailService, opts Options) (*Container, error) {
	c := &Container{Conf: conf}
	c.Validate, c.Translator = NewValidator()
	account.LoadCommonPasswords(appfs.FS, commonPasswordsPath, logger)
	core.ParseEmailTemplates(appfs.FS, logger, conf.TestMode)

	var repos repositories
	switch conf.Database.Engine {
	case EngineMemory:
		repos = memoryRepositories(dummydb.Open())
	case EnginePostgres, "":
		db, err := openDB(conf, opts.Migrate)
		if err != nil {
			return nil, err
		}
		c.DB = db
		c.closers = append(c.closers, db)
		repos = sqlxRepositories(db)
	default:
		return nil, fmt.Errorf("unknown database engine %q", conf.Database.Engine)
	}

	if conf.Redis.Address != "" {
		client, err := rediscache.Open(ctx, conf)
		if err != nil {
			_ = c.Close()
			return nil, errors.Wrap(err, "opening redis")
		}
		c.closers = append(c.closers, client)
		repos.sessions = rediscache.NewSessionRepository(client)
	}

	files := opts.Files
	if files == nil {
		files = filesvc.NewLocalStorage(conf)
	}
	c.wire(repos, logger, mailSvc, files)
	return c, nil
}

// NewMemory returns a container on in-memory storage (tests).
func NewMemory(conf *core.Config, logger core.Logger, mailSvc core.EmailService, files core.FileStorage) *Container {
	c := &Container{Conf: conf}
	c.Validate, c.Translator = NewValidator()
	account.LoadCommonPasswords(appfs.FS, commonPasswordsPath, logger)
	core.ParseEmailTemplates(appfs.FS, logger, true /* strict */)
	c.wire(memoryRepositories(dummydb.Open()), logger, mailSvc, files)
	return c
}

// NewWithRedis is like NewMemory but stores the sessions in redis.
func NewWithRedis(conf *core.Config, logger core.Logger, mailSvc core.EmailService, files core.FileStorage, client redis.UniversalClient) *Container {
	c := &Container{Conf: conf}
	c.Validate, c.Translator = NewValidator()
	repos := memoryRepositories(dummydb.Open())
	repos.sessions = rediscache.NewSessionRepository(client)
	c.wire(repos, logger, mailSvc, files)
	return c
}

func (c *Container) wire(repos repositories, logger core.Logger, mailSvc core.EmailService, files core.FileStorage) {
	tokens := account.NewTokenGenerator(c.Conf.SecretKey, c.Conf.PasswordResetTimeoutDelta)

	c.Sessions = session.NewService(repos.sessions, c.Conf)
	c.Students = student.NewService(repos.students, c.Sessions, mailSvc, tokens, logger)
	c.Clubs = club.NewService(repos.clubs, c.Sessions, mailSvc, tokens, files)
	c.Mentors = mentor.NewService(repos.mentors, c.Sessions, mailSvc, tokens)
	c.Members = member.NewService(repos.members)
	c.Registrations = registration.NewService(repos.registrations, c.Members, repos.tx, mailSvc)
	c.Announcements = announcement.NewService(repos.announcements, c.Members, mailSvc)
	c.Events = event.NewService(repos.events, files, logger)
	c.Reports = report.NewService(repos.reports)
	c.Certificates = certificate.NewService(repos.certificates, c.Clubs, mailSvc)
}

// Close releases the database & redis connections.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}

func openDB(conf *core.Config, migrate bool) (*sqlx.DB, error) {
	if migrate {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, errors.Wrap(err, "creating database")
		}
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "migrating database")
		}
	}
	return db, nil
}

func memoryRepositories(db *dummydb.DB) repositories {
	return repositories{
		tx:            dummydb.NewTransactor(),
		sessions:      dummydb.NewSessionRepository(db),
		students:      dummydb.NewStudentRepository(db),
		clubs:         dummydb.NewClubRepository(db),
		mentors:       dummydb.NewMentorRepository(db),
		members:       dummydb.NewMemberRepository(db),
		registrations: dummydb.NewRegistrationRepository(db),
		announcements: dummydb.NewAnnouncementRepository(db),
		events:        dummydb.NewEventRepository(db),
		reports:       dummydb.NewReportRepository(db),
		certificates:  dummydb.NewCertificateRepository(db),
	}
}

func sqlxRepositories(db *sqlx.DB) repositories {
	return repositories{
		tx:            sqlxrepos.NewTransactor(db),
		sessions:      sqlxrepos.NewSessionRepository(db),
		students:      sqlxrepos.NewStudentRepository(db),
		clubs:         sqlxrepos.NewClubRepository(db),
		mentors:       sqlxrepos.NewMentorRepository(db),
		members:       sqlxrepos.NewMemberRepository(db),
		registrations: sqlxrepos.NewRegistrationRepository(db),
		announcements: sqlxrepos.NewAnnouncementRepository(db),
		events:        sqlxrepos.NewEventRepository(db),
		reports:       sqlxrepos.NewReportRepository(db),
		certificates:  sqlxrepos.NewCertificateRepository(db),
	}
}
