package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/Mithesh23/kmit-club-sub001/apps/di"
	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errEmptyPassword = errors.New("password cannot be empty")
)

// commandLine runs the administration commands. The dependencies are loaded on first use so
// that commands like createdb can run before the database exists.
type commandLine struct {
	conf   *core.Config
	logger core.Logger
	out    io.Writer
	load   func(ctx context.Context) (*di.Container, error)
	di     *di.Container
}

func newCommandLine(conf *core.Config, logger core.Logger, out io.Writer, load func(ctx context.Context) (*di.Container, error)) *commandLine {
	return &commandLine{conf: conf, logger: logger, out: out, load: load}
}

func (cl *commandLine) deps(ctx context.Context) (*di.Container, error) {
	if cl.di == nil {
		c, err := cl.load(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "setting up dependencies")
		}
		c.Validate.RegisterStructValidation(passwordInputValidation, passwordInput{})
		cl.di = c
	}
	return cl.di, nil
}

func (cl *commandLine) close() {
	if cl.di != nil {
		if err := cl.di.Close(); err != nil {
			cl.logger.Error("Failed to close", err)
		}
	}
}

func (cl *commandLine) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cl.out, format, args...)
}

func (cl *commandLine) app() *cli.App {
	return &cli.App{
		Name:      "admin",
		Usage:     cl.conf.AppName + " administration",
		Writer:    cl.out,
		ErrWriter: cl.out,
		Commands: []*cli.Command{
			cl.migrateCommand(),
			cl.createDBCommand(),
			cl.addMentorCommand(),
			cl.addClubCommand(),
			cl.setActiveCommand(),
			cl.resetPasswordCommand(),
			cl.importStudentsCommand(),
			cl.purgeSessionsCommand(),
		},
	}
}

func (cl *commandLine) run(ctx context.Context, args []string) error {
	return cl.app().RunContext(ctx, args)
}

// promptPassword reads a password from the terminal without echoing it.
func (cl *commandLine) promptPassword() (string, error) {
	cl.printf("Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	cl.printf("\n")
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	return string(pwd), nil
}

// describe turns validation errors into a readable message.
func (cl *commandLine) describe(err error) error {
	switch verr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		if cl.di == nil {
			return err
		}
		msgs := make([]string, 0, len(verr))
		for _, fe := range verr {
			msgs = append(msgs, fe.Field()+": "+fe.Translate(cl.di.Translator))
		}
		sort.Strings(msgs)
		return errors.New(strings.Join(msgs, "; "))
	case *core.ValidationError:
		if len(verr.Fields) == 0 {
			return verr
		}
		msgs := make([]string, 0, len(verr.Fields))
		for _, fe := range verr.Fields {
			msgs = append(msgs, fe.Field+": "+fe.Error)
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return err
}

// passwordInput checks a password set from the command line against the password policy.
type passwordInput struct {
	Password string `json:"password" validate:"required"`
	attrs    []string
}

func passwordInputValidation(sl validator.StructLevel) {
	in := sl.Current().Interface().(passwordInput)
	account.ValidatePassword(sl, in.Password, "password", "Password", in.attrs...)
}
