package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Mithesh23/kmit-club-sub001/apps/di"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/club"
	"github.com/Mithesh23/kmit-club-sub001/core/mentor"
)

func roleFlag() cli.Flag {
	return &cli.StringFlag{Name: "role", Usage: "account role: student, club or mentor", Required: true}
}

func accountFlag() cli.Flag {
	return &cli.StringFlag{Name: "account", Usage: "roll number (student), username (club) or email (mentor)", Required: true}
}

func parseRole(s string) (account.Role, error) {
	role := account.Role(strings.ToLower(strings.TrimSpace(s)))
	if !role.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

func (cl *commandLine) addMentorCommand() *cli.Command {
	return &cli.Command{
		Name:  "addmentor",
		Usage: "create a mentor, or update the mentor with the same email (the password is prompted)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "department"},
		},
		Action: func(c *cli.Context) error {
			deps, err := cl.deps(c.Context)
			if err != nil {
				return err
			}
			pwd, err := cl.promptPassword()
			if err != nil {
				return err
			}

			nm := mentor.NewMentor{
				Name:       c.String("name"),
				Email:      c.String("email"),
				Department: c.String("department"),
				Password:   pwd,
			}
			m, created, err := deps.Mentors.Save(c.Context, nm, deps.Validate)
			if err != nil {
				return cl.describe(err)
			}
			if created {
				cl.printf("mentor %s created\n", m.Email)
			} else {
				cl.printf("mentor %s updated\n", m.Email)
			}
			return nil
		},
	}
}

func (cl *commandLine) addClubCommand() *cli.Command {
	return &cli.Command{
		Name:  "addclub",
		Usage: "create a club account (the password is prompted)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "description", Usage: "short description"},
		},
		Action: func(c *cli.Context) error {
			deps, err := cl.deps(c.Context)
			if err != nil {
				return err
			}
			pwd, err := cl.promptPassword()
			if err != nil {
				return err
			}

			nc := club.NewClub{
				Name:             c.String("name"),
				Username:         c.String("username"),
				Email:            c.String("email"),
				ShortDescription: c.String("description"),
				Password:         pwd,
			}
			if err = nc.Validate(c.Context, deps.Validate, deps.Clubs); err != nil {
				return cl.describe(err)
			}
			cb, err := deps.Clubs.Create(c.Context, nc)
			if err != nil {
				return err
			}
			cl.printf("club %s created\n", cb.Username)
			return nil
		},
	}
}

func (cl *commandLine) setActiveCommand() *cli.Command {
	return &cli.Command{
		Name:  "setactive",
		Usage: "activate or deactivate an account (deactivation closes its sessions)",
		Flags: []cli.Flag{
			roleFlag(),
			accountFlag(),
			&cli.BoolFlag{Name: "active", Value: true},
		},
		Action: func(c *cli.Context) error {
			role, err := parseRole(c.String("role"))
			if err != nil {
				return err
			}
			deps, err := cl.deps(c.Context)
			if err != nil {
				return err
			}
			if err = setActive(c.Context, deps, role, c.String("account"), c.Bool("active")); err != nil {
				return err
			}
			cl.printf("%s %s active: %t\n", role, c.String("account"), c.Bool("active"))
			return nil
		},
	}
}

func setActive(ctx context.Context, deps *di.Container, role account.Role, ident string, active bool) error {
	switch role {
	case account.RoleStudent:
		st, err := deps.Students.GetByRollNumber(ctx, ident)
		if err != nil {
			return err
		}
		_, err = deps.Students.SetActive(ctx, st, active)
		return err
	case account.RoleClub:
		cb, err := deps.Clubs.GetByUsername(ctx, ident)
		if err != nil {
			return err
		}
		_, err = deps.Clubs.SetActive(ctx, cb, active)
		return err
	default:
		m, err := deps.Mentors.GetByEmail(ctx, ident)
		if err != nil {
			return err
		}
		_, err = deps.Mentors.SetActive(ctx, m, active)
		return err
	}
}

func (cl *commandLine) resetPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:  "resetpassword",
		Usage: "set a new password (prompted) and close the sessions of an account",
		Flags: []cli.Flag{roleFlag(), accountFlag()},
		Action: func(c *cli.Context) error {
			role, err := parseRole(c.String("role"))
			if err != nil {
				return err
			}
			deps, err := cl.deps(c.Context)
			if err != nil {
				return err
			}
			if err = cl.resetPassword(c.Context, deps, role, c.String("account")); err != nil {
				return cl.describe(err)
			}
			cl.printf("password of %s %s updated\n", role, c.String("account"))
			return nil
		},
	}
}

func (cl *commandLine) resetPassword(ctx context.Context, deps *di.Container, role account.Role, ident string) error {
	// the account is looked up first so that a typo does not cost a password prompt
	var (
		attrs []string
		set   func(pwd string) error
	)
	switch role {
	case account.RoleStudent:
		st, err := deps.Students.GetByRollNumber(ctx, ident)
		if err != nil {
			return err
		}
		attrs = []string{st.RollNumber, st.Name, st.Email}
		set = func(pwd string) error { return deps.Students.SetPassword(ctx, st, pwd) }
	case account.RoleClub:
		cb, err := deps.Clubs.GetByUsername(ctx, ident)
		if err != nil {
			return err
		}
		attrs = []string{cb.Username, cb.Name, cb.Email}
		set = func(pwd string) error { return deps.Clubs.SetPassword(ctx, cb, pwd) }
	default:
		m, err := deps.Mentors.GetByEmail(ctx, ident)
		if err != nil {
			return err
		}
		attrs = []string{m.Name, m.Email}
		set = func(pwd string) error { return deps.Mentors.SetPassword(ctx, m, pwd) }
	}

	pwd, err := cl.promptPassword()
	if err != nil {
		return err
	}
	if err = deps.Validate.Struct(passwordInput{Password: pwd, attrs: attrs}); err != nil {
		return err
	}
	return set(pwd)
}

func (cl *commandLine) purgeSessionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "purgesessions",
		Usage: "delete the expired sessions",
		Action: func(c *cli.Context) error {
			deps, err := cl.deps(c.Context)
			if err != nil {
				return err
			}
			n, err := deps.Sessions.Purge(c.Context)
			if err != nil {
				return err
			}
			cl.printf("%d expired sessions deleted\n", n)
			return nil
		},
	}
}
