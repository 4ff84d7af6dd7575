package main

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Mithesh23/kmit-club-sub001/storage/database"
)

var (
	gooseRunFunc = database.RunMigration     // mockable
	createDBFunc = database.CreateIfNotExist // mockable

	errNoDatabase = errors.New("this command needs the postgres database engine")
)

func (cl *commandLine) migrateCommand() *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "run a goose migration command on the embedded migrations",
		ArgsUsage: "COMMAND [ARGS...] (up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version, fix)",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("missing goose command")
			}
			deps, err := cl.deps(c.Context)
			if err != nil {
				return err
			}
			if deps.DB == nil {
				return errNoDatabase
			}
			return gooseRunFunc(deps.DB.DB, c.Args().First(), c.Args().Tail()...)
		},
	}
}

func (cl *commandLine) createDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "createdb",
		Usage: "create the application database user and database if they do not exist",
		Action: func(c *cli.Context) error {
			if err := createDBFunc(cl.conf); err != nil {
				return err
			}
			cl.printf("database %q is ready\n", cl.conf.Database.Name)
			return nil
		},
	}
}
