package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Mithesh23/kmit-club-sub001/core/student"
	"github.com/Mithesh23/kmit-club-sub001/services/sheets"
)

func (cl *commandLine) importStudentsCommand() *cli.Command {
	return &cli.Command{
		Name:      "importstudents",
		Usage:     "create students in bulk from a CSV or XLSX file",
		ArgsUsage: "FILE (columns: roll number, name, email, branch, year)",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("expected exactly one file")
			}
			rows, err := readStudents(c.Args().First())
			if err != nil {
				return err
			}
			deps, err := cl.deps(c.Context)
			if err != nil {
				return err
			}

			res, err := deps.Students.Import(c.Context, rows, deps.Validate)
			if err != nil {
				return err
			}
			cl.printf("%d students created, %d rows skipped\n", res.Created, len(res.Skipped))
			for _, s := range res.Skipped {
				cl.printf("  line %s\n", s)
			}
			return nil
		},
	}
}

func readStudents(path string) ([]student.ImportStudent, error) {
	format, err := sheets.FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer func() { _ = f.Close() }()

	records, err := sheets.Read(f, format)
	if err != nil {
		return nil, err
	}
	rows := make([]student.ImportStudent, 0, len(records))
	for _, rec := range records {
		year, _ := strconv.Atoi(column(rec, "year"))
		rows = append(rows, student.ImportStudent{
			RollNumber: column(rec, "roll number", "roll_number", "rollno"),
			Name:       column(rec, "name"),
			Email:      column(rec, "email"),
			Branch:     column(rec, "branch"),
			Year:       year,
		})
	}
	return rows, nil
}

// column returns the first non-empty value among the given header names.
func column(rec map[string]string, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(rec[name]); v != "" {
			return v
		}
	}
	return ""
}
