package echoapi

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/member"
	"github.com/Mithesh23/kmit-club-sub001/core/registration"
	"github.com/Mithesh23/kmit-club-sub001/services/sheets"
)

type exportApi struct {
	members       *member.Service
	registrations *registration.Service
}

func registerExportAPI(g *echo.Group, deps *Deps) {
	api := exportApi{members: deps.Members, registrations: deps.Registrations}

	eg := g.Group("/exports")
	eg.GET("/members", api.exportMembers)
	eg.GET("/registrations", api.exportRegistrations)
}

func (api *exportApi) exportMembers(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)
	c := getContextClub(ctx)
	members, err := api.members.Query(ctx.Request().Context(), c.ID, nil, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	return sendSheet(ctx, c.Username+"-members", "Members", member.ExportHeader, member.ExportRows(members))
}

func (api *exportApi) exportRegistrations(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)
	c := getContextClub(ctx)
	regs, err := api.registrations.ListForClub(ctx.Request().Context(), c.ID, registrationFilter(ctx), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "listing registrations")
	}
	return sendSheet(ctx, c.Username+"-registrations", "Registrations", registration.ExportHeader, registration.ExportRows(regs))
}

// sendSheet writes the rows as an attachment in the format requested by the "format" query param.
func sendSheet(ctx echo.Context, name, sheet string, header []string, rows [][]string) error {
	format, err := sheets.ParseFormat(ctx.QueryParam("format"))
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "format", Error: err.Error()})
	}

	buf := new(bytes.Buffer)
	if err = sheets.Write(buf, format, sheet, header, rows); err != nil {
		return errors.Wrap(err, "writing export")
	}

	filename := format.Filename(strings.ReplaceAll(name, `"`, ""))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}
