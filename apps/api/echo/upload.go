package echoapi

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

// formFile reads an uploaded file of the multipart form. Its content type is sniffed from its content.
func formFile(ctx echo.Context, field string, maxSize int64) (string, io.Reader, error) {
	if maxSize > 0 {
		req := ctx.Request()
		req.Body = http.MaxBytesReader(ctx.Response(), req.Body, maxSize+1<<20) // form overhead
	}

	fh, err := ctx.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return "", nil, core.NewValidationError(err, core.FieldError{Field: field, Error: "this field is required"})
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, fileTooLarge(field, maxSize)
		}
		return "", nil, errors.Wrap(err, "reading multipart form")
	}
	if maxSize > 0 && fh.Size > maxSize {
		return "", nil, fileTooLarge(field, maxSize)
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = f.Close() }()
	content, err := io.ReadAll(f)
	if err != nil {
		return "", nil, errors.Wrap(err, "reading uploaded file")
	}
	return http.DetectContentType(content), bytes.NewReader(content), nil
}

func fileTooLarge(field string, maxSize int64) error {
	msg := "file is too large (max " + strconv.FormatInt(maxSize>>10, 10) + " KB)"
	return core.NewValidationError(nil, core.FieldError{Field: field, Error: msg})
}
