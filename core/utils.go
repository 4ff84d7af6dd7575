package core

import (
	"strings"
	"time"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Now returns the current UTC time truncated to microseconds (postgres timestamp precision).
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Person identifies the account behind a request. Loggers attach it to error reports.
type Person struct {
	ID       string
	Username string
	Email    string
}

// imageExtensions maps the accepted image content types to their file extension.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageExtension returns the file extension of an accepted image content type.
func ImageExtension(contentType string) (string, bool) {
	ext, ok := imageExtensions[contentType]
	return ext, ok
}

// ErrInvalidImage is returned when an uploaded file is not an accepted image.
var ErrInvalidImage = NewValidationError(nil, FieldError{Field: "image", Error: "upload a valid image (jpeg, png, gif or webp)"})
