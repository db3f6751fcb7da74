package sl

import (
	"log/slog"
)

// Err creates a slog.Attr with the given error. A nil error yields an empty value.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}

	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
