package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/koustreak/ddlgen/internal/errs"
)

// mapError translates database/sql and SQLite errors into *errs.Error.
// The driver reports failures as plain messages, so classification goes
// by the SQLite result text.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "unable to open database"), strings.Contains(text, "database is locked"):
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	case strings.Contains(text, "no such table"), strings.Contains(text, "unknown database"):
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	case strings.Contains(text, "readonly"), strings.Contains(text, "not authorized"):
		return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
