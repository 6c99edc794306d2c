package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/koustreak/ddlgen/internal/errs"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"canceled", fmt.Errorf("query: %w", context.Canceled), errs.ErrKindTimeout},
		{"no rows", sql.ErrNoRows, errs.ErrKindNotFound},
		{"access denied", &gomysql.MySQLError{Number: 1045, Message: "Access denied"}, errs.ErrKindConnectionFailed},
		{"unknown database", &gomysql.MySQLError{Number: 1049, Message: "Unknown database"}, errs.ErrKindConnectionFailed},
		{"table access denied", &gomysql.MySQLError{Number: 1142, Message: "SELECT command denied"}, errs.ErrKindPermissionDenied},
		{"no such table", &gomysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, errs.ErrKindNotFound},
		{"syntax", &gomysql.MySQLError{Number: 1064, Message: "You have an error"}, errs.ErrKindQueryFailed},
		{"other server error", &gomysql.MySQLError{Number: 1205, Message: "Lock wait timeout"}, errs.ErrKindQueryFailed},
		{"transport", errors.New("broken pipe"), errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "failed to fetch columns")
			assert.Equal(t, tt.want, got.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.Nil(t, mapError(nil, "unused"))
}

func TestMapError_IncludesServerMessage(t *testing.T) {
	err := mapError(&gomysql.MySQLError{Number: 1146, Message: "Table 'app.nope' doesn't exist"}, "failed to fetch columns")
	assert.Contains(t, err.Error(), "failed to fetch columns: Table 'app.nope' doesn't exist")
}
