package db

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// IsNoRows checks if the error is sql.ErrNoRows.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsDuplicateEntry reports whether the error is a MySQL duplicate key error.
func IsDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
