// Package repository holds the MySQL data access code.  Write paths that
// take row locks use database/sql directly on a caller-owned *sql.Tx;
// list and report queries go through sqlx.
package repository

import (
    "errors"

    "github.com/go-sql-driver/mysql"
)

var (
    ErrFlightNotFound   = errors.New("flight not found")
    ErrAirplaneNotFound = errors.New("airplane not found")
    ErrAirportNotFound  = errors.New("airport not found")
    ErrTicketNotFound   = errors.New("ticket not found")

    // ErrConflict is returned when an insert collides with an existing
    // primary or unique key.
    ErrConflict = errors.New("conflict")

    // ErrInvalidReference is returned when a foreign key points at a row
    // that does not exist.
    ErrInvalidReference = errors.New("referenced row does not exist")
)

const (
    mysqlDuplicateEntry  = 1062
    mysqlNoReferencedRow = 1452
)

func mysqlCode(err error) uint16 {
    var me *mysql.MySQLError
    if errors.As(err, &me) {
        return me.Number
    }
    return 0
}

// isDuplicate reports whether err is a MySQL duplicate-key error.
func isDuplicate(err error) bool { return mysqlCode(err) == mysqlDuplicateEntry }

func isMissingReference(err error) bool { return mysqlCode(err) == mysqlNoReferencedRow }
