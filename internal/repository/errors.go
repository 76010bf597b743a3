// Package repository is the MySQL implementation of reservation and table
// storage. Missing rows surface as model.ErrReservationNotFound and
// model.ErrTableNotFound; a seating transaction that loses a lock race
// surfaces as model.ErrStorageBusy.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

const (
	errLockWaitTimeout uint16 = 1205
	errDeadlock        uint16 = 1213
)

// lockContention reports whether err is a MySQL deadlock or lock wait
// timeout.
func lockContention(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == errDeadlock || me.Number == errLockWaitTimeout
}
