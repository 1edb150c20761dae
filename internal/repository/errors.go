package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/modvault/modvault-backend/internal/common"
	"gorm.io/gorm"
)

// mySQLDuplicateEntry ER_DUP_ENTRY
const mySQLDuplicateEntry = 1062

// translate maps a gorm/driver error onto the common taxonomy.
// Not found and unique violations become sentinels, anything else a RepositoryError.
func translate(op, table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound
	}
	if dup, onSlug := duplicateKey(err); dup {
		if onSlug {
			return fmt.Errorf("%s: %w", table, common.ErrSlugConflict)
		}
		return fmt.Errorf("%s: %w", table, common.ErrDuplicate)
	}
	return &common.RepositoryError{Op: op, Table: table, Err: err}
}

// duplicateKey recognizes MySQL 1062, SQLite UNIQUE failures and gorm's translated error
func duplicateKey(err error) (dup bool, onSlug bool) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mySQLDuplicateEntry {
		return true, strings.Contains(myErr.Message, "slug")
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return true, strings.Contains(msg, ".slug")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true, strings.Contains(msg, "slug")
	}
	return false, false
}
