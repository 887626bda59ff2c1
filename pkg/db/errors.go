package db

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFound reports whether err is GORM's record-not-found sentinel.
// Services use it to turn a failed existence probe into NOT_FOUND
// instead of a dependency error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
