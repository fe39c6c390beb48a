package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// duplicateMarkers are driver messages for unique violations that reach us untranslated.
var duplicateMarkers = []string{
	"UNIQUE constraint failed", // sqlite
	"duplicate key value",      // postgres
	"ORA-00001",                // oracle
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, marker := range duplicateMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
