package service

import (
	"errors"
	"io/fs"
)

// IsFileLocked reports whether err comes from a file another program holds
// open, typically a statement, template or bill still open in Excel.
func IsFileLocked(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, fs.ErrPermission) || isSharingViolation(err)
}
