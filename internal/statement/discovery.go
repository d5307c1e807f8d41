package statement

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoStatement is matched by errors.Is when the statement folder holds no
// spreadsheet.
var ErrNoStatement = errors.New("no statement file")

// NoStatementError names the folder that had no statement.
type NoStatementError struct {
	Dir string
}

func (e *NoStatementError) Error() string {
	return fmt.Sprintf("no statement file in %s", e.Dir)
}

// Is reports ErrNoStatement as the error's identity.
func (e *NoStatementError) Is(target error) bool {
	return target == ErrNoStatement
}

var statementExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xls":  true,
}

// FindStatement returns the first spreadsheet in dir in directory listing
// order. Excel lock files (~$name.xlsx) are skipped.
func FindStatement(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading statement folder %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if statementExtensions[strings.ToLower(filepath.Ext(name))] {
			return filepath.Join(dir, name), nil
		}
	}

	return "", &NoStatementError{Dir: dir}
}

// ColumnIndex converts a column label to a zero-based offset: A -> 0,
// Z -> 25, AA -> 26.
func ColumnIndex(label string) (int, error) {
	n, err := excelize.ColumnNameToNumber(strings.TrimSpace(label))
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", label, err)
	}
	return n - 1, nil
}
