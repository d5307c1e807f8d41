package domain

// Sheet is read-only access to the first worksheet of a statement.
type Sheet interface {
	// Row returns the raw cell texts of a 1-based row. Cells past the last
	// filled one are absent; a missing row is nil.
	Row(n int) []string

	// Cell returns the raw text at a reference like "B3".
	Cell(ref string) (string, error)

	// Close releases the underlying workbook.
	Close() error
}
