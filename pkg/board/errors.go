package board

import "errors"

var (
	// ErrInvalidColumn is returned when an operation names a column that was
	// not declared at construction.
	ErrInvalidColumn = errors.New("invalid column")

	// ErrCardNotFound is returned by RenameCard when no column holds the card.
	ErrCardNotFound = errors.New("card not found")

	// ErrInvalidDirection is returned by MoveCard for anything but left or right.
	ErrInvalidDirection = errors.New("invalid direction")
)

// IsInvalidColumn reports whether err is, or wraps, ErrInvalidColumn.
func IsInvalidColumn(err error) bool {
	return errors.Is(err, ErrInvalidColumn)
}

// IsCardNotFound reports whether err is, or wraps, ErrCardNotFound.
func IsCardNotFound(err error) bool {
	return errors.Is(err, ErrCardNotFound)
}
