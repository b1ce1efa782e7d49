package nedb

import (
	"github.com/juju/errors"
)

// Sentinel causes for the abstract error kinds from spec §7. Use
// errors.Cause(err) == ErrXxx (or the Is* predicates below) to discriminate
// a returned error's kind. Invalid-document, unique-violation,
// invalid-update and ensureIndex errors are annotated with context via
// errors.Annotatef so %v still prints a useful message; the other
// sentinels are returned as they are.
var (
	// ErrInvalidDocument: a document key contains "." or starts with "$".
	ErrInvalidDocument = errors.New("invalid document")
	// ErrUniqueViolation: an insert would duplicate a unique-indexed key.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrInconsistentProjection: a projection mixes inclusion and exclusion.
	ErrInconsistentProjection = errors.New("cannot mix inclusion and exclusion in projection")
	// ErrInvalidUpdate: a replacement with a differing _id, an unknown
	// modifier, or a modifier operand incompatible with the current value.
	ErrInvalidUpdate = errors.New("invalid update")
	// ErrMissingField: ensureIndex called without a field name.
	ErrMissingField = errors.New("index field name is required")
	// ErrPersistenceFailure: the persistence-failure kind. The store does
	// not return it; see Persister for how persistence errors are handled.
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrNotFound: no document matched a Cursor.One or FindId lookup.
	ErrNotFound = errors.New("not found")
)

func invalidDocumentf(format string, args ...interface{}) error {
	return errors.Annotatef(ErrInvalidDocument, format, args...)
}

func uniqueViolationf(format string, args ...interface{}) error {
	return errors.Annotatef(ErrUniqueViolation, format, args...)
}

func invalidUpdatef(format string, args ...interface{}) error {
	return errors.Annotatef(ErrInvalidUpdate, format, args...)
}

// IsUniqueViolation reports whether err (or any error it wraps) is a
// ErrUniqueViolation.
func IsUniqueViolation(err error) bool {
	return causeIs(err, ErrUniqueViolation)
}

// IsNotFound reports whether err (or any error it wraps) is ErrNotFound.
func IsNotFound(err error) bool {
	return causeIs(err, ErrNotFound)
}

func causeIs(err, target error) bool {
	for err != nil {
		if err == target {
			return true
		}
		cause := errors.Cause(err)
		if cause == err {
			return false
		}
		err = cause
	}
	return false
}
