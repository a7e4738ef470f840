package cli

import (
	"database/sql"
	"errors"

	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/access"
)

// Error codes emitted in structured output. Agents branch on these strings,
// so they are part of the adapter contract and must stay stable.
const (
	CodeProjectNotRegistered = "PROJECT_NOT_REGISTERED"
	CodeAccessDenied         = "PROJECT_ACCESS_DENIED"
	CodeCircularDependency   = "CIRCULAR_DEPENDENCY"
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeCrossProject         = "CROSS_PROJECT"
	CodeValidation           = "VALIDATION_ERROR"
	CodeError                = "ERROR"
)

// Classify maps an engine error to its adapter code, exit code, and an
// operator suggestion. Errors without a dedicated code fall through to the
// generic pair.
func Classify(err error) (code string, exitCode int, suggestion string) {
	switch {
	case errors.Is(err, access.ErrProjectNotRegistered):
		return CodeProjectNotRegistered, ExitNotFound,
			"Register it first with 'backlog project register --identifier=<id>'"
	case errors.Is(err, access.ErrAccessDenied):
		return CodeAccessDenied, ExitAccess,
			"The entity belongs to a different project; check the --project flag"
	case errors.Is(err, models.ErrCircularDependency):
		return CodeCircularDependency, ExitValidation,
			"Inspect the existing edges with 'backlog dep list' or 'backlog rel list'"
	case errors.Is(err, models.ErrCrossProject):
		return CodeCrossProject, ExitValidation, ""
	case errors.Is(err, models.ErrInvalidTransition):
		return CodeInvalidTransition, ExitValidation,
			"Allowed moves: todo→in_progress, in_progress→review, review→done, and back again"
	case errors.Is(err, sql.ErrNoRows):
		return CodeNotFound, ExitNotFound, ""
	case errors.Is(err, access.ErrEmptyIdentifier), errors.Is(err, access.ErrEmptyCaller),
		errors.Is(err, access.ErrNoContext):
		return CodeValidation, ExitUsage, ""
	}
	return CodeError, ExitError, ""
}
