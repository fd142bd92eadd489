package telemetry

import "f3-catalog/backend/internal/platform/domainerr"

// Outcome classifies a command error for metrics: ok, not_found, invalid, conflict or error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domainerr.IsNotFound(err):
		return "not_found"
	case domainerr.IsValidation(err):
		return "invalid"
	case domainerr.IsConflict(err):
		return "conflict"
	default:
		return "error"
	}
}
