package protocol

import "fmt"

const (
	// Request validation.
	ErrBadRequest = "E_BAD_REQUEST"

	// Economy / selection rejections (operation aborted, state unchanged).
	ErrBudget        = "E_BUDGET"
	ErrNoStudent     = "E_NO_STUDENT"
	ErrNoTask        = "E_NO_TASK"
	ErrNoActions     = "E_NO_ACTIONS"
	ErrMaxLevel      = "E_MAX_LEVEL"
	ErrConflict      = "E_CONFLICT"
	ErrChoicePending = "E_CHOICE_PENDING"
	ErrSeasonOver    = "E_SEASON_OVER"

	// Persistence boundary.
	ErrRestoreCorrupt = "E_RESTORE_CORRUPT"
)

var knownCodes = map[string]struct{}{
	ErrBadRequest:     {},
	ErrBudget:         {},
	ErrNoStudent:      {},
	ErrNoTask:         {},
	ErrNoActions:      {},
	ErrMaxLevel:       {},
	ErrConflict:       {},
	ErrChoicePending:  {},
	ErrSeasonOver:     {},
	ErrRestoreCorrupt: {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// Err is a rejection: the operation was refused and state is unchanged.
type Err struct {
	Code string
	Msg  string
}

func (e *Err) Error() string {
	if e.Msg == "" {
		return e.Code
	}
	return e.Code + ": " + e.Msg
}

func Reject(code, format string, args ...any) error {
	return &Err{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Code extracts the rejection code from an error, or "" for nil/foreign errors.
func Code(err error) string {
	if err == nil {
		return ""
	}
	if pe, ok := err.(*Err); ok {
		return pe.Code
	}
	return ""
}
