package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrConflict           = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrMachineNotFound    = errors.New("machine not found")
	// ErrRepairInProgress rejects opening a second repair on a machine.
	ErrRepairInProgress = errors.New("machine already has an ongoing repair")
	ErrNoOpenRepair     = errors.New("machine has no ongoing repair to close")
)

// ValidationError reports input rejected by business rules, one message per field.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	if v == nil || len(v.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(v.Fields))
	for f := range v.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

func (v *ValidationError) add(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string]string)
	}
	v.Fields[field] = msg
}

// orNil lets callers build a ValidationError unconditionally and return it
// only when something was recorded.
func (v *ValidationError) orNil() error {
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}
