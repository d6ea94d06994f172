package appointments

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrNotPersisted             = errors.New("appointment has no id")
	ErrNotFound                 = errors.New("appointment not found")
	ErrInvalidTransition        = errors.New("invalid status transition")
	ErrAttendedBeforeCompletion = errors.New("attended can only be set when completing")
	ErrCancelDeclined           = errors.New("cancellation not confirmed")
	ErrTransport                = errors.New("directory unreachable")
)

// RejectionError es el rechazo semántico del Directorio (400/409/422).
// Message es el texto que devolvió el Directorio, apto para mostrar.
type RejectionError struct {
	Op      string
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s rejected by directory", e.Op)
	}
	return fmt.Sprintf("%s rejected by directory: %s", e.Op, e.Message)
}

// IsRejection cubre tanto rechazos del Directorio como validaciones locales.
func IsRejection(err error) bool {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return true
	}
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotPersisted) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrAttendedBeforeCompletion)
}

// IsTransport indica que el Directorio no respondió (red o no-2xx no semántico).
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// RejectionMessage extrae el mensaje del Directorio si lo hay.
func RejectionMessage(err error) string {
	if err == nil {
		return ""
	}
	var rej *RejectionError
	if errors.As(err, &rej) && rej.Message != "" {
		return rej.Message
	}
	return err.Error()
}
