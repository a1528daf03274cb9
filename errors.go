package sphincsplus

// import
import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the signature core.
type ErrorKind string

// const
const (
	KindInvalidParameterSet ErrorKind = "invalid parameter set"
	KindMalformedInput      ErrorKind = "malformed input"
	KindVerificationFailed  ErrorKind = "verification failed"
	KindHashPrimitive       ErrorKind = "hash primitive failure"
)

// var
var (
	// ErrInvalidParameterSet is returned for unknown or inconsistent parameter sets.
	ErrInvalidParameterSet = errors.New("sphincsplus: " + string(KindInvalidParameterSet))
	// ErrMalformedInput is returned for inputs of the wrong length or shape.
	ErrMalformedInput = errors.New("sphincsplus: " + string(KindMalformedInput))
	// ErrVerificationFailed is returned when a signature does not verify.
	ErrVerificationFailed = errors.New("sphincsplus: " + string(KindVerificationFailed))
	// ErrHashPrimitive is returned when an underlying hash or xof fails.
	ErrHashPrimitive = errors.New("sphincsplus: " + string(KindHashPrimitive))
)

// Error carries an ErrorKind plus detail. errors.Is matches the sentinel of its kind.
type Error struct {
	Kind ErrorKind
	Msg  string
}

// Error ...
func (e *Error) Error() string {
	switch {
	case e.Msg == "":
		return "sphincsplus: " + string(e.Kind)
	default:
		return "sphincsplus: " + string(e.Kind) + ": " + e.Msg
	}
}

// Is ...
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidParameterSet:
		return ErrInvalidParameterSet
	case KindMalformedInput:
		return ErrMalformedInput
	case KindVerificationFailed:
		return ErrVerificationFailed
	case KindHashPrimitive:
		return ErrHashPrimitive
	}
	return nil
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// hashFailure is raised by the hash layer and recovered at the api boundary.
type hashFailure struct{ err error }

// recoverHashFailure turns a hashFailure panic into an ErrHashPrimitive error.
func recoverHashFailure(err *error) {
	r := recover()
	if r == nil {
		return
	}
	hf, ok := r.(hashFailure)
	if !ok {
		panic(r)
	}
	*err = fmt.Errorf("%w: %w", ErrHashPrimitive, hf.err)
}
