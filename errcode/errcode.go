package errcode

// Code is a stable, caller-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// ConfigWarning: no oscillator mode was selected and a safe default
	// profile was substituted. Non-fatal; the accompanying value is usable.
	ConfigWarning Code = "config_warning"

	// CapabilityAbsent: a hardware register or feature is not present on the
	// target. Recovered locally as a documented no-op, never propagated.
	CapabilityAbsent Code = "capability_absent"

	// ContractViolation: caller error (out-of-range channel, operation while
	// a conversion is in flight, transition from the wrong state).
	ContractViolation Code = "contract_violation"

	// Timeout: a bounded poll loop ran out of budget. Fatal to the in-flight
	// operation, recoverable by the caller.
	Timeout Code = "timeout"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
