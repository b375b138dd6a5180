package sentinel

// Compile-time check that Error implements the error interface.
var _ error = Error("")

// Error is a string-backed error type usable in const declarations.
// Being a comparable value type, the default == comparison performed by
// errors.Is matches it correctly through wrapped error chains.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}
