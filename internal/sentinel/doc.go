// Package sentinel provides a const-declarable error type for sentinel errors.
//
// errors.New returns a pointer that must live in a var, which any code in the
// module could reassign. Error is backed by a string, so sentinel values can
// be declared as const and remain comparable through wrapped error chains via
// errors.Is.
package sentinel
