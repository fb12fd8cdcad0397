/*
Package errors implements the error taxonomy used by every extension.

Reuse as many errors from this package as possible and define custom
extension errors only when a caller must be able to tell them apart. Root
errors are created with Register(code, description); the code is exposed to
API clients so that they can act on the kind of failure without parsing the
message.

Wrap an error at the point of creation using errors.Wrap(ErrXyz, "...") to
attach a stacktrace. If you wrap multiple times, only the first wrap records
the stacktrace.

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context

	%s is just the error message
	%+v is the full stack trace
*/
package errors
