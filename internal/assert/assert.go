// Package assert holds the handful of invariant checks the scheduler treats
// as fatal programmer errors: these terminate the process immediately with
// no unwinding through fibers, so they panic rather than return an error.
package assert

import "fmt"

// Require panics with a formatted message if cond is false.
func Require(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
