package talon

import "fmt"

// assertf panics when a debug-only invariant is violated. Release builds
// compile the check away; see debug_on.go / debug_off.go.
func assertf(cond bool, format string, args ...any) {
	if debugChecks && !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

// assertAlways panics unconditionally on violation. Used inside
// validateArrays, which is itself only invoked from debug paths and tests.
func assertAlways(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
