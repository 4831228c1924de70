//go:build !talondebug

package talon

const debugChecks = false
