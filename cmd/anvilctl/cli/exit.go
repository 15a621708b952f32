// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError ends the process with Code without printing an error
// line. The command has already written its own output, so
// process.Exit only needs the status.
//
// Use it when a non-zero exit is an ordinary outcome rather than a
// failure to run: "anvilctl send" returns it after printing a
// per-line result when some injected commands were rejected, so a
// shell caller can branch on the status without parsing stderr.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the process exit code. process.Report looks for
// this method anywhere in a returned error's chain to tell a handled
// non-zero exit apart from an error it still has to print.
func (e *ExitError) ExitCode() int {
	return e.Code
}
