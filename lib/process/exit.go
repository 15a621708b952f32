// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit ends the process for the error returned by run(). A nil error
// returns normally. An error with an ExitCode() method (anywhere in its
// chain) exits with that code and prints nothing, since the command
// already reported. Anything else prints "error: err" and exits 1.
func Exit(err error) {
	if err == nil {
		return
	}
	os.Exit(Report(os.Stderr, err))
}

// Report writes the error line for err to w when one is due and
// returns the exit code Exit would use.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return 1
}
