package errors

import (
	"fmt"
	"runtime"
)

// Trace records the caller's file:line on the error. A nil error stays nil.
func Trace(err error) error {
	if err == nil {
		return nil
	}
	e := wrap(err)
	e.trace = append(e.trace, caller(2))
	return e
}

// Traces returns the recorded call sites, innermost first.
func Traces(err error) []string {
	if e, ok := err.(aerr); ok {
		return e.trace
	}
	return nil
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	short := file
	depth := 0
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			short = file[i+1:]
			depth++
			if depth == 2 {
				break
			}
		}
	}
	return fmt.Sprintf("%s:%d", short, line)
}
