package main

import (
	"errors"
	"vnadmin/internal/pipeline"
	"vnadmin/internal/source"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK       = 0
	exitConfig   = 1
	exitSource   = 2
	exitField    = 3
	exitWrite    = 4
	exitPublish  = 5
	exitNotFound = 6
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// exitCode：显式标注的退出码优先，其次按错误类型归类
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	var fe *source.FieldError
	switch {
	case errors.As(err, &fe):
		return exitField
	case errors.Is(err, source.ErrSource):
		return exitSource
	case errors.Is(err, pipeline.ErrWrite):
		return exitWrite
	case errors.Is(err, pipeline.ErrPublish):
		return exitPublish
	}
	return 1
}
