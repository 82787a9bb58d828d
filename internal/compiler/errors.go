package compiler

import (
	"errors"
	"fmt"
)

// Configuration error codes (R100-R199). All of these are
// construction-time failures: the engine object is simply not produced.
const (
	ErrCodeBadPattern         = "R101" // regular expression does not compile
	ErrCodeBadTemplate        = "R102" // replacement references an undefined group
	ErrCodeMalformedLine      = "R103" // unrecognized declaration line
	ErrCodeDuplicateSeparator = "R104" // more than one tokenizer pattern
	ErrCodeDuplicateMeta      = "R105" // more than one meta-info line
	ErrCodeUndefinedGroup     = "R106" // >N before #N was defined
	ErrCodeDuplicateGroup     = "R107" // #N defined twice in one file
	ErrCodeUnterminatedGroup  = "R108" // #N body never closed by a bare #
	ErrCodeModuleNotFound     = "R109" // external module cannot be located
	ErrCodeModuleCycle        = "R110" // modules reference each other
	ErrCodeIncludeNotFound    = "R111" // <FILE cannot be read
	ErrCodeIncludeCycle       = "R112" // include chain loops
)

// ConfigError is a rule-text configuration error with a stable code and
// a file/line position where one is known.
type ConfigError struct {
	Code    string
	File    string
	Line    int
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("[%s] %s:%d: %s", e.Code, e.File, e.Line, msg)
	}
	if e.File != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.File, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is (or wraps) a ConfigError with the
// given code.
func HasCode(err error, code string) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
