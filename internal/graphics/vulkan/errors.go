package vulkan

import (
	"errors"
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// ResultError is a failed Vulkan call. Op names the entry point.
type ResultError struct {
	Op     string
	Result vk.Result
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s failed: %v (%d)", e.Op, vk.Error(e.Result), int32(e.Result))
}

// Unwrap yields the vulkan-go error for the result.
func (e *ResultError) Unwrap() error { return vk.Error(e.Result) }

// Check turns a Vulkan result into an error. vk.Success yields nil.
func Check(op string, res vk.Result) error {
	if res == vk.Success {
		return nil
	}
	return &ResultError{Op: op, Result: res}
}

// IsResult reports whether err wraps a ResultError carrying res.
func IsResult(err error, res vk.Result) bool {
	var re *ResultError
	return errors.As(err, &re) && re.Result == res
}
