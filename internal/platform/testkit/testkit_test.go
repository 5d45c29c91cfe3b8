package testkit

import (
	"errors"
	"testing"
)

func TestMustPanic(t *testing.T) {
	MustPanic(t, func() { panic("boom") })
}

func TestMustNoErrAndMustErr(t *testing.T) {
	MustNoErr(t, nil)
	MustErr(t, errors.New("x"))
}

func TestMustContain(t *testing.T) {
	MustContain(t, "hello world", "world")
}
