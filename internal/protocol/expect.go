package protocol

import (
	"errors"
	"fmt"
)

// ErrUnexpectedFrame is returned by Expect when a different variant arrives
var ErrUnexpectedFrame = errors.New("unexpected frame")

// Expect receives the next frame and requires it to be of type T. Receive
// errors, including io.EOF, are returned unchanged.
func Expect[T Frame](t Transport) (T, error) {
	var want T
	f, err := t.Receive()
	if err != nil {
		return want, err
	}
	got, ok := f.(T)
	if !ok {
		return want, fmt.Errorf("%w: got %s, want %s", ErrUnexpectedFrame, f.Tag(), want.Tag())
	}
	return got, nil
}
