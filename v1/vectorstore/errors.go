package vectorstore

import (
	"errors"
	"fmt"
)

// ErrInvalidMode is returned by New for an unknown Config.Mode.
var ErrInvalidMode = errors.New("invalid mode")

func invalidMode(mode string) error {
	return fmt.Errorf("%w %q: choose %q, %q, %q, or %q",
		ErrInvalidMode, mode, ModeSync, ModeAsync, ModeAtlasMongo, ModeQdrant)
}

// IsInvalidMode reports whether err was caused by an unknown mode.
func IsInvalidMode(err error) bool {
	return errors.Is(err, ErrInvalidMode)
}

// ValidateMode returns an ErrInvalidMode error unless mode is supported.
func ValidateMode(mode string) error {
	switch mode {
	case ModeSync, ModeAsync, ModeAtlasMongo, ModeQdrant:
		return nil
	}
	return invalidMode(mode)
}
