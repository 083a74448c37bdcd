package configmgr

import (
	"fmt"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/timeutil"
)

// numberOrDuration is the constraint for integer types along with
// timeutil.Duration.
type numberOrDuration interface {
	~int | ~uint16 | timeutil.Duration
}

// newErrNotPositive returns an error about the value that must be positive but
// isn't.  prop is the name of the property to mention in the error message.
func newErrNotPositive[T numberOrDuration](prop string, v T) (err error) {
	return fmt.Errorf("%s: %w, got %v", prop, errors.ErrNotPositive, v)
}
