package performance

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord matches any record validation failure.
var ErrInvalidRecord = errors.New("invalid performance record")

var (
	errMissingPartner     = fmt.Errorf("%w: missing partner id", ErrInvalidRecord)
	errNoApplications     = fmt.Errorf("%w: application count must be positive", ErrInvalidRecord)
	errApprovedOutOfRange = fmt.Errorf("%w: approved count outside [0, total]", ErrInvalidRecord)
)
