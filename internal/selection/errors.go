package selection

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks a structurally malformed selection request. No
// mask is produced for such a request.
var ErrInvalidInput = errors.New("selection: invalid input")

// ErrInvalidRegion marks a selection region that cannot be classified
// against, such as a polygon with fewer than three vertices.
// errors.Is(ErrInvalidRegion, ErrInvalidInput) reports true.
var ErrInvalidRegion = fmt.Errorf("%w: invalid region", ErrInvalidInput)
