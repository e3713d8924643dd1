package agent

import "errors"

// errStopped is returned by ProcessStep when the cooperative stop flag
// was already raised before the step began.
var errStopped = errors.New("agent: stopped")
