package llm

import "errors"

var errStreamEndedWithoutFinish = errors.New("llm: stream ended without a finish reason")
