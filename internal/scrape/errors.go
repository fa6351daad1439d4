package scrape

import "errors"

// ErrParsing marks documents that lack required structure, most commonly a
// usable price. Alternate markup for individual fields is tolerated by the
// selector cascades and never produces this error.
var ErrParsing = errors.New("parsing failure")

// ErrValidation marks assembled quotes that violate range or consistency
// invariants. It is distinct from ErrParsing so callers can apply different
// policies (log-and-skip vs. store-anyway).
var ErrValidation = errors.New("validation failure")
