package domain

import "errors"

var (
	ErrUpstreamStatus  = errors.New("upstream returned unsuccessful status")
	ErrEmptyCompletion = errors.New("no completion choices in response")
)
