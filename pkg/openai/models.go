package openai

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/dskvich/webchat-backend/pkg/domain"
)

// RetryPolicy controls how failed completion calls are repeated. A call is retried only
// when the provider answered with an unsuccessful HTTP status. The wait before retry n
// (0-based) is Multiplier*2^n clamped to [MinWait, MaxWait].
type RetryPolicy struct {
	Attempts   int
	MinWait    time.Duration
	MaxWait    time.Duration
	Multiplier time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	Attempts:   5,
	MinWait:    2 * time.Second,
	MaxWait:    60 * time.Second,
	Multiplier: time.Second,
}

func (p RetryPolicy) backoff(min, max time.Duration, attemptNum int, _ *http.Response) time.Duration {
	wait := time.Duration(float64(p.Multiplier) * math.Pow(2, float64(attemptNum)))
	if wait < min {
		wait = min
	}
	if wait > max || wait <= 0 {
		wait = max
	}
	return wait
}

// StatusError is returned once the provider kept answering with an unsuccessful status
// after all attempts.
type StatusError struct {
	StatusCode int
	Message    string
	err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", domain.ErrUpstreamStatus, e.StatusCode, e.Message)
}

func (e *StatusError) Is(target error) bool { return target == domain.ErrUpstreamStatus }

func (e *StatusError) Unwrap() error { return e.err }
