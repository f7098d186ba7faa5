package submit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formwizard/pkg/form"
)

// DefaultSimulatedDelay mimics a round trip to a server.
const DefaultSimulatedDelay = 1500 * time.Millisecond

// Simulated waits Delay and accepts every record.
type Simulated struct {
	Delay time.Duration
	Now   func() time.Time
}

// NewSimulated returns a Simulated submitter. A non-positive delay uses the
// default.
func NewSimulated(delay time.Duration) *Simulated {
	if delay <= 0 {
		delay = DefaultSimulatedDelay
	}
	return &Simulated{Delay: delay}
}

func (s *Simulated) Submit(ctx context.Context, _ form.Record) (Receipt, error) {
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	case <-timer.C:
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Receipt{
		ID:          uuid.NewString(),
		SubmittedAt: now().UTC(),
		Status:      StatusSimulated,
	}, nil
}
