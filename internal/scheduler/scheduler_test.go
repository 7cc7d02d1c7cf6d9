package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRunsJobs(t *testing.T) {
	var ok, failing atomic.Int32
	s, err := Start(context.Background(),
		Job{Name: "tick", Every: 20 * time.Millisecond, Run: func(context.Context) error {
			ok.Add(1)
			return nil
		}},
		Job{Name: "broken", Every: 20 * time.Millisecond, Run: func(context.Context) error {
			failing.Add(1)
			return errors.New("boom")
		}},
		Job{Name: "disabled", Every: 0, Run: func(context.Context) error { return nil }},
	)
	require.NoError(t, err)
	defer func() { _ = s.Shutdown() }()

	assert.Len(t, s.Jobs(), 2)
	assert.Eventually(t, func() bool { return ok.Load() >= 2 && failing.Load() >= 2 },
		2*time.Second, 10*time.Millisecond)
}
