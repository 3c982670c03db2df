package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"
)

func TestWorkerMustRunTreatsCancellationAsClean(t *testing.T) {
	t.Parallel()

	r := &WorkerRunner{runFn: func(*dig.Container) error { return context.Canceled }}
	assert.NotPanics(t, func() { r.MustRun(nil) })
}

func TestWorkerMustRunPanicsOnFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("consumer group dead")
	r := &WorkerRunner{runFn: func(*dig.Container) error { return boom }}

	defer func() {
		got := recover()
		require.NotNil(t, got)
		assert.ErrorIs(t, got.(error), boom)
	}()
	r.MustRun(nil)
}
