package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeComponent struct {
	name     string
	startErr error
	events   *[]string
}

func (f *fakeComponent) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	*f.events = append(*f.events, "start "+f.name)
	return nil
}

func (f *fakeComponent) Stop() {
	*f.events = append(*f.events, "stop "+f.name)
}

func TestStartAll_StopsInReverseOrder(t *testing.T) {
	var events []string

	stop, err := StartAll(context.Background(), zaptest.NewLogger(t),
		Named{Name: "relayer engine", Component: &fakeComponent{name: "engine", events: &events}},
		Named{Name: "chain watcher", Component: &fakeComponent{name: "watcher", events: &events}},
	)
	require.NoError(t, err)
	stop()

	assert.Equal(t, []string{"start engine", "start watcher", "stop watcher", "stop engine"}, events)
}

func TestStartAll_FailureStopsStartedComponents(t *testing.T) {
	var events []string
	boom := errors.New("checkpoint table missing")

	stop, err := StartAll(context.Background(), zaptest.NewLogger(t),
		Named{Name: "relayer engine", Component: &fakeComponent{name: "engine", events: &events}},
		Named{Name: "chain watcher", Component: &fakeComponent{name: "watcher", startErr: boom, events: &events}},
	)
	require.Error(t, err)
	assert.Nil(t, stop)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "start chain watcher")
	assert.Equal(t, []string{"start engine", "stop engine"}, events)
}
