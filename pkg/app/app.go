// Package app defines the runtime contracts shared by the relayer binaries.
//
// A Runner is a whole process, started from cmd/*. Components are the long
// running parts inside it, such as the chain watcher and the settlement engine,
// which must start in dependency order and stop in reverse.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Runner represents a runnable application component.
type Runner interface {
	Run() error
}

// Component is a background service with an explicit lifecycle.
type Component interface {
	Start(ctx context.Context) error
	Stop()
}

// Named pairs a component with the name used in lifecycle logs.
type Named struct {
	Name      string
	Component Component
}

// StartAll starts components in order. If one fails to start, the ones
// already running are stopped before the error is returned. The returned
// function stops every component in reverse order.
func StartAll(ctx context.Context, logger *zap.Logger, components ...Named) (func(), error) {
	started := make([]Named, 0, len(components))
	stopAll := func() {
		for i := len(started) - 1; i >= 0; i-- {
			logger.Debug("Stopping component", zap.String("component", started[i].Name))
			started[i].Component.Stop()
		}
	}

	for _, c := range components {
		if err := c.Component.Start(ctx); err != nil {
			stopAll()
			return nil, fmt.Errorf("start %s: %w", c.Name, err)
		}
		logger.Debug("Component started", zap.String("component", c.Name))
		started = append(started, c)
	}
	return stopAll, nil
}
