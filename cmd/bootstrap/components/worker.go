package components

import (
	"context"

	"gin-clean-starter/internal/infra/queue"
	"gin-clean-starter/internal/pkg/config"
	"gin-clean-starter/internal/usecase/commands"
	"gin-clean-starter/internal/worker"

	"go.uber.org/fx"
)

// WorkerModule starts the Claim Worker pool (C8) alongside the HTTP
// server, draining the Claim Queue for every non-premium claim spec.md
// §4.6 step 8 defers to it.
var WorkerModule = fx.Module("worker",
	fx.Provide(NewWorkerPool),
	fx.Invoke(registerWorkerLifecycle),
)

func NewWorkerPool(q *queue.Queue, claims commands.ClaimCommands, cfg config.Config) *worker.Pool {
	return worker.New(q, claims, cfg.Queue)
}

func registerWorkerLifecycle(lc fx.Lifecycle, pool *worker.Pool) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			pool.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			pool.Stop()
			return nil
		},
	})
}
