package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"talent_server/config"
	"talent_server/internal/stream"
	"talent_server/pkg/logger"

	"github.com/rs/zerolog"
)

const pendingReportInterval = time.Minute

// Worker executes side effects queued by API instances.
type Worker struct {
	consumer *stream.Consumer
	stream   *stream.RedisStream
	source   string
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	zlog     zerolog.Logger
}

func NewWorker(cfg *config.Config) (*Worker, func(), error) {
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		return nil, nil, err
	}
	if deps.EffectStream == nil {
		cleanup()
		return nil, nil, fmt.Errorf("worker requires Redis")
	}

	zlog := logger.Component("worker")
	consumer := stream.NewConsumer(deps.EffectStream, deps.Inline, cfg.EffectStream, cfg.WorkerID, zlog)

	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		consumer: consumer,
		stream:   deps.EffectStream,
		source:   cfg.EffectStream,
		ctx:      ctx,
		cancel:   cancel,
		zlog:     zlog,
	}
	return w, cleanup, nil
}

// Start blocks until Stop is called.
func (w *Worker) Start() {
	if err := w.consumer.Start(w.ctx); err != nil {
		w.zlog.Error().Err(err).Msg("effect consumer failed to start")
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.reportPending()
	}()

	<-w.ctx.Done()
}

func (w *Worker) Stop() {
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		w.zlog.Warn().Msg("worker stop timed out")
	}
}

func (w *Worker) reportPending() {
	ticker := time.NewTicker(pendingReportInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			n, err := w.stream.Pending(w.ctx, w.source)
			if err != nil {
				w.zlog.Warn().Err(err).Msg("pending count failed")
				continue
			}
			if n > 0 {
				w.zlog.Info().Int64("pending", n).Msg("effects awaiting acknowledgement")
			}
		}
	}
}
