package services

import (
	"context"
	"sync"

	"github.com/yug-shah0106/accordo-engine/internal/application/common"
)

const (
	defaultHookWorkers = 4
	defaultHookQueue   = 64
)

// HookTask is one fire-and-forget side effect (notification, vendor
// profile update, contract sync)
type HookTask struct {
	Name string
	Run  func(ctx context.Context) error
}

// HookPool runs side-effect hooks off the request's critical path.
// Errors are logged and swallowed; a full queue drops the task rather
// than blocking the pipeline.
type HookPool struct {
	tasks  chan hookJob
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

type hookJob struct {
	ctx  context.Context
	task HookTask
}

// NewHookPool starts a pool with the given bounds. Zero values fall back
// to the defaults.
func NewHookPool(workers, queueSize int) *HookPool {
	if workers <= 0 {
		workers = defaultHookWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultHookQueue
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &HookPool{
		tasks:  make(chan hookJob, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues a hook. The caller's context supplies the logger only;
// hook execution uses the pool's own lifetime so a finished request does
// not cancel its side effects.
func (p *HookPool) Submit(ctx context.Context, task HookTask) {
	logger := common.LoggerFromContext(ctx)
	job := hookJob{ctx: common.WithLogger(p.ctx, logger), task: task}
	select {
	case p.tasks <- job:
	default:
		logger.Log("warn", "hook queue full, dropping task", map[string]interface{}{
			"hook": task.Name,
		})
	}
}

// Shutdown stops accepting work and waits for in-flight hooks
func (p *HookPool) Shutdown() {
	p.closeOnce.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
	p.cancel()
}

func (p *HookPool) worker() {
	defer p.wg.Done()
	for job := range p.tasks {
		p.run(job)
	}
}

func (p *HookPool) run(job hookJob) {
	logger := common.LoggerFromContext(job.ctx)
	defer func() {
		if r := recover(); r != nil {
			logger.Log("error", "hook panicked", map[string]interface{}{
				"hook":  job.task.Name,
				"panic": r,
			})
		}
	}()
	if err := job.task.Run(job.ctx); err != nil {
		logger.Log("warn", "hook failed", map[string]interface{}{
			"hook":  job.task.Name,
			"error": err.Error(),
		})
	}
}
