package utils

import (
	"sync"

	"go.uber.org/zap"

	logger "github.com/Gopher0727/GroupChat/middleware/log"
)

// WorkerPool 固定数量的 worker 从有界队列中取任务执行
type WorkerPool struct {
	jobs    chan func()
	workers int
	log     *logger.Logger
	wg      sync.WaitGroup
	quit    chan struct{}
	once    sync.Once
}

// NewWorkerPool 创建协程池，需调用 Start 后才会执行任务
func NewWorkerPool(workers, queueSize int, log *logger.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &WorkerPool{
		jobs:    make(chan func(), queueSize),
		workers: workers,
		log:     log,
		quit:    make(chan struct{}),
	}
}

// Start 启动 worker
func (p *WorkerPool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
	p.log.Info("worker pool started", logger.Count(p.workers))
}

func (p *WorkerPool) run(id int) {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobs:
			p.execute(id, job)
		case <-p.quit:
			return
		}
	}
}

// execute 单个任务 panic 不会拖垮 worker
func (p *WorkerPool) execute(id int, job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("worker recovered from panic", zap.Int("worker", id), zap.Any("panic", r))
		}
	}()
	job()
}

// Submit 提交任务；队列满时阻塞直到有空位
func (p *WorkerPool) Submit(job func()) {
	p.jobs <- job
}

// Stop 通知所有 worker 退出并等待；队列中未执行的任务被丢弃
func (p *WorkerPool) Stop() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}
