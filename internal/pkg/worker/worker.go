package worker

import (
	"time"

	"post_audit_service/pkg/logger"

	"go.uber.org/zap"
)

// AuditEvent 审核决定落库后产生的事件
// 由各 Sink 异步消费（审核流水、作者通知），失败重试
type AuditEvent struct {
	PostID      string
	PostTitle   string
	AuthorID    string
	ModeratorID string
	Decision    string // approved, rejected
	Reason      string
	Retry       int // 重试次数
}

// Sink 事件消费方
type Sink interface {
	Name() string
	HandleAuditEvent(e AuditEvent) error
}

// Pool 审核事件工作池
type Pool struct {
	taskQueue  chan AuditEvent
	retryQueue chan AuditEvent
	sinks      []Sink
	workerNum  int
	maxRetry   int
}

func NewPool(sinks []Sink, workerNum, bufferSize int) *Pool {
	return &Pool{
		taskQueue:  make(chan AuditEvent, bufferSize),
		retryQueue: make(chan AuditEvent, bufferSize/2),
		sinks:      sinks,
		workerNum:  workerNum,
		maxRetry:   3, // 最多重试3次
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerNum; i++ {
		go p.worker(i)
	}
	// 启动重试处理协程
	go p.retryWorker()
	logger.Log.Info("audit event pool started", zap.Int("workers", p.workerNum))
}

// Enqueue 非阻塞入队，队列满时丢弃并告警
// 事件属于尽力而为的副作用，不允许反压到审核请求
func (p *Pool) Enqueue(e AuditEvent) {
	select {
	case p.taskQueue <- e:
	default:
		logger.Log.Warn("audit event queue full, event dropped",
			zap.String("post_id", e.PostID),
			zap.String("decision", e.Decision))
	}
}

func (p *Pool) worker(id int) {
	for e := range p.taskQueue {
		if err := p.process(e); err != nil {
			logger.Log.Warn("failed to process audit event",
				zap.Int("worker", id),
				zap.String("post_id", e.PostID),
				zap.Error(err))

			// 如果未达到最大重试次数，加入重试队列
			if e.Retry < p.maxRetry {
				e.Retry++
				select {
				case p.retryQueue <- e:
				default:
					logger.Log.Error("retry queue full, audit event dropped",
						zap.String("post_id", e.PostID))
				}
			} else {
				logger.Log.Error("audit event exceeded max retries, dropped",
					zap.String("post_id", e.PostID),
					zap.String("decision", e.Decision))
			}
		}
	}
}

func (p *Pool) retryWorker() {
	for e := range p.retryQueue {
		// 延迟重试，避免立即重试
		time.Sleep(time.Duration(e.Retry) * time.Second)

		select {
		case p.taskQueue <- e:
		default:
			logger.Log.Error("main queue full, retried audit event dropped",
				zap.String("post_id", e.PostID))
		}
	}
}

func (p *Pool) process(e AuditEvent) error {
	for _, s := range p.sinks {
		if err := s.HandleAuditEvent(e); err != nil {
			logger.Log.Warn("audit event sink failed",
				zap.String("sink", s.Name()),
				zap.String("post_id", e.PostID),
				zap.Error(err))
			return err
		}
	}
	return nil
}
