package service

import (
	"post_audit_service/internal/domain/post/model"
	"post_audit_service/internal/domain/post/repository"
	"post_audit_service/internal/pkg/push"
	"post_audit_service/internal/pkg/worker"
)

// auditTrailSink 把审核决定写入 post_audits 流水表
type auditTrailSink struct {
	repo repository.PostRepository
}

func NewAuditTrailSink(repo repository.PostRepository) worker.Sink {
	return &auditTrailSink{repo: repo}
}

func (s *auditTrailSink) Name() string {
	return "audit_trail"
}

func (s *auditTrailSink) HandleAuditEvent(e worker.AuditEvent) error {
	return s.repo.CreateAuditRecord(&model.AuditRecord{
		PostID:      e.PostID,
		ModeratorID: e.ModeratorID,
		Decision:    e.Decision,
		Reason:      e.Reason,
	})
}

// pushSink 把审核结果推送给作者
type pushSink struct {
	notifier push.Notifier
}

func NewPushSink(notifier push.Notifier) worker.Sink {
	return &pushSink{notifier: notifier}
}

func (s *pushSink) Name() string {
	return "push"
}

func (s *pushSink) HandleAuditEvent(e worker.AuditEvent) error {
	return s.notifier.NotifyAuditResult(e.AuthorID, e.PostTitle, e.Decision == "approved", e.Reason)
}
