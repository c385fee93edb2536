package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/repository"
	"algoritmia_backend/internal/util"
	"algoritmia_backend/pkg/logger"
	"algoritmia_backend/pkg/tracing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type AuditService struct {
	AuditRepo *repository.AuditRepository
	Storage   *StorageService
}

func NewAuditService(auditRepo *repository.AuditRepository, storage *StorageService) *AuditService {
	return &AuditService{AuditRepo: auditRepo, Storage: storage}
}

func (s *AuditService) List(ctx context.Context, f repository.AuditFilter) ([]model.AuditLog, int64, error) {
	logs, total, err := s.AuditRepo.List(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list audit logs")
	}
	return logs, total, nil
}

// Export writes the matching rows as JSON lines to storage.
func (s *AuditService) Export(ctx context.Context, actor model.Principal, f repository.AuditFilter) (*dto.ExportResult, error) {
	ctx, end := tracing.StartSpan(ctx, "audit.export", attribute.String("audit.table", f.Table))
	defer end()

	logs, err := s.AuditRepo.ListAll(ctx, f, util.MaxExportRows)
	if err != nil {
		return nil, errors.Wrap(err, "load audit logs")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range logs {
		if err := enc.Encode(&logs[i]); err != nil {
			return nil, errors.Wrap(err, "encode audit log")
		}
	}

	name := fmt.Sprintf("exports/audit-%s-%s.jsonl", time.Now().UTC().Format("20060102T150405"), uuid.NewString())
	url, err := s.Storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "application/x-ndjson")
	if err != nil {
		return nil, errors.Wrap(err, "upload audit export")
	}

	logger.Log.Info("Audit logs exported",
		zap.Uint("user_id", actor.UserID),
		zap.Int("rows", len(logs)),
		zap.String("object", name),
	)
	return &dto.ExportResult{URL: url, Count: len(logs)}, nil
}
