package service

import (
	"context"
	"encoding/json"

	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/repository"
	"algoritmia_backend/pkg/monitoring"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
)

// auditEntry describes one mutation. Before or After is nil for creates and
// deletes respectively.
type auditEntry struct {
	Table  string
	RowID  uint
	Op     model.AuditOperation
	Before interface{}
	After  interface{}
}

func snapshot(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// recordAudit writes the entry through repo, which must be bound to the
// transaction of the mutation it describes.
func recordAudit(ctx context.Context, repo *repository.AuditRepository, actor model.Principal, e auditEntry) error {
	before, err := snapshot(e.Before)
	if err != nil {
		return errors.Wrap(err, "snapshot before")
	}
	after, err := snapshot(e.After)
	if err != nil {
		return errors.Wrap(err, "snapshot after")
	}

	entry := &model.AuditLog{
		AffectedTable: e.Table,
		RowID:         e.RowID,
		Operation:     e.Op,
		Before:        before,
		After:         after,
	}
	if actor.UserID > 0 {
		id := actor.UserID
		entry.UserID = &id
	}
	if err := repo.Record(ctx, entry); err != nil {
		return errors.Wrap(err, "record audit")
	}
	monitoring.AuditEntries.WithLabelValues(e.Table, string(e.Op)).Inc()
	return nil
}
