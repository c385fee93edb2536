package repository

import (
	"context"
	"time"

	"algoritmia_backend/internal/model"

	"gorm.io/gorm"
)

type AuditFilter struct {
	Pagination
	Table     string
	Operation model.AuditOperation
	UserID    uint
	From      *time.Time
	To        *time.Time
}

var auditSortColumns = SortColumns{
	"id":        "id",
	"createdAt": "created_at",
	"table":     "affected_table",
}

type AuditRepository struct {
	DB *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{DB: db}
}

func (r *AuditRepository) WithTx(tx *gorm.DB) *AuditRepository {
	return &AuditRepository{DB: tx}
}

func (r *AuditRepository) Record(ctx context.Context, entry *model.AuditLog) error {
	return r.DB.WithContext(ctx).Create(entry).Error
}

func (r *AuditRepository) filtered(ctx context.Context, f AuditFilter) *gorm.DB {
	query := r.DB.WithContext(ctx).Model(&model.AuditLog{})
	if f.Table != "" {
		query = query.Where("affected_table = ?", f.Table)
	}
	if f.Operation != "" {
		query = query.Where("operation = ?", f.Operation)
	}
	if f.UserID > 0 {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("created_at < ?", *f.To)
	}
	return applySearch(query, f.Pagination.Normalized().Search, "affected_table", "operation")
}

func (r *AuditRepository) List(ctx context.Context, f AuditFilter) ([]model.AuditLog, int64, error) {
	p := f.Pagination
	if p.Order == "" {
		p.Order = "desc"
	}
	p = p.Normalized()

	var logs []model.AuditLog
	total, err := findPage(r.filtered(ctx, f), p, auditSortColumns, "createdAt", &logs)
	return logs, total, err
}

// ListAll returns up to limit matching rows, oldest first.
func (r *AuditRepository) ListAll(ctx context.Context, f AuditFilter, limit int) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := r.filtered(ctx, f).Order("id asc").Limit(limit).Find(&logs).Error
	return logs, err
}
