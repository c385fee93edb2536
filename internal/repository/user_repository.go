package repository

import (
	"context"
	"time"

	"algoritmia_backend/internal/model"

	"gorm.io/gorm"
)

type UserFilter struct {
	Pagination
	Roles          []model.UserRole
	BirthFrom      *time.Time
	BirthTo        *time.Time
	IncludeDeleted bool
}

var userSortColumns = SortColumns{
	"id":        "id",
	"name":      "name",
	"lastName":  "last_name",
	"email":     "email",
	"dni":       "dni",
	"birthDate": "birth_date",
	"createdAt": "created_at",
}

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	return &user, err
}

// FindByIDUnscoped also returns soft-deleted users.
func (r *UserRepository) FindByIDUnscoped(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Unscoped().First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// ExistsByEmail checks soft-deleted rows too, since the unique index does.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	return r.exists(ctx, "email = ?", email, excludeID)
}

func (r *UserRepository) ExistsByDNI(ctx context.Context, dni string, excludeID uint) (bool, error) {
	return r.exists(ctx, "dni = ?", dni, excludeID)
}

func (r *UserRepository) exists(ctx context.Context, cond string, value interface{}, excludeID uint) (bool, error) {
	var count int64
	query := r.DB.WithContext(ctx).Unscoped().Model(&model.User{}).Where(cond, value)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Save(user).Error
}

func (r *UserRepository) SoftDelete(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Delete(user).Error
}

func (r *UserRepository) Restore(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Unscoped().Model(&model.User{}).
		Where("id = ?", id).
		Update("deleted_at", nil).Error
}

func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]model.User, int64, error) {
	p := f.Pagination.Normalized()
	query := r.DB.WithContext(ctx).Model(&model.User{})
	if f.IncludeDeleted {
		query = query.Unscoped()
	}

	if len(f.Roles) > 0 {
		query = query.Where("role IN ?", f.Roles)
	}
	if f.BirthFrom != nil {
		query = query.Where("birth_date >= ?", *f.BirthFrom)
	}
	if f.BirthTo != nil {
		query = query.Where("birth_date <= ?", *f.BirthTo)
	}
	query = applySearch(query, p.Search, "name", "last_name", "dni", "email")

	var users []model.User
	total, err := findPage(query, p, userSortColumns, "id", &users)
	return users, total, err
}
