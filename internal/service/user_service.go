package service

import (
	"context"

	"algoritmia_backend/internal/config"
	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/repository"
	"algoritmia_backend/internal/util"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type UserService struct {
	DB        *gorm.DB
	UserRepo  *repository.UserRepository
	AuditRepo *repository.AuditRepository
	Cfg       *config.Config
}

func NewUserService(db *gorm.DB, userRepo *repository.UserRepository, auditRepo *repository.AuditRepository, cfg *config.Config) *UserService {
	return &UserService{
		DB:        db,
		UserRepo:  userRepo,
		AuditRepo: auditRepo,
		Cfg:       cfg,
	}
}

func (s *UserService) List(ctx context.Context, f repository.UserFilter) ([]model.User, int64, error) {
	users, total, err := s.UserRepo.List(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list users")
	}
	return users, total, nil
}

// Get fails with ErrUserNotFound for soft-deleted users too.
func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return user, nil
}

func (s *UserService) checkUnique(ctx context.Context, email, dni string, excludeID uint) error {
	if email != "" {
		taken, err := s.UserRepo.ExistsByEmail(ctx, email, excludeID)
		if err != nil {
			return errors.Wrap(err, "check email")
		}
		if taken {
			return util.ErrEmailRegistered
		}
	}
	if dni != "" {
		taken, err := s.UserRepo.ExistsByDNI(ctx, dni, excludeID)
		if err != nil {
			return errors.Wrap(err, "check dni")
		}
		if taken {
			return util.ErrDNIRegistered
		}
	}
	return nil
}

// conflictOr maps a unique index violation that slipped past checkUnique.
func conflictOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(util.ErrConflict, msg)
	}
	return errors.Wrap(err, msg)
}

func (s *UserService) Create(ctx context.Context, actor model.Principal, req dto.CreateUserRequest) (*model.User, error) {
	user := req.ToModel()
	if err := s.checkUnique(ctx, user.Email, user.DNI, 0); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password, s.Cfg.Security.BcryptCost)
	if err != nil {
		return nil, err
	}
	user.Password = hash

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.UserRepo.WithTx(tx).Create(ctx, user); err != nil {
			return conflictOr(err, "create user")
		}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "users", RowID: user.ID, Op: model.AuditCreate, After: user,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, actor model.Principal, id uint, req dto.UpdateUserRequest) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *user

	req.Apply(user)
	var email, dni string
	if user.Email != before.Email {
		email = user.Email
	}
	if user.DNI != before.DNI {
		dni = user.DNI
	}
	if err := s.checkUnique(ctx, email, dni, user.ID); err != nil {
		return nil, err
	}

	if req.Password != nil {
		if user.Password, err = HashPassword(*req.Password, s.Cfg.Security.BcryptCost); err != nil {
			return nil, err
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.UserRepo.WithTx(tx).Update(ctx, user); err != nil {
			return conflictOr(err, "update user")
		}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "users", RowID: user.ID, Op: model.AuditUpdate, Before: before, After: user,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete soft-deletes the user. Deleting an already deleted user changes
// nothing and succeeds.
func (s *UserService) Delete(ctx context.Context, actor model.Principal, id uint) error {
	user, err := s.UserRepo.FindByIDUnscoped(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrUserNotFound
	}
	if err != nil {
		return errors.Wrap(err, "find user")
	}
	if user.IsDeleted() {
		return nil
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.UserRepo.WithTx(tx).SoftDelete(ctx, user); err != nil {
			return errors.Wrap(err, "delete user")
		}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "users", RowID: user.ID, Op: model.AuditDelete, Before: user,
		})
	})
}

// Restore clears the soft delete. Restoring a live user is a no-op.
func (s *UserService) Restore(ctx context.Context, actor model.Principal, id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByIDUnscoped(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	if !user.IsDeleted() {
		return user, nil
	}
	before := *user

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.UserRepo.WithTx(tx).Restore(ctx, user.ID); err != nil {
			return errors.Wrap(err, "restore user")
		}
		user.DeletedAt = gorm.DeletedAt{}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "users", RowID: user.ID, Op: model.AuditUpdate, Before: before, After: user,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
