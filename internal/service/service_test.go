package service

import (
	"context"
	"testing"
	"time"

	"algoritmia_backend/internal/config"
	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/repository"
	"algoritmia_backend/internal/testutil"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ctx   = context.Background()
	admin = model.Principal{UserID: 1, Role: model.Admin}
)

type services struct {
	db            *gorm.DB
	cfg           *config.Config
	auth          *AuthService
	users         *UserService
	courses       *CourseService
	difficulties  *DifficultyService
	missions      *MissionService
	reinforcement *ReinforcementService
	audit         *AuditService
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		JWT:      config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
		Storage:  config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
	}
}

func setup(t *testing.T) *services {
	t.Helper()

	db := testutil.OpenDB(t)
	cfg := testConfig(t)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	difficultyRepo := repository.NewDifficultyRepository(db)
	missionRepo := repository.NewMissionRepository(db)
	reinforcementRepo := repository.NewReinforcementRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	guard := NewAccessGuard(membershipRepo)

	return &services{
		db:            db,
		cfg:           cfg,
		auth:          NewAuthService(userRepo, nil, cfg),
		users:         NewUserService(db, userRepo, auditRepo, cfg),
		courses:       NewCourseService(db, courseRepo, membershipRepo, userRepo, auditRepo, guard, cfg),
		difficulties:  NewDifficultyService(db, difficultyRepo, membershipRepo, auditRepo, guard),
		missions:      NewMissionService(db, missionRepo, difficultyRepo, auditRepo, guard),
		reinforcement: NewReinforcementService(db, reinforcementRepo, difficultyRepo, auditRepo, guard),
		audit:         NewAuditService(auditRepo, NewStorageService(cfg)),
	}
}

func principal(u *model.User) model.Principal {
	return model.Principal{UserID: u.ID, Role: u.Role}
}

func countRows(t *testing.T, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Unscoped().Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func finalize(t *testing.T, db *gorm.DB, c *model.Course) {
	t.Helper()
	if err := db.Delete(c).Error; err != nil {
		t.Fatalf("finalize course: %v", err)
	}
}
