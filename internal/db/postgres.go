package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/types"
	"github.com/mtnvale/stridecoach-backend/internal/utils"
)

type DatabaseService struct {
	db       *gorm.DB
	log      *logger.Logger
	postgres bool
}

func NewDatabaseService(log *logger.Logger) (*DatabaseService, error) {
	serviceLog := log.With("service", "DatabaseService")

	driver := strings.ToLower(utils.GetEnv("DB_DRIVER", "postgres", log))
	if driver == "sqlite" {
		path := utils.GetEnv("SQLITE_PATH", "stridecoach.db", log)
		serviceLog.Info("Opening sqlite database", "path", path)
		gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return &DatabaseService{db: gdb, log: serviceLog, postgres: false}, nil
	}

	host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	port := utils.GetEnv("POSTGRES_PORT", "5432", log)
	user := utils.GetEnv("POSTGRES_USER", "postgres", log)
	password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	name := utils.GetEnv("POSTGRES_NAME", "stridecoach", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &DatabaseService{db: gdb, log: serviceLog, postgres: true}, nil
}

func (s *DatabaseService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Team{},
		&types.Submission{},
		&types.Review{},
		&types.Comment{},
		&types.Announcement{},
		&types.GearItem{},
		&types.Resource{},
		&types.CoachingApplication{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if !s.postgres {
		return nil
	}
	s.log.Info("Configuring foreign key relationships...")
	constraints := []struct {
		name string
		stmt string
	}{
		{
			name: "fk_user_token_user_id",
			stmt: `ALTER TABLE "user_token" ADD CONSTRAINT "fk_user_token_user_id" FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`,
		},
		{
			name: "fk_submission_team_id",
			stmt: `ALTER TABLE "submission" ADD CONSTRAINT "fk_submission_team_id" FOREIGN KEY ("team_id") REFERENCES "team"("id") ON DELETE CASCADE`,
		},
		{
			name: "fk_review_submission_id",
			stmt: `ALTER TABLE "review" ADD CONSTRAINT "fk_review_submission_id" FOREIGN KEY ("submission_id") REFERENCES "submission"("id") ON DELETE CASCADE`,
		},
		{
			name: "fk_comment_submission_id",
			stmt: `ALTER TABLE "comment" ADD CONSTRAINT "fk_comment_submission_id" FOREIGN KEY ("submission_id") REFERENCES "submission"("id") ON DELETE CASCADE`,
		},
	}
	for _, c := range constraints {
		var exists int64
		s.db.Raw(`SELECT COUNT(*) FROM pg_constraint WHERE conname = ?`, c.name).Scan(&exists)
		if exists > 0 {
			continue
		}
		if err := s.db.Exec(c.stmt).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *DatabaseService) DB() *gorm.DB {
	return s.db
}
