package database

import (
	"errors"
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/yukikurage/corepm/internal/constants"
	"github.com/yukikurage/corepm/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// schemaModels lists every persisted model in dependency order.
func schemaModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Theme{},
		&models.Release{},
		&models.ProjectType{},
		&models.ProjectTypeField{},
		&models.TaskType{},
		&models.TaskTypeField{},
		&models.Project{},
		&models.ProjectDependency{},
		&models.Task{},
		&models.TaskDependency{},
		&models.GitHubLink{},
		&models.DisplayIDSequence{},
	}
}

type secondaryIndex struct {
	table   string
	name    string
	columns string
}

// secondaryIndexes are the indexes used by listing and bulk scans.
var secondaryIndexes = []secondaryIndex{
	{"tasks", "idx_tasks_updated_at", "updated_at"},
	{"tasks", "idx_tasks_type_status", "task_type_id, status"},
	{"tasks", "idx_tasks_team_status", "team_id, status"},
	{"projects", "idx_projects_updated_at", "updated_at"},
	{"projects", "idx_projects_type_status", "project_type_id, status"},
}

// Migrations returns the ordered list of schema migrations.
func Migrations(log *zap.Logger) []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202501010001_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(schemaModels()...)
			},
			Rollback: func(tx *gorm.DB) error {
				all := schemaModels()
				for i := len(all) - 1; i >= 0; i-- {
					if err := tx.Migrator().DropTable(all[i]); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			ID: "202501010002_secondary_indexes",
			Migrate: func(tx *gorm.DB) error {
				return addIndexes(tx, log)
			},
			Rollback: func(tx *gorm.DB) error {
				for _, idx := range secondaryIndexes {
					if tx.Migrator().HasIndex(idx.table, idx.name) {
						if err := tx.Migrator().DropIndex(idx.table, idx.name); err != nil {
							return err
						}
					}
				}
				return nil
			},
		},
		{
			ID: "202501010003_seed_unassigned_team",
			Migrate: func(tx *gorm.DB) error {
				return seedUnassignedTeam(tx, log)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Where("slug = ?", constants.UnassignedTeamSlug).Delete(&models.Team{}).Error
			},
		},
	}
}

// Migrate runs all pending migrations.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	m := gormigrate.New(db, gormigrate.DefaultOptions, Migrations(log))
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database migrations completed")
	return nil
}

// addIndexes creates the secondary indexes that do not exist yet
func addIndexes(db *gorm.DB, log *zap.Logger) error {
	for _, idx := range secondaryIndexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("table", idx.table))
	}

	return nil
}

// seedUnassignedTeam creates the reserved team that receives orphaned tasks,
// together with a default task type so reassigned tasks always have a workflow.
func seedUnassignedTeam(db *gorm.DB, log *zap.Logger) error {
	var team models.Team
	err := db.Where("slug = ?", constants.UnassignedTeamSlug).First(&team).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up unassigned team: %w", err)
	}

	team = models.Team{
		Name:        constants.UnassignedTeamName,
		Slug:        constants.UnassignedTeamSlug,
		Description: "Holds tasks whose team was deleted",
		Color:       "#9e9e9e",
	}
	if err := db.Create(&team).Error; err != nil {
		return fmt.Errorf("failed to create unassigned team: %w", err)
	}

	taskType := models.TaskType{
		Name:     "Task",
		Slug:     "task",
		TeamID:   team.ID,
		Workflow: datatypes.JSONSlice[string]{"New", "In Progress", "Done"},
	}
	if err := db.Create(&taskType).Error; err != nil {
		return fmt.Errorf("failed to create unassigned task type: %w", err)
	}

	log.Info("seeded unassigned team", zap.Uint64("team_id", team.ID))
	return nil
}
