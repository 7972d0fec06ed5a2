package audit

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Run is one reconciliation run.
type Run struct {
	ID                 string `gorm:"primaryKey;size:36"`
	File               string
	Location           string
	Phase              string
	PriceAttempted     int
	PriceSucceeded     int
	InventoryAttempted int
	InventorySucceeded int
	SkippedRows        int
	StartedAt          time.Time
	FinishedAt         *time.Time
}

// BatchResult is the outcome of one remote write call within a run.
type BatchResult struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"index;size:36"`
	Kind      string `gorm:"size:16"` // price or inventory
	TargetID  string
	Size      int
	OK        bool
	Error     string
	CreatedAt time.Time
}

// Summary carries the final counters of a run.
type Summary struct {
	PriceAttempted     int
	PriceSucceeded     int
	InventoryAttempted int
	InventorySucceeded int
	SkippedRows        int
}

// Connect opens the audit database and migrates the schema. The sqlite
// driver is the default; mysql is available for shared setups.
func Connect(cfg Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "mysql":
		userInfo := url.UserPassword(cfg.User, cfg.Password).String()
		dsn := fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			userInfo, cfg.Host, cfg.Port, cfg.Name)
		db, err = gorm.Open(mysql.Open(dsn), gormConfig)
	default:
		db, err = gorm.Open(sqlite.Open(cfg.Path), gormConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	if err := db.AutoMigrate(&Run{}, &BatchResult{}); err != nil {
		return nil, fmt.Errorf("failed to migrate audit schema: %w", err)
	}
	return db, nil
}

// Store persists the audit trail of runs and their write batches.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store on an open connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// StartRun records the beginning of a run and returns its id.
func (s *Store) StartRun(ctx context.Context, file, location string) (string, error) {
	run := Run{
		ID:        uuid.NewString(),
		File:      file,
		Location:  location,
		Phase:     "started",
		StartedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return "", err
	}
	return run.ID, nil
}

// RecordBatch records the outcome of one write call.
func (s *Store) RecordBatch(ctx context.Context, runID, kind, targetID string, size int, ok bool, errText string) error {
	batch := BatchResult{
		RunID:     runID,
		Kind:      kind,
		TargetID:  targetID,
		Size:      size,
		OK:        ok,
		Error:     errText,
		CreatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Create(&batch).Error
}

// FinishRun records the terminal phase and final counters of a run.
func (s *Store) FinishRun(ctx context.Context, runID, phase string, summary Summary) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&Run{}).Where("id = ?", runID).Updates(map[string]any{
		"phase":               phase,
		"price_attempted":     summary.PriceAttempted,
		"price_succeeded":     summary.PriceSucceeded,
		"inventory_attempted": summary.InventoryAttempted,
		"inventory_succeeded": summary.InventorySucceeded,
		"skipped_rows":        summary.SkippedRows,
		"finished_at":         &now,
	}).Error
}
