package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type roomRecord struct {
	Slug      string    `gorm:"primaryKey;type:varchar(128)"`
	Data      string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (roomRecord) TableName() string { return "rooms" }

type archiveRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Room      string    `gorm:"index;type:varchar(128);not null"`
	PBN       string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (archiveRecord) TableName() string { return "board_archive" }

// SQL keeps one row per room holding the encoded room, and one row per
// archived board.
type SQL struct {
	db *gorm.DB
}

func NewSQL(dsn string) (*SQL, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return NewSQLFromDB(db)
}

// NewSQLFromDB migrates the room tables on an open connection.
func NewSQLFromDB(db *gorm.DB) (*SQL, error) {
	if err := db.AutoMigrate(&roomRecord{}, &archiveRecord{}); err != nil {
		return nil, fmt.Errorf("migrate room tables: %w", err)
	}
	return &SQL{db: db}, nil
}

func (s *SQL) Load(ctx context.Context, name string) (*Room, error) {
	key, err := Key(name)
	if err != nil {
		return nil, err
	}
	var rec roomRecord
	err = s.db.WithContext(ctx).Where("slug = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newRoom(name), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", name, err)
	}
	return decode([]byte(rec.Data))
}

func (s *SQL) Save(ctx context.Context, r *Room) error {
	key, err := Key(r.Name)
	if err != nil {
		return err
	}
	r.UpdatedAt = time.Now().UTC()
	data, err := encode(r)
	if err != nil {
		return err
	}
	rec := roomRecord{Slug: key, Data: string(data)}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("save room %s: %w", r.Name, err)
	}
	return nil
}

func (s *SQL) PushArchive(ctx context.Context, name, pbn string) error {
	key, err := Key(name)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&archiveRecord{Room: key, PBN: pbn}).Error; err != nil {
			return fmt.Errorf("archive board for %s: %w", name, err)
		}
		return evict(tx, key)
	})
}

// evict deletes everything older than the newest ArchiveLimit boards.
func evict(tx *gorm.DB, key string) error {
	var stale []uint
	err := tx.Model(&archiveRecord{}).
		Where("room = ?", key).
		Order("id DESC").
		Offset(ArchiveLimit).
		Pluck("id", &stale).Error
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}
	return tx.Delete(&archiveRecord{}, stale).Error
}

func (s *SQL) Archive(ctx context.Context, name string) ([]string, error) {
	key, err := Key(name)
	if err != nil {
		return nil, err
	}
	var boards []string
	err = s.db.WithContext(ctx).Model(&archiveRecord{}).
		Where("room = ?", key).
		Order("id DESC").
		Limit(ArchiveLimit).
		Pluck("pbn", &boards).Error
	if err != nil {
		return nil, fmt.Errorf("read archive for %s: %w", name, err)
	}
	return boards, nil
}

func (s *SQL) ReplaceArchive(ctx context.Context, name string, boards []string) error {
	key, err := Key(name)
	if err != nil {
		return err
	}
	boards = trim(boards)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room = ?", key).Delete(&archiveRecord{}).Error; err != nil {
			return err
		}
		// Oldest first so the newest board gets the highest id.
		for i := len(boards) - 1; i >= 0; i-- {
			if err := tx.Create(&archiveRecord{Room: key, PBN: boards[i]}).Error; err != nil {
				return fmt.Errorf("replace archive for %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *SQL) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
