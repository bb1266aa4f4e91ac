package attend

import (
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// TagSighting is one first-seen observation of a tag during a run.
type TagSighting struct {
	ID           uint      `gorm:"primaryKey"`
	Tag          string    `gorm:"index;size:64"`
	Reader       string    `gorm:"index;size:128"`
	SeenAt       time.Time `gorm:"index"`
	Reconciled   bool      `gorm:"index"`
	ReconciledAt *time.Time
}

// Archive keeps a local sqlite record of every sighting and its
// reconciliation state, independent of the remote sheet.
type Archive struct {
	db *gorm.DB
}

func OpenArchive(path string) (*Archive, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&TagSighting{}); err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (a *Archive) RecordSighting(tag string, reader string, at time.Time) error {
	s := TagSighting{Tag: tag, Reader: reader, SeenAt: at.UTC()}
	return a.db.Create(&s).Error
}

// MarkReconciled flags the pending sightings of the given tags.
func (a *Archive) MarkReconciled(tags []string, at time.Time) error {
	if len(tags) == 0 {
		return nil
	}
	t := at.UTC()
	return a.db.Model(&TagSighting{}).
		Where("tag IN ? AND reconciled = ?", tags, false).
		Updates(map[string]any{"reconciled": true, "reconciled_at": &t}).Error
}

// PendingSightings returns sightings not yet marked reconciled, oldest first.
func (a *Archive) PendingSightings() ([]TagSighting, error) {
	var out []TagSighting
	err := a.db.Where("reconciled = ?", false).Order("id asc").Find(&out).Error
	return out, err
}
