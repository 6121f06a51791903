package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LoadRun is the audit row written for every table load.
type LoadRun struct {
	ID          uint   `gorm:"primaryKey;not null;autoIncrement"`
	RunID       string `gorm:"type:varchar(36);not null;index"`
	TargetTable string `gorm:"type:varchar(64);not null"`
	Policy      string `gorm:"type:varchar(16);not null"`
	RowCount    int64  `gorm:"not null"`
	ColumnNames datatypes.JSON
	LoadedAt    time.Time `gorm:"not null"`
}

func (r *LoadRun) CreateLoadRun(tx *gorm.DB) error {
	result := tx.Create(r)
	if result.Error != nil {
		dbError.Inc()
		return result.Error
	}
	loadRunsRecorded.Inc()
	return nil
}

// LoadRunsForTable returns the audit rows of table, latest first.
func LoadRunsForTable(tx *gorm.DB, table string) ([]LoadRun, error) {
	var runs []LoadRun
	err := tx.Where("target_table = ?", table).Order("loaded_at desc, id desc").Find(&runs).Error
	return runs, err
}
