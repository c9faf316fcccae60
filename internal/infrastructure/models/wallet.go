package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WalletAssociation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	IdentityKey string    `gorm:"type:varchar(255);not null;index"`
	Address     string    `gorm:"type:varchar(64);not null;index"` // lower-cased hex
	Permanent   bool      `gorm:"default:false"`
	Provenance  string    `gorm:"type:varchar(32);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (WalletAssociation) TableName() string {
	return "wallet_associations"
}

type WalletSyncTask struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	IdentityKey   string    `gorm:"type:varchar(255);not null;index"`
	Address       string    `gorm:"type:varchar(64)"` // empty clears the profile wallet
	Status        string    `gorm:"type:varchar(20);not null;index"`
	Attempts      int       `gorm:"not null;default:0"`
	NextAttemptAt time.Time `gorm:"not null;index"`
	LastError     *string   `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (WalletSyncTask) TableName() string {
	return "wallet_sync_tasks"
}
