package models

import (
	"time"

	"github.com/google/uuid"
)

type InvestmentTransaction struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	StartupKey    string    `gorm:"type:varchar(255);not null;index"`
	InvestorKey   string    `gorm:"type:varchar(255);not null;index"`
	Amount        string    `gorm:"type:varchar(100);not null"` // decimal string
	Rail          string    `gorm:"type:varchar(20);not null"`
	ExternalRef   *string   `gorm:"type:varchar(255);index"`
	BlockNumber   *int64
	Status        string  `gorm:"type:varchar(20);not null;index"`
	FailureReason *string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (InvestmentTransaction) TableName() string {
	return "investment_transactions"
}

type OnchainIDMapping struct {
	IdentityKey string `gorm:"type:varchar(255);primaryKey"`
	OnchainID   int64  `gorm:"not null;uniqueIndex"`
	CreatedAt   time.Time
}

func (OnchainIDMapping) TableName() string {
	return "onchain_id_mappings"
}
