package models

import "time"

type Account struct {
	IdentityKey   string  `gorm:"type:varchar(255);primaryKey"`
	AccountKind   string  `gorm:"type:varchar(20);not null"`
	Name          string  `gorm:"type:varchar(255)"`
	Role          string  `gorm:"type:varchar(20)"`
	OwnerKey      *string `gorm:"type:varchar(255);index"` // startups only
	WalletAddress *string `gorm:"type:varchar(64)"`
	PaymentID     *string `gorm:"type:varchar(255)"`
	PaymentQRURL  *string `gorm:"column:payment_qr_url;type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Account) TableName() string {
	return "accounts"
}
