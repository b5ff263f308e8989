package model

import "time"

// 登録ユーザー
// PasswordHashはbcrypt。JSONに平文は出さない。
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"password_hash"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
