package entity

import "time"

type User struct {
	UserId       int64     `gorm:"column:user_id;primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;type:varchar(100)"`
	Email        string    `gorm:"column:email;type:varchar(100);index:idx_users_email"`
	Gender       string    `gorm:"column:gender;type:varchar(10)"`
	Location     string    `gorm:"column:location;type:varchar(100)"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(100)"`
	CreatedAt    time.Time `gorm:"column:created_at;type:datetime"`
}

func (User) TableName() string { return "users" }
