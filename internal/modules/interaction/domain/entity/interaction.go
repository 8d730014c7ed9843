package entity

import "time"

// UserView 浏览记录
type UserView struct {
	ViewId    int64     `gorm:"column:view_id;primaryKey;autoIncrement"`
	UserId    int64     `gorm:"column:user_id;index:idx_user_views_user"`
	ProductId int64     `gorm:"column:product_id;index:idx_user_views_product"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime"`
}

func (UserView) TableName() string { return "user_views" }

// UserCart 购物车行；同一商品多次加购会产生多行
type UserCart struct {
	CartId    int64     `gorm:"column:cart_id;primaryKey;autoIncrement"`
	UserId    int64     `gorm:"column:user_id;index:idx_user_cart_user"`
	ProductId int64     `gorm:"column:product_id;index:idx_user_cart_product"`
	Quantity  int       `gorm:"column:quantity;default:1"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime"`
}

func (UserCart) TableName() string { return "user_cart" }

type UserSearch struct {
	SearchId   int64     `gorm:"column:search_id;primaryKey;autoIncrement"`
	UserId     int64     `gorm:"column:user_id;index:idx_user_searches_user"`
	SearchText string    `gorm:"column:search_text;type:varchar(255)"`
	CreatedAt  time.Time `gorm:"column:created_at;type:datetime"`
}

func (UserSearch) TableName() string { return "user_searches" }

// CartItem 购物车行与商品信息的联表结果
type CartItem struct {
	CartId    int64   `gorm:"column:cart_id"`
	ProductId int64   `gorm:"column:product_id"`
	Quantity  int     `gorm:"column:quantity"`
	Name      string  `gorm:"column:name"`
	Category  string  `gorm:"column:category"`
	Price     float64 `gorm:"column:price"`
}

// ProductScore 商品热度聚合
type ProductScore struct {
	ProductId int64   `gorm:"column:product_id"`
	Score     float64 `gorm:"column:score"`
}
