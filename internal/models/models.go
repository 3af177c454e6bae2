package models

const (
	RoleUser  = "user"
	RoleShop  = "shop"
	RoleAdmin = "admin"
)

const (
	ShopRequestPending  = "pending"
	ShopRequestApproved = "approved"
	ShopRequestRejected = "rejected"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"unique;not null"          json:"email"`
	Name         string `gorm:"not null"                 json:"name"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
	AvatarURL    string `json:"avatar_url"`
}

type Shop struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"unique;not null"          json:"name"`
	OwnerID     uint   `gorm:"index;not null"           json:"owner_id"`
	Description string `json:"description"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID      *uint   `gorm:"index"                    json:"shop_id"`
	Name        string  `gorm:"not null"                 json:"name"`
	Description string  `gorm:"not null"                 json:"description"`
	Price       float64 `gorm:"not null"                 json:"price"`
	Count       uint    `json:"count"`
	ImageURL    string  `json:"image_url"`
}

// CartItem carries a unique (user_id, product_id) index so two concurrent
// adds of the same product cannot produce duplicate lines.
type CartItem struct {
	ID        uint `gorm:"primaryKey"                                 json:"id"`
	UserID    uint `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"user_id"`
	ProductID uint `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0"                 json:"quantity"`
}

// Invoice existence is the sole record of a completed checkout; there is
// no pending or failed state. Line items are captured at checkout time
// and never recomputed from live products.
type Invoice struct {
	ID        uint          `gorm:"primaryKey"           json:"id"`
	OrderID   string        `gorm:"uniqueIndex;not null" json:"order_id"`
	UserID    uint          `gorm:"index;not null"       json:"user_id"`
	Name      string        `gorm:"not null"             json:"name"`
	Phone     string        `json:"phone"`
	Email     string        `gorm:"not null"             json:"email"`
	Address   string        `json:"address"`
	City      string        `json:"city"`
	Total     float64       `gorm:"not null"             json:"total"`
	ItemCount uint          `gorm:"not null"             json:"item_count"`
	CreatedAt int64         `gorm:"autoCreateTime"       json:"created_at"`
	Items     []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
}

type InvoiceItem struct {
	ID        uint    `gorm:"primaryKey"     json:"id"`
	InvoiceID uint    `gorm:"index;not null" json:"invoice_id"`
	ProductID uint    `gorm:"not null"       json:"product_id"`
	Title     string  `gorm:"not null"       json:"title"`
	Quantity  uint    `gorm:"not null"       json:"quantity"`
	LinePrice float64 `gorm:"not null"       json:"line_price"`
}

type ShopRequest struct {
	ID         uint   `gorm:"primaryKey"               json:"id"`
	UserID     uint   `gorm:"index;not null"           json:"user_id"`
	ShopName   string `gorm:"not null"                 json:"shop_name"`
	OwnerEmail string `gorm:"not null"                 json:"owner_email"`
	Status     string `gorm:"not null;default:pending" json:"status"`
	CreatedAt  int64  `gorm:"autoCreateTime"           json:"created_at"`
}

type Notification struct {
	ID        uint   `gorm:"primaryKey"     json:"id"`
	UserID    uint   `gorm:"index;not null" json:"user_id"`
	Title     string `gorm:"not null"       json:"title"`
	Body      string `json:"body"`
	Read      bool   `gorm:"default:false"  json:"read"`
	CreatedAt int64  `gorm:"autoCreateTime" json:"created_at"`
}

type RecentSearch struct {
	ID        uint   `gorm:"primaryKey"     json:"id"`
	UserID    uint   `gorm:"index;not null" json:"user_id"`
	Query     string `gorm:"not null"       json:"query"`
	CreatedAt int64  `gorm:"autoCreateTime" json:"created_at"`
}
