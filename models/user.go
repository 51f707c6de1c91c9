package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/utils"
)

// User is a back-office account (variance approval, manual-entry
// authorization). Devices authenticate with ApiCredential instead.
type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	StoreId   string    `gorm:"size:36;index" json:"store_id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     *string   `gorm:"size:100" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('Admin','Manager','Cashier');default:Cashier" json:"role"`
	IsActive  *bool     `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	StoreId  string   `json:"store_id"`
	Username string   `json:"username" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email"`
	Password string   `json:"password" binding:"required"`
	Role     UserRole `json:"role"`
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	hash, err := utils.HashSecret(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = UserRoleCashier
	}
	var email *string
	if input.Email != "" {
		email = &input.Email
	}

	user := User{
		StoreId:  input.StoreId,
		Username: input.Username,
		Name:     input.Name,
		Email:    email,
		Password: string(hash),
		Role:     role,
		IsActive: utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AuthenticateUser verifies a back-office login. The same generic error comes
// back for unknown user, inactive user and wrong password.
func AuthenticateUser(ctx context.Context, username string, password string) (*User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, UnauthorizedError(CodeUserNotFound, "invalid username or password")
	}
	if user.IsActive == nil || !*user.IsActive {
		return nil, UnauthorizedError(CodeUserNotFound, "invalid username or password")
	}
	if err := utils.CompareSecret(user.Password, password); err != nil {
		return nil, UnauthorizedError(CodeUserNotFound, "invalid username or password")
	}
	return &user, nil
}

// GetStoreUser fetches a user that must belong to the store.
func GetStoreUser(ctx context.Context, storeId string, userId int) (*User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).
		Where("id = ? AND store_id = ?", userId, storeId).
		First(&user).Error; err != nil {
		return nil, NotFoundError(CodeUserNotFound, "user %d not found", userId)
	}
	return &user, nil
}
