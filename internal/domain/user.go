package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleCoach Role = "coach"
)

// UserStatus tracks the account lifecycle.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusDeleted  UserStatus = "deleted"
)

// User represents a profile document for an authenticated account.
// UID is assigned at registration and is immutable afterwards;
// role changes are admin-initiated only.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UID          string             `bson:"uid" json:"uid"`
	Email        string             `bson:"email" json:"email"` // Should be unique
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	FullName     string             `bson:"fullname,omitempty" json:"fullname,omitempty"`
	Username     string             `bson:"username,omitempty" json:"username,omitempty"`

	// Physical attributes, all optional.
	HeightCm *float64 `bson:"height,omitempty" json:"height,omitempty"`
	WeightKg *float64 `bson:"weight,omitempty" json:"weight,omitempty"`
	Age      *int     `bson:"age,omitempty" json:"age,omitempty"`
	Gender   string   `bson:"gender,omitempty" json:"gender,omitempty"`

	Status    UserStatus `bson:"status" json:"status"`
	IsActive  bool       `bson:"isActive" json:"isActive"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
	LastLogin *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}
