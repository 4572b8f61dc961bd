package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the document stored in the "users" collection. The password
// hash never leaves the server: it is excluded from JSON, so marshaling
// a User yields the public projection directly.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Username     string               `bson:"username" json:"username"`
	FullName     string               `bson:"fullName" json:"fullName"`
	Email        string               `bson:"email" json:"email"`
	Password     string               `bson:"password" json:"-"`
	Bio          string               `bson:"bio" json:"bio"`
	Link         string               `bson:"link" json:"link"`
	ProfileImage string               `bson:"profileImage" json:"profileImage"`
	CoverImage   string               `bson:"coverImage" json:"coverImage"`
	Followers    []primitive.ObjectID `bson:"followers" json:"followers"`
	Following    []primitive.ObjectID `bson:"following" json:"following"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsFollowing reports whether id is in the user's following set.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}
