package auth

import (
	"github.com/example/stockdesk/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the resolved caller of a protected operation.
type Identity struct {
	UserID primitive.ObjectID `json:"_id"`
	Name   string             `json:"name"`
	Email  string             `json:"email"`
	Role   models.Role        `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Owns reports whether the identity is the given user.
func (i Identity) Owns(userID primitive.ObjectID) bool {
	return !i.UserID.IsZero() && i.UserID == userID
}

func IdentityOf(u *models.User) Identity {
	return Identity{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
