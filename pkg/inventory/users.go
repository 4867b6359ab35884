package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

type ProfileInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) newUser(ctx context.Context, in UserInput, defaultRole models.Role) (*models.User, error) {
	if blank(in.Name, in.Email, in.Password, in.Address) {
		return nil, validation("all fields are required")
	}
	role := defaultRole
	if in.Role != "" {
		role = models.Role(in.Role)
		if !role.Valid() {
			return nil, validation("role must be admin or customer")
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, internal("failed to create user", err)
	}
	now := s.now()
	u := &models.User{
		ID:           primitive.NewObjectID(),
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Address:      strings.TrimSpace(in.Address),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, conflict("user already exists")
		}
		return nil, internal("failed to create user", err)
	}
	return u, nil
}

// Register creates a self-service account. Only customers may sign up
// unless admin signup is enabled.
func (s *Service) Register(ctx context.Context, in UserInput) (*models.User, error) {
	if models.Role(in.Role) == models.RoleAdmin && !s.opts.AllowAdminSignup {
		return nil, forbidden("admin accounts cannot be self-registered")
	}
	u, err := s.newUser(ctx, in, models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	s.record(auth.IdentityOf(u), "register_user", u.ID, bson.M{"email": u.Email, "role": u.Role})
	return u, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if blank(email, password) {
		return nil, validation("all fields are required")
	}
	u, err := s.users.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, unauthorized("invalid email or password")
		}
		return nil, internal("failed to login", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, unauthorized("invalid email or password")
	}
	return u, nil
}

// Profile loads the user behind an identity token.
func (s *Service) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	u, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, who auth.Identity) ([]models.User, error) {
	if err := requireAdmin(who, "access denied, admins only"); err != nil {
		return nil, err
	}
	users, err := s.users.ListUsersExcept(ctx, who.UserID)
	if err != nil {
		return nil, internal("failed to fetch users", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *Service) AddUser(ctx context.Context, who auth.Identity, in UserInput) (*models.User, error) {
	if err := requireAdmin(who, "access denied, admins only"); err != nil {
		return nil, err
	}
	if in.Role == "" {
		return nil, validation("all fields are required")
	}
	u, err := s.newUser(ctx, in, models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	s.record(who, "add_user", u.ID, bson.M{"email": u.Email, "role": u.Role})
	return u, nil
}

// UpdateProfile changes the caller's own name, email and address.
// The role cannot be changed through this path.
func (s *Service) UpdateProfile(ctx context.Context, who auth.Identity, in ProfileInput) (*models.User, error) {
	if blank(in.Name, in.Email, in.Address) {
		return nil, validation("fill all the fields")
	}
	u, err := s.users.UpdateProfile(ctx, who.UserID, models.ProfileUpdate{
		Name:    strings.TrimSpace(in.Name),
		Email:   normalizeEmail(in.Email),
		Address: strings.TrimSpace(in.Address),
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, conflict("email is already in use")
		}
		return nil, storeErr(err, "user")
	}
	s.record(who, "update_profile", u.ID, bson.M{"email": u.Email})
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, who auth.Identity, rawID string) error {
	if err := requireAdmin(who, "access denied, admins only"); err != nil {
		return err
	}
	id, err := parseID(rawID, "user")
	if err != nil {
		return err
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return storeErr(err, "user")
	}
	s.record(who, "delete_user", id, nil)
	return nil
}

// EnsureAdmin creates the bootstrap admin account unless the email is taken.
func (s *Service) EnsureAdmin(ctx context.Context, in UserInput) (bool, error) {
	in.Role = string(models.RoleAdmin)
	_, err := s.newUser(ctx, in, models.RoleAdmin)
	if KindOf(err) == KindConflict {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.logger.Info("Bootstrap admin created", zap.String("email", normalizeEmail(in.Email)))
	return true, nil
}
