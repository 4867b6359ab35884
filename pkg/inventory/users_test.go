package inventory_test

import (
	"context"
	"testing"

	"github.com/example/stockdesk/pkg/inventory"
	"github.com/example/stockdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, inventory.Options{})

	u, err := f.svc.Register(ctx, inventory.UserInput{Name: "Dan", Email: " Dan@Example.com ", Password: "pw", Address: "a"})
	require.NoError(t, err)
	assert.Equal(t, "dan@example.com", u.Email)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.NotEqual(t, "pw", u.PasswordHash)

	_, err = f.svc.Register(ctx, inventory.UserInput{Name: "Dan", Email: "dan@example.com", Password: "pw", Address: "a"})
	assert.Equal(t, inventory.KindConflict, inventory.KindOf(err))

	_, err = f.svc.Register(ctx, inventory.UserInput{Name: "Eve", Email: "eve@example.com", Password: "pw", Address: "a", Role: "admin"})
	assert.Equal(t, inventory.KindForbidden, inventory.KindOf(err))

	_, err = f.svc.Register(ctx, inventory.UserInput{Name: "Eve", Email: "eve@example.com"})
	assert.Equal(t, inventory.KindValidation, inventory.KindOf(err))
}

func TestRegisterAdminWhenAllowed(t *testing.T) {
	f := newFixture(t, inventory.Options{AllowAdminSignup: true})
	u, err := f.svc.Register(context.Background(), inventory.UserInput{
		Name: "Eve", Email: "eve@example.com", Password: "pw", Address: "a", Role: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, inventory.Options{})

	u, err := f.svc.Authenticate(ctx, "CARA@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, f.customer.UserID, u.ID)

	_, err = f.svc.Authenticate(ctx, "cara@example.com", "wrong")
	assert.Equal(t, inventory.KindUnauthorized, inventory.KindOf(err))
	_, err = f.svc.Authenticate(ctx, "nobody@example.com", "pw")
	assert.Equal(t, inventory.KindUnauthorized, inventory.KindOf(err))
	_, err = f.svc.Authenticate(ctx, "", "pw")
	assert.Equal(t, inventory.KindValidation, inventory.KindOf(err))
}

func TestUserManagement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, inventory.Options{})

	users, err := f.svc.ListUsers(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, f.customer.UserID, users[0].ID)

	_, err = f.svc.ListUsers(ctx, f.customer)
	assert.Equal(t, inventory.KindForbidden, inventory.KindOf(err))

	_, err = f.svc.AddUser(ctx, f.admin, inventory.UserInput{Name: "S", Email: "s@example.com", Password: "pw", Address: "a"})
	assert.Equal(t, inventory.KindValidation, inventory.KindOf(err), "role is required")

	staff, err := f.svc.AddUser(ctx, f.admin, inventory.UserInput{Name: "S", Email: "s@example.com", Password: "pw", Address: "a", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, staff.Role)

	require.NoError(t, f.svc.DeleteUser(ctx, f.admin, staff.ID.Hex()))
	err = f.svc.DeleteUser(ctx, f.admin, staff.ID.Hex())
	assert.Equal(t, inventory.KindNotFound, inventory.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, inventory.Options{})

	u, err := f.svc.UpdateProfile(ctx, f.customer, inventory.ProfileInput{Name: "Cara B", Email: "cara.b@example.com", Address: "Street 2"})
	require.NoError(t, err)
	assert.Equal(t, "Cara B", u.Name)
	assert.Equal(t, models.RoleCustomer, u.Role)

	_, err = f.svc.UpdateProfile(ctx, f.customer, inventory.ProfileInput{Name: "Cara", Email: "root@example.com", Address: "x"})
	assert.Equal(t, inventory.KindConflict, inventory.KindOf(err))

	_, err = f.svc.UpdateProfile(ctx, f.customer, inventory.ProfileInput{Name: "Cara"})
	assert.Equal(t, inventory.KindValidation, inventory.KindOf(err))
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t, inventory.Options{})
	created, err := f.svc.EnsureAdmin(context.Background(), inventory.UserInput{
		Name: "Root", Email: "root@example.com", Password: "other", Address: "HQ",
	})
	require.NoError(t, err)
	assert.False(t, created)
}
