package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

func TestUserService_ResolveActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	actor, err := f.users.ResolveActor(ctx, f.mainLawyer.ID)
	require.NoError(t, err)
	assert.Equal(t, f.mainLawyer, actor)

	_, err = f.users.ResolveActor(ctx, 404)
	assert.Equal(t, apperror.CodeUnauthorized, apperror.CodeOf(err))

	_, err = f.users.ResolveActor(ctx, 0)
	assert.Equal(t, apperror.CodeUnauthorized, apperror.CodeOf(err))
}

func TestUserService_CreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := CreateUserInput{Name: "Nina New", Username: "nina", Role: entity.RoleLawyer, IsMainLawyer: true}

	_, err := f.users.CreateUser(ctx, in, f.head)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	user, err := f.users.CreateUser(ctx, in, f.admin)
	require.NoError(t, err)
	assert.Equal(t, testNow, user.CreatedAt)

	_, err = f.users.CreateUser(ctx, in, f.admin)
	assert.ErrorIs(t, err, apperror.ErrValidation, "duplicate username")

	_, err = f.users.CreateUser(ctx, CreateUserInput{Name: "Zed", Username: "zed", Role: entity.RoleAssistant, IsMainLawyer: true}, f.admin)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	lawyers, err := f.users.ListUsers(ctx, entity.RoleLawyer)
	require.NoError(t, err)
	assert.Len(t, lawyers, 3)

	_, err = f.users.ListUsers(ctx, "partner")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUserService_SeedUsers(t *testing.T) {
	f := newFixtureWith(t, fixtureConfig{users: []*entity.User{}, noStages: true})
	ctx := context.Background()

	seed := []CreateUserInput{
		{Name: "Root", Username: "root", Role: entity.RoleAdmin},
		{Name: "Lena", Username: "lena", Role: entity.RoleLawyer, IsMainLawyer: true},
	}
	created, err := f.users.SeedUsers(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = f.users.SeedUsers(ctx, seed)
	require.NoError(t, err)
	assert.Zero(t, created)

	got, err := f.users.GetUser(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "lena", got.Username)
}

func TestUserService_CreateUserRejectsMalformedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.CreateUser(ctx, CreateUserInput{Name: "Odd", Username: "Has Space", Role: entity.RoleLawyer}, f.admin)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.users.CreateUser(ctx, CreateUserInput{Name: "Odd", Username: "odd", Email: "odd@", Role: entity.RoleLawyer}, f.admin)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	user, err := f.users.CreateUser(ctx, CreateUserInput{Name: "Odd", Username: "odd", Email: "odd@firm.example", Role: entity.RoleLawyer}, f.admin)
	require.NoError(t, err)
	assert.Equal(t, "odd@firm.example", user.Email)
}
