package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/testutil"
)

func TestUpdateProfile_ValidatesFields(t *testing.T) {
	e := newEnv(t)
	e.users.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	u := testutil.User(t, e.db, models.RoleCitizen, "")

	_, err := e.users.UpdateProfile(context.Background(), actor(u), ProfileInput{
		CPF:       strp("529.982.247-26"),
		BirthDate: strp("2015-01-01"),
		ZipCode:   strp("123"),
	})
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.Validation, ae.Code)
	assert.Contains(t, ae.Fields, "cpf")
	assert.Contains(t, ae.Fields, "birthDate")
	assert.Contains(t, ae.Fields, "zipCode")

	me, err := e.users.UpdateProfile(context.Background(), actor(u), ProfileInput{
		Name:      strp("Ana Souza"),
		CPF:       strp("529.982.247-25"),
		BirthDate: strp("1990-05-20"),
		ZipCode:   strp("36880-000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", me.Name)

	stored := reload(t, e.db, u)
	require.NotNil(t, stored.CPF)
	assert.Equal(t, "52998224725", *stored.CPF)
	assert.Equal(t, "36880000", stored.ZipCode)
}

func TestUpdateProfile_CPFCollisionCountsAndThrottles(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := testutil.User(t, e.db, models.RoleCitizen, "")
	_, err := e.users.UpdateProfile(ctx, actor(owner), ProfileInput{CPF: strp("52998224725")})
	require.NoError(t, err)

	intruder := testutil.User(t, e.db, models.RoleCitizen, "")
	for i := 0; i < 5; i++ {
		_, err = e.users.UpdateProfile(ctx, actor(intruder), ProfileInput{CPF: strp("529.982.247-25")})
		assert.ErrorIs(t, err, ErrCPFTaken)
	}
	_, err = e.users.UpdateProfile(ctx, actor(intruder), ProfileInput{CPF: strp("529.982.247-25")})
	assert.ErrorIs(t, err, ErrTooManyAttempts)
	assert.Equal(t, apperr.RateLimited, apperr.CodeOf(err))
	assert.Equal(t, int64(5), auditCount(t, e.db, models.AuditRegistrationRejected))
}

func TestJoinMunicipality_Once(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	testutil.Municipality(t, e.db, "muriae-mg")
	testutil.Municipality(t, e.db, "sp")
	u := testutil.User(t, e.db, models.RoleCitizen, "")

	_, err := e.users.JoinMunicipality(ctx, actor(u), "nowhere")
	assert.ErrorIs(t, err, ErrMunicipalityNotFound)

	me, err := e.users.JoinMunicipality(ctx, actor(u), "muriae-mg")
	require.NoError(t, err)
	require.NotNil(t, me.MunicipalityID)
	assert.Equal(t, "muriae-mg", *me.MunicipalityID)

	_, err = e.users.JoinMunicipality(ctx, actor(reload(t, e.db, u)), "sp")
	assert.ErrorIs(t, err, ErrAlreadyBound)

	// A stale actor snapshot still cannot rebind.
	_, err = e.users.JoinMunicipality(ctx, actor(u), "sp")
	assert.ErrorIs(t, err, ErrAlreadyBound)
}

func TestAssignRole_SuperAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	testutil.Municipality(t, e.db, "muriae-mg")
	root := actor(testutil.User(t, e.db, models.RoleSuperAdmin, ""))
	u := testutil.User(t, e.db, models.RoleCitizen, "")

	_, err := e.users.AssignRole(ctx, root, u.ID, models.RoleSuperAdmin, "muriae-mg")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.users.AssignRole(ctx, root, u.ID, models.RoleCityAdmin, "")
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))

	me, err := e.users.AssignRole(ctx, root, u.ID, models.RoleCityAdmin, "muriae-mg")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCityAdmin, me.Role)
	assert.Equal(t, "muriae-mg", *me.MunicipalityID)
	assert.Equal(t, int64(1), auditCount(t, e.db, models.AuditRoleAssigned))

	testutil.Municipality(t, e.db, "sp")
	_, err = e.users.AssignRole(ctx, root, u.ID, models.RoleCouncilMember, "sp")
	assert.ErrorIs(t, err, ErrAlreadyBound)
}

func TestAssignRole_CityAdminPromotesOwnCitizensOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	testutil.Municipality(t, e.db, "muriae-mg")
	testutil.Municipality(t, e.db, "sp")
	admin := actor(testutil.User(t, e.db, models.RoleCityAdmin, "muriae-mg"))
	own := testutil.User(t, e.db, models.RoleCitizen, "muriae-mg")
	foreign := testutil.User(t, e.db, models.RoleCitizen, "sp")
	peer := testutil.User(t, e.db, models.RoleCityAdmin, "muriae-mg")

	_, err := e.users.AssignRole(ctx, admin, own.ID, models.RoleCityAdmin, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.users.AssignRole(ctx, admin, foreign.ID, models.RoleCouncilMember, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.users.AssignRole(ctx, admin, peer.ID, models.RoleCouncilMember, "")
	assert.ErrorIs(t, err, ErrForbidden, "demoting another admin")

	_, err = e.users.AssignRole(ctx, admin, admin.UserID(), models.RoleCouncilMember, "")
	assert.ErrorIs(t, err, ErrForbidden, "self assignment")

	me, err := e.users.AssignRole(ctx, admin, own.ID, models.RoleCouncilMember, "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCouncilMember, me.Role)
}

func TestListUsersForAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	testutil.Municipality(t, e.db, "muriae-mg")
	testutil.Municipality(t, e.db, "sp")
	admin := actor(testutil.User(t, e.db, models.RoleCityAdmin, "muriae-mg"))
	testutil.User(t, e.db, models.RoleCitizen, "muriae-mg")
	testutil.User(t, e.db, models.RoleCitizen, "sp")

	users, err := e.users.ListForAdmin(ctx, admin, "", models.RoleNone)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	citizens, err := e.users.ListForAdmin(ctx, admin, "", models.RoleCitizen)
	require.NoError(t, err)
	assert.Len(t, citizens, 1)
}
