package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/testutil"
)

func TestComplaints_SubmitAndTriage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	testutil.Municipality(t, e.db, "muriae-mg")
	testutil.Municipality(t, e.db, "sp")
	citizen := actor(testutil.User(t, e.db, models.RoleCitizen, "muriae-mg"))
	admin := actor(testutil.User(t, e.db, models.RoleCityAdmin, "muriae-mg"))
	foreignAdmin := actor(testutil.User(t, e.db, models.RoleCityAdmin, "sp"))

	_, err := e.complaints.Submit(ctx, citizen, "curto")
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))

	c, err := e.complaints.Submit(ctx, citizen, "Buraco na rua principal há semanas")
	require.NoError(t, err)
	assert.Equal(t, "muriae-mg", c.MunicipalityID)
	assert.Equal(t, models.ComplaintOpen, c.Status)

	_, err = e.complaints.UpdateStatus(ctx, foreignAdmin, c.ID, models.ComplaintClosed, "")
	assert.ErrorIs(t, err, ErrComplaintNotFound)

	_, err = e.complaints.UpdateStatus(ctx, admin, c.ID, "done", "")
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))

	updated, err := e.complaints.UpdateStatus(ctx, admin, c.ID, models.ComplaintInReview, "")
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintInReview, updated.Status)

	list, err := e.complaints.ListForAdmin(ctx, admin, "", models.ComplaintInReview)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = e.complaints.ListForAdmin(ctx, foreignAdmin, "", "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestComplaints_UnboundActorForbidden(t *testing.T) {
	e := newEnv(t)
	u := actor(testutil.User(t, e.db, models.RoleCitizen, ""))
	_, err := e.complaints.Submit(context.Background(), u, "Buraco na rua principal há semanas")
	assert.ErrorIs(t, err, ErrForbidden)
}
