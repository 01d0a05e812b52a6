package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/tenant"
	"github.com/votopopular/civic-api/internal/testutil"
)

func strp(s string) *string { return &s }

func TestMunicipality_SlugRulesAndConflict(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	root := actor(testutil.User(t, e.db, models.RoleSuperAdmin, ""))

	_, err := e.municipality.Create(ctx, root, MunicipalityInput{ID: "Muriaé MG", Name: "Muriaé"})
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.Validation, ae.Code)
	assert.Contains(t, ae.Fields, "id")

	m, err := e.municipality.Create(ctx, root, MunicipalityInput{ID: "muriae-mg", Name: "Muriaé", State: "MG"})
	require.NoError(t, err)
	assert.Equal(t, "muriae-mg", m.ID)

	_, err = e.municipality.Create(ctx, root, MunicipalityInput{ID: "muriae-mg", Name: "Outra"})
	assert.ErrorIs(t, err, ErrSlugTaken)
	assert.Equal(t, apperr.Conflict, apperr.CodeOf(err))
	assert.Equal(t, int64(1), auditCount(t, e.db, models.AuditMunicipalityCreated))
}

func TestMunicipality_ThemeDefaultsAndUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	root := actor(testutil.User(t, e.db, models.RoleSuperAdmin, ""))
	testutil.Municipality(t, e.db, "sp")

	theme, err := e.municipality.Theme(ctx, "sp")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPrimaryColor, theme.PrimaryColor)
	assert.Equal(t, models.DefaultFontFamily, theme.FontFamily)

	_, err = e.municipality.UpdateTheme(ctx, root, "sp", Branding{PrimaryColor: strp("blue")})
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))

	_, err = e.municipality.UpdateTheme(ctx, root, "sp", Branding{LogoURL: strp("logo.png")})
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))

	theme, err = e.municipality.UpdateTheme(ctx, root, "sp", Branding{PrimaryColor: strp("#112233"), LogoURL: strp("https://cdn.example.com/sp.png")})
	require.NoError(t, err)
	assert.Equal(t, "#112233", theme.PrimaryColor)
	assert.Equal(t, models.DefaultAccentColor, theme.AccentColor)

	_, err = e.municipality.UpdateTheme(ctx, root, "nowhere", Branding{})
	assert.ErrorIs(t, err, ErrMunicipalityNotFound)
}

func TestMunicipality_UpdateKeepsSlug(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	root := actor(testutil.User(t, e.db, models.RoleSuperAdmin, ""))
	testutil.Municipality(t, e.db, "sp")

	m, err := e.municipality.Update(ctx, root, "sp", MunicipalityUpdate{Name: strp("São Paulo")})
	require.NoError(t, err)
	assert.Equal(t, "sp", m.ID)
	assert.Equal(t, "São Paulo", m.Name)

	_, err = e.municipality.Update(ctx, root, "sp", MunicipalityUpdate{Name: strp("")})
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}

func TestMunicipality_EnsureSeedIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	file := &tenant.SeedFile{Municipalities: []tenant.SeedMunicipality{
		{ID: "muriae-mg", Name: "Muriaé"},
		{ID: "sp", Name: "São Paulo"},
	}}

	n, err := e.municipality.EnsureSeed(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = e.municipality.EnsureSeed(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	list, err := e.municipality.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
