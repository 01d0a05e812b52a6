// Package testutil builds isolated stores and fixtures for tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/votopopular/civic-api/internal/database"
	"github.com/votopopular/civic-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite store private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()[:8]
	dialector, err := database.Dialector("sqlite", "file:"+name+"?mode=memory&cache=shared&_foreign_keys=1")
	require.NoError(t, err)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func Municipality(t testing.TB, db *gorm.DB, id string) *models.Municipality {
	t.Helper()
	m := &models.Municipality{ID: id, Name: "Prefeitura de " + id}
	require.NoError(t, db.Create(m).Error)
	return m
}

// User persists a user with the given role; municipality may be "" for unbound.
func User(t testing.TB, db *gorm.DB, role models.Role, municipality string) *models.User {
	t.Helper()
	id := "uid-" + uuid.NewString()
	u := &models.User{
		ID:       id,
		Email:    id + "@example.com",
		Name:     string(role) + " user",
		Role:     role,
		IsActive: true,
	}
	if municipality != "" {
		u.MunicipalityID = &municipality
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func Proposal(t testing.TB, db *gorm.DB, author *models.User, status models.ProposalStatus) *models.Proposal {
	t.Helper()
	p := &models.Proposal{
		MunicipalityID: author.MunicipalityRef(),
		AuthorID:       author.ID,
		Title:          "Mais ciclovias",
		Description:    "Construir ciclovias nas avenidas principais",
		Status:         status,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
