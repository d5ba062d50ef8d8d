package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainself/internal/models"
	"brainself/internal/repository"
	"brainself/pkg/database"
)

func TestRun_Idempotent(t *testing.T) {
	db, err := database.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repos := repository.New(db.DB)
	ctx := context.Background()

	res, err := Run(ctx, repos, nil)
	require.NoError(t, err)
	assert.Equal(t, len(Achievements()), res.Achievements)
	assert.Equal(t, 2, res.Subjects)
	assert.Equal(t, 1, res.Tests)

	again, err := Run(ctx, repos, nil)
	require.NoError(t, err)
	assert.Equal(t, &Result{}, again)

	catalog, err := repos.Achievements.List(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog, len(Achievements()))

	_, err = repos.Achievements.GetByName(ctx, models.ExportMasterAchievement)
	assert.NoError(t, err)

	tests, err := repos.Tests.ListPublished(ctx, "grade_7")
	require.NoError(t, err)
	require.Len(t, tests, 1)
	assert.Equal(t, "Fractions quick check", tests[0].Title)
}
