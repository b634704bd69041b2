package services

import (
	"context"
	"testing"
	"time"

	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserLogService_AppendValidation(t *testing.T) {
	svc := &UserLogService{logger: zap.NewNop(), now: time.Now}
	ctx := context.Background()

	assert.ErrorIs(t, svc.Append(ctx, "  ", models.LogEntry{Action: "x"}), models.ErrUnauthenticated)
	assert.Error(t, svc.Append(ctx, "maria@example.com", models.LogEntry{}))
}

func TestUserLogService_AppendAndRead(t *testing.T) {
	db := setupMongoForTest(t)
	svc := NewUserLogService(db, "user_logs", zap.NewNop())
	ctx := context.Background()

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	svc.now = func() time.Time { return first }

	require.NoError(t, svc.Append(ctx, "Maria@Example.com", models.LogEntry{
		Action:   models.LogActionUploadDocumento,
		Filename: "portfolio.pdf",
	}))

	svc.now = func() time.Time { return second }
	require.NoError(t, svc.Append(ctx, "maria@example.com", models.LogEntry{Action: models.LogActionCriarProjeto}))

	log, err := svc.Get(ctx, "MARIA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", log.User)
	require.Len(t, log.Entries, 2)
	assert.Equal(t, models.LogActionUploadDocumento, log.Entries[0].Action)
	assert.Equal(t, "portfolio.pdf", log.Entries[0].Filename)
	assert.True(t, log.CreatedAt.Equal(first))
	assert.True(t, log.UpdatedAt.Equal(second))

	// Identical entries are unioned, not duplicated.
	require.NoError(t, svc.Append(ctx, "maria@example.com", log.Entries[1]))
	log, err = svc.Get(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Len(t, log.Entries, 2)

	_, err = svc.Get(ctx, "ninguem@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserLogService_List(t *testing.T) {
	db := setupMongoForTest(t)
	svc := NewUserLogService(db, "user_logs", zap.NewNop())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return at }
		require.NoError(t, svc.Append(ctx, email, models.LogEntry{Action: models.LogActionCadastroProponente}))
	}

	page, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "c@example.com", page.Data[0].User)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestUserLogService_AppendAsync(t *testing.T) {
	db := setupMongoForTest(t)
	svc := NewUserLogService(db, "user_logs", zap.NewNop())

	svc.AppendAsync("maria@example.com", models.LogEntry{Action: models.LogActionCadastroProponente})

	require.Eventually(t, func() bool {
		_, err := svc.Get(context.Background(), "maria@example.com")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
}
