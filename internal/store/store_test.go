package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsarma/runbox/internal/store"
)

// openTestDB connects to RUNBOX_TEST_DATABASE_URL and applies the schema.
func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("RUNBOX_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("RUNBOX_TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, store.Migrate(context.Background(), pool))
	return pool
}

func TestJobLifecycle(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)
	q := store.New(pool).WithTx(tx)

	job, err := q.CreateJob(ctx, store.CreateJobParams{
		JobType:     "code.execute",
		Payload:     []byte(`{"language_id":71}`),
		MaxAttempts: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", job.Status)
	assert.Equal(t, int32(0), job.Attempt)

	claimed, err := q.ClaimNextJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.ID, claimed.ID)
	assert.Equal(t, "running", claimed.Status)
	assert.Equal(t, int32(1), claimed.Attempt)

	_, err = q.ClaimNextJob(ctx)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	exec, err := q.UpsertCodeExecution(ctx, store.UpsertCodeExecutionParams{
		JobID:      job.ID,
		LanguageID: 71,
		Token:      pgtype.Text{String: "tok", Valid: true},
		State:      "completed",
		Outcome:    "success",
		Output:     "hi\n",
		Polls:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi\n", exec.Output)

	now := time.Now()
	done, err := q.UpdateJobStatus(ctx, store.UpdateJobStatusParams{
		ID:          job.ID,
		Status:      "completed",
		CompletedAt: &now,
		RunAt:       claimed.RunAt,
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status)
	require.NotNil(t, done.CompletedAt)

	got, err := q.GetCodeExecution(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token.String)
}
