package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"voice-intake-be/internal/entity"
	"voice-intake-be/internal/repository/implementation"
	"voice-intake-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallSessionRoundTrip(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	sqlDB, _ := gormDB.DB()
	require.NoError(t, sqlDB.Ping())

	repo := implementation.NewCallSessionRepository(gormDB)
	ctx := context.Background()

	callID := "it-" + uuid.NewString()
	name := "Maria Lopez"
	issue := "water heater leaking"
	session := &entity.CallSession{
		CallID:      callID,
		TenantID:    "integration-tenant",
		CallerPhone: "+12158050594",
		State:       entity.StateCollectingIssue,
		Slots:       entity.Slots{Name: &name, Issue: &issue},
		Transcript: []entity.TranscriptTurn{
			{Role: entity.TranscriptRoleAgent, Text: "Can I start with your name?"},
			{Role: entity.TranscriptRoleCaller, Text: "It's Maria Lopez"},
		},
		StartedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.Upsert(ctx, session))

	got, err := repo.Get(ctx, callID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.StateCollectingIssue, got.State)
	require.NotNil(t, got.Slots.Name)
	assert.Equal(t, "Maria Lopez", *got.Slots.Name)
	assert.Len(t, got.Transcript, 2)

	// same call id again must update, not duplicate
	session.State = entity.StateCollectingUrgency
	require.NoError(t, repo.Upsert(ctx, session))

	got, err = repo.Get(ctx, callID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.StateCollectingUrgency, got.State)

	// unknown call id is (nil, nil)
	missing, err := repo.Get(ctx, "it-missing-"+uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
