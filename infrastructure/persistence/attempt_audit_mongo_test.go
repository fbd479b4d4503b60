package persistence

import (
	"testing"
	"time"

	"social-connect/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestAttemptDoc_StripsTokens(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := model.NewAttempt("att-1", model.PlatformInstagram, now)
	a.UserID = "42"
	a.Targets = []model.ConnectableTarget{{ExternalID: "IG1", DisplayName: "Brand", Username: "brand", ShortLivedToken: "secret-short", LongLivedToken: "secret-long"}}
	a.SelectedID = "IG1"
	a.Warn(model.Warning{Code: model.WarningLongLivedUpgradeFailed, Message: "rate limited", TargetID: "P1"})

	raw, err := bson.Marshal(newAttemptDoc(a))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")

	var decoded attemptDoc
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	back := decoded.toAttempt()
	assert.Equal(t, "att-1", back.ID)
	assert.Equal(t, model.StateIdle, back.State)
	assert.Equal(t, []model.AttemptState{model.StateIdle}, back.Trail)
	require.Len(t, back.Targets, 1)
	assert.Equal(t, "brand", back.Targets[0].Username)
	assert.Empty(t, back.Targets[0].LongLivedToken)
	assert.Equal(t, a.Warnings, back.Warnings)
	assert.True(t, back.StartedAt.Equal(now))
}
