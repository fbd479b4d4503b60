package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{in: "facebook", want: PlatformFacebook},
		{in: " Instagram ", want: PlatformInstagram},
		{in: "twitter", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlatform(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPlatform)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewConnectionRecord(t *testing.T) {
	local := time.FixedZone("WIB", 7*3600)
	at := time.Date(2025, 3, 1, 19, 0, 0, 0, local)
	target := ConnectableTarget{ExternalID: "IG1", DisplayName: "Brand", Username: "brand", ShortLivedToken: "S1"}

	rec := NewConnectionRecord("42", PlatformInstagram, "A1", target, at)
	assert.Equal(t, "IG1", rec.AccountID)
	assert.Equal(t, "S1", rec.AccessToken)
	assert.Equal(t, "S1", rec.LongLivedToken)
	assert.Equal(t, LongLivedTokenLifetime, rec.ExpiresIn)
	assert.Equal(t, time.UTC, rec.ConnectedAt.Location())
	assert.True(t, rec.ConnectedAt.Equal(at))
	require.NotNil(t, rec.Username)
	assert.Equal(t, "brand", *rec.Username)
	assert.True(t, rec.Active())

	target.LongLivedToken = "L1"
	fb := NewConnectionRecord("42", PlatformFacebook, "A1", target, at)
	assert.Nil(t, fb.Username)
	assert.Equal(t, "L1", fb.LongLivedToken)
}

func TestConnectedPlatforms(t *testing.T) {
	got := ConnectedPlatforms([]ConnectionRecord{
		{Platform: PlatformFacebook, Status: ConnectionStatusDisconnected},
		{Platform: PlatformInstagram, Status: ConnectionStatusActive},
	})
	assert.Equal(t, map[Platform]bool{PlatformFacebook: false, PlatformInstagram: true}, got)
	assert.Equal(t, map[Platform]bool{PlatformFacebook: false, PlatformInstagram: false}, ConnectedPlatforms(nil))
}

func TestPermissionsFor(t *testing.T) {
	assert.Equal(t, "Starter Plan", PermissionsFor(7).PlanName)
	assert.Equal(t, 7, PermissionsFor(9).MaxPostingDays)
	assert.False(t, PermissionsFor(4).HasAccess)
	assert.Equal(t, "Unknown Plan", PermissionsFor(1).PlanName)
}
