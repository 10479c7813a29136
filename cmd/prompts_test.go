package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/vk-tinder/internal/profile"
	"github.com/spigell/vk-tinder/internal/storage"
)

func TestDesiredAge(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		state   storage.RunState
		want    *profile.AgeRange
		wantErr bool
	}{
		{
			name: "nothing set",
		},
		{
			name: "input only",
			from: "20",
			to:   " 30 ",
			want: &profile.AgeRange{From: 20, To: 30},
		},
		{
			name:  "empty input keeps saved bounds",
			state: storage.RunState{AgeFrom: 25, AgeTo: 35},
			want:  &profile.AgeRange{From: 25, To: 35},
		},
		{
			name:  "both bounds are restored independently",
			to:    "40",
			state: storage.RunState{AgeFrom: 25, AgeTo: 35},
			want:  &profile.AgeRange{From: 25, To: 40},
		},
		{
			name: "inverted range is kept as is",
			from: "30",
			to:   "20",
			want: &profile.AgeRange{From: 30, To: 20},
		},
		{
			name:    "not a number",
			from:    "twenty",
			wantErr: true,
		},
		{
			name:    "out of range",
			to:      "200",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := tt.state
			got, err := desiredAge(tt.from, tt.to, &state)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateAge(t *testing.T) {
	assert.NoError(t, validateAge(""))
	assert.NoError(t, validateAge("18"))
	assert.Error(t, validateAge("-1"))
	assert.Error(t, validateAge("abc"))
}

func TestGetConfigDefaults(t *testing.T) {
	t.Setenv("VK_DATABASE_DSN", "postgres://localhost/vk?sslmode=disable")

	config, err := getConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/vk?sslmode=disable", config.Database.DSN)
	assert.Equal(t, 15, config.PageSize)
	assert.Equal(t, 10, config.TopK)
	assert.Equal(t, "output.json", config.Output)
	assert.Equal(t, 6, config.Search.Status)
	assert.True(t, config.Search.HasPhoto)
	assert.Equal(t, 5.0, config.Weights.Age)
	assert.Equal(t, 5, config.VK.RetryAttempts)
	assert.False(t, config.Redis.Enabled)
}
