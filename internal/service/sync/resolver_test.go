package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolver_Resolve_LastWriteWins(t *testing.T) {
	t.Parallel()

	r := NewResolver()
	older := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	tests := []struct {
		name          string
		local         Version
		remote        Version
		wantRemoteWon bool
		wantValue     string
	}{
		{
			name:          "remote strictly newer wins",
			local:         Version{Value: []byte(`{"theme": "light"}`), UpdatedAt: &older},
			remote:        Version{Value: []byte(`{"theme": "dark"}`), UpdatedAt: &newer},
			wantRemoteWon: true,
			wantValue:     `{"theme": "dark"}`,
		},
		{
			name:          "remote older keeps local",
			local:         Version{Value: []byte(`{"pitch_mean": 150}`), UpdatedAt: &newer},
			remote:        Version{Value: []byte(`{"pitch_mean": 999}`), UpdatedAt: &older},
			wantRemoteWon: false,
			wantValue:     `{"pitch_mean": 150}`,
		},
		{
			name:          "equal timestamps keep local",
			local:         Version{Value: []byte(`"local"`), UpdatedAt: &older},
			remote:        Version{Value: []byte(`"remote"`), UpdatedAt: &older},
			wantRemoteWon: false,
			wantValue:     `"local"`,
		},
		{
			name:          "missing local timestamp defaults to remote",
			local:         Version{Value: []byte(`"local"`)},
			remote:        Version{Value: []byte(`"remote"`), UpdatedAt: &older},
			wantRemoteWon: true,
			wantValue:     `"remote"`,
		},
		{
			name:          "missing remote timestamp defaults to remote",
			local:         Version{Value: []byte(`"local"`), UpdatedAt: &newer},
			remote:        Version{Value: []byte(`"remote"`)},
			wantRemoteWon: true,
			wantValue:     `"remote"`,
		},
		{
			name:          "both timestamps missing defaults to remote",
			local:         Version{Value: []byte(`"local"`)},
			remote:        Version{Value: []byte(`"remote"`)},
			wantRemoteWon: true,
			wantValue:     `"remote"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			winner, remoteWon := r.Resolve(tt.local, tt.remote, StrategyLastWriteWins)
			assert.Equal(t, tt.wantRemoteWon, remoteWon)
			assert.Equal(t, tt.wantValue, string(winner.Value))
		})
	}
}

func TestResolver_Resolve_Overrides(t *testing.T) {
	t.Parallel()

	r := NewResolver()
	older := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	local := Version{Value: []byte(`"local"`), UpdatedAt: &older}
	remote := Version{Value: []byte(`"remote"`), UpdatedAt: &newer}

	// prefer_local keeps the stored version even against a newer remote.
	winner, remoteWon := r.Resolve(local, remote, StrategyPreferLocal)
	assert.False(t, remoteWon)
	assert.Equal(t, `"local"`, string(winner.Value))

	// prefer_remote takes the incoming version even when it is older.
	winner, remoteWon = r.Resolve(remote, local, StrategyPreferRemote)
	assert.True(t, remoteWon)
	assert.Equal(t, `"local"`, string(winner.Value))
}
