package github

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseGitHubRemoteURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		hostname string
		owner    string
		repo     string
		wantErr  bool
	}{
		{
			name:     "https github.com",
			url:      "https://github.com/owner/repo.git",
			hostname: "github.com",
			owner:    "owner",
			repo:     "repo",
		},
		{
			name:     "ssh github.com",
			url:      "git@github.com:owner/repo.git",
			hostname: "github.com",
			owner:    "owner",
			repo:     "repo",
		},
		{
			name:     "https enterprise",
			url:      "https://github.company.com/owner/repo.git",
			hostname: "github.company.com",
			owner:    "owner",
			repo:     "repo",
		},
		{
			name:     "ssh enterprise",
			url:      "git@github.company.com:owner/repo.git",
			hostname: "github.company.com",
			owner:    "owner",
			repo:     "repo",
		},
		{
			name:     "no .git suffix",
			url:      "https://github.com/owner/repo",
			hostname: "github.com",
			owner:    "owner",
			repo:     "repo",
		},
		{
			name:    "invalid url",
			url:     "not-a-remote",
			wantErr: true,
		},
		{
			name:    "missing path",
			url:     "https://github.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseGitHubRemoteURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.hostname, info.Hostname)
			require.Equal(t, tt.owner, info.Owner)
			require.Equal(t, tt.repo, info.Repo)
		})
	}
}

func TestPRStateFrom(t *testing.T) {
	tests := []struct {
		name     string
		state    string
		draft    bool
		merged   bool
		expected PRState
	}{
		{"open", "OPEN", false, false, PRStateOpen},
		{"draft", "OPEN", true, false, PRStateDraft},
		{"closed", "CLOSED", false, false, PRStateClosed},
		{"merged flag", "CLOSED", false, true, PRStateMerged},
		{"merged state", "MERGED", false, false, PRStateMerged},
		{"merged wins over draft", "MERGED", true, true, PRStateMerged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, prStateFrom(tt.state, tt.draft, tt.merged))
		})
	}
}

func TestPRStateIsClosed(t *testing.T) {
	require.False(t, PRStateOpen.IsClosed())
	require.False(t, PRStateDraft.IsClosed())
	require.True(t, PRStateClosed.IsClosed())
	require.True(t, PRStateMerged.IsClosed())
}

func TestGraphqlEndpoint(t *testing.T) {
	require.Equal(t, "https://api.github.com/graphql", graphqlEndpoint("github.com"))
	require.Equal(t, "https://github.company.com/api/graphql", graphqlEndpoint("github.company.com"))
}
