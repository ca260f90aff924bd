package actions

import (
	"testing"

	"github.com/stretchr/testify/require"

	"laminar.dev/laminar/internal/github"
	"laminar.dev/laminar/internal/stack"
)

func TestCheckLandPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		entry   stack.Entry
		wantErr string
	}{
		{
			name:  "open and in sync lands",
			entry: stack.Entry{PRNumber: 101, PRState: github.PRStateOpen, Status: stack.StatusUpToDate},
		},
		{
			name:    "no PR",
			entry:   stack.Entry{ShortSHA: "abc1234", Status: stack.StatusUpToDate},
			wantErr: "has no PR",
		},
		{
			name:    "out of sync",
			entry:   stack.Entry{ShortSHA: "abc1234", PRNumber: 101, PRState: github.PRStateOpen, Status: stack.StatusNeedsUpdate},
			wantErr: "not in sync",
		},
		{
			name:    "draft",
			entry:   stack.Entry{PRNumber: 101, PRState: github.PRStateDraft, Status: stack.StatusUpToDate},
			wantErr: "draft",
		},
		{
			name:    "already merged",
			entry:   stack.Entry{PRNumber: 101, PRState: github.PRStateMerged, Status: stack.StatusUpToDate},
			wantErr: "already merged",
		},
		{
			name:    "closed",
			entry:   stack.Entry{PRNumber: 101, PRState: github.PRStateClosed, Status: stack.StatusUpToDate},
			wantErr: "closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkLandPreconditions(&tt.entry)
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
