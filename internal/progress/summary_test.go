package progress

import (
	"testing"

	"arcstride/pkg/models"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name         string
		total        int64
		done         int64
		inProgress   int64
		noneRecorded int64
		wantStatus   models.ProgressStatus
		wantCounts   models.ProgressCounts
	}{
		{
			name:       "no units",
			total:      0,
			wantStatus: models.ProgressNone,
			wantCounts: models.ProgressCounts{},
		},
		{
			name:       "all done",
			total:      5,
			done:       5,
			wantStatus: models.ProgressDone,
			wantCounts: models.ProgressCounts{Total: 5, Done: 5},
		},
		{
			name:       "partial progress with untracked units",
			total:      5,
			done:       2,
			inProgress: 1,
			wantStatus: models.ProgressInProgress,
			wantCounts: models.ProgressCounts{Total: 5, Done: 2, Progress: 1, None: 2},
		},
		{
			name:       "only in progress",
			total:      3,
			inProgress: 1,
			wantStatus: models.ProgressInProgress,
			wantCounts: models.ProgressCounts{Total: 3, Progress: 1, None: 2},
		},
		{
			name:         "only explicit none records",
			total:        4,
			noneRecorded: 2,
			wantStatus:   models.ProgressNone,
			wantCounts:   models.ProgressCounts{Total: 4, None: 4},
		},
		{
			name:       "nothing tracked",
			total:      3,
			wantStatus: models.ProgressNone,
			wantCounts: models.ProgressCounts{Total: 3, None: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, counts := Summarize(tt.total, tt.done, tt.inProgress, tt.noneRecorded)
			if status != tt.wantStatus {
				t.Errorf("status = %s, want %s", status, tt.wantStatus)
			}
			if counts != tt.wantCounts {
				t.Errorf("counts = %+v, want %+v", counts, tt.wantCounts)
			}
		})
	}
}
