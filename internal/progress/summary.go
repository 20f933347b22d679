package progress

import "arcstride/pkg/models"

// Summarize derives a title-level status from the user's per-unit
// records. Units without a progress row are imputed as NONE. The order
// of checks matters: the empty title short-circuits first, full
// completion is checked before partial progress.
func Summarize(total, done, inProgress, noneRecorded int64) (models.ProgressStatus, models.ProgressCounts) {
	tracked := done + inProgress + noneRecorded
	counts := models.ProgressCounts{
		Total:    total,
		Done:     done,
		Progress: inProgress,
		None:     noneRecorded + (total - tracked),
	}

	var status models.ProgressStatus
	switch {
	case total == 0:
		status = models.ProgressNone
	case done == total:
		status = models.ProgressDone
	case done > 0 || inProgress > 0:
		status = models.ProgressInProgress
	default:
		status = models.ProgressNone
	}
	return status, counts
}
