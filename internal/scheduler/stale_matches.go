package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const staleMatchJobName = "stale_match_cleanup"

// StaleMatchPurger deletes in-progress matches that have been idle too long.
type StaleMatchPurger interface {
	PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// RegisterStaleMatchJob schedules removal of abandoned in-progress matches.
func RegisterStaleMatchJob(purger StaleMatchPurger, cronExpr string, staleAfter time.Duration) error {
	if purger == nil {
		return fmt.Errorf("stale match job requires a purger")
	}
	if staleAfter <= 0 {
		return fmt.Errorf("stale match job requires a positive stale age")
	}

	jobLogger := log.With().
		Str("component", "stale_match_job").
		Str("job_name", staleMatchJobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(staleMatchJobName, cronExpr, func() {
		purgeStaleMatches(purger, staleAfter, jobLogger)
	})
	return err
}

func purgeStaleMatches(purger StaleMatchPurger, staleAfter time.Duration, logger zerolog.Logger) int64 {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx)

	deleted, err := purger.PurgeStale(ctx, staleAfter)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to purge stale matches")
		return 0
	}
	if deleted > 0 {
		logger.Info().
			Int64("deleted", deleted).
			Dur("stale_after", staleAfter).
			Msg("Purged stale matches")
	}
	return deleted
}
