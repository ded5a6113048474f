package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/common"
	"github.com/joseph-ayodele/receipts-collator/internal/repository"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or prune the lookup hint cache",
	}
	cmd.AddCommand(newCacheStatsCmd(a), newCachePruneCmd(a))
	return cmd
}

func (a *app) openHints(cmd *cobra.Command) (*repository.DB, repository.HintRepository, error) {
	if a.cfg.Cache.DSN == "" {
		return nil, nil, common.NewAppError("CONFIG_ERROR", "HINT_CACHE_DSN is not set", common.ErrInvalidInput)
	}
	db, err := repository.Open(cmd.Context(), repository.Config{DSN: a.cfg.Cache.DSN, DialTimeout: 5 * time.Second}, a.logger)
	if err != nil {
		return nil, nil, common.NewAppError("DATABASE_ERROR", "open hint cache", fmt.Errorf("%w: %w", common.ErrDatabase, err))
	}
	if err := db.HealthCheck(cmd.Context(), 5*time.Second); err != nil {
		db.Close()
		return nil, nil, common.NewAppError("DATABASE_ERROR", "hint cache unreachable", fmt.Errorf("%w: %w", common.ErrDatabase, err))
	}
	repo := repository.NewHintRepository(db, a.logger)
	if err := repo.Migrate(cmd.Context()); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, repo, nil
}

func newCacheStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count cached lookup outcomes by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, repo, err := a.openHints(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			counts, err := repo.CountByStatus(cmd.Context())
			if err != nil {
				return err
			}
			statuses := make([]constants.LookupStatus, 0, len(counts))
			for s := range counts {
				statuses = append(statuses, s)
			}
			sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })

			heading.Fprintf(a.stdout, "Hint cache (%s)\n", db.Dialect())
			total := 0
			for _, s := range statuses {
				fmt.Fprintf(a.stdout, "  %-10s %d\n", s, counts[s])
				total += counts[s]
			}
			fmt.Fprintf(a.stdout, "  %-10s %d\n", "total", total)
			return nil
		},
	}
}

func newCachePruneCmd(a *app) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete cached outcomes older than the cache TTL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				olderThan = a.cfg.Cache.TTL
			}
			db, repo, err := a.openHints(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			cutoff := time.Now().Add(-olderThan).UTC()
			n, err := repo.DeleteBefore(cmd.Context(), cutoff)
			if err != nil {
				return err
			}
			a.logger.Info("cache.prune.ok", "cutoff", cutoff, "deleted", n)
			fmt.Fprintf(a.stdout, "deleted %d cached outcomes fetched before %s\n", n, cutoff.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "age cutoff (default HINT_CACHE_TTL)")
	return cmd
}
