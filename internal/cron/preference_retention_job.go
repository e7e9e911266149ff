package cron

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/merlotworks/wineclub-backend/pkg/logger"
)

const defaultRetentionMonths = 12

// windowKeyLayout matches the shipment window segment of preference keys.
const windowKeyLayout = "2006-01"

// preferenceKeyspace scans saved selections across every member.
type preferenceKeyspace interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
	PreferencePrefix(memberID string) string
}

// PreferenceRetentionJobParams configure the stale selection sweeper.
type PreferenceRetentionJobParams struct {
	Logger          *logger.Logger
	KV              preferenceKeyspace
	RetentionMonths int
}

// NewPreferenceRetentionJob builds the job that deletes saved wine selections
// for shipment windows older than the retention horizon. Selections carry no
// TTL when written, so without this sweep the keyspace grows forever.
func NewPreferenceRetentionJob(params PreferenceRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.KV == nil {
		return nil, fmt.Errorf("kv store required")
	}
	months := params.RetentionMonths
	if months <= 0 {
		months = defaultRetentionMonths
	}
	return &preferenceRetentionJob{
		logg:   params.Logger,
		kv:     params.KV,
		months: months,
		now:    time.Now,
	}, nil
}

type preferenceRetentionJob struct {
	logg   *logger.Logger
	kv     preferenceKeyspace
	months int
	now    func() time.Time
}

func (j *preferenceRetentionJob) Name() string { return "preference-retention" }

func (j *preferenceRetentionJob) Run(ctx context.Context) error {
	// PreferencePrefix("") yields the keyspace root shared by all members.
	keys, err := j.kv.ListKeys(ctx, j.kv.PreferencePrefix(""))
	if err != nil {
		return fmt.Errorf("scan preference keys: %w", err)
	}

	cutoff := j.cutoff()
	var (
		errs    []error
		deleted int
		skipped int
	)
	for _, key := range keys {
		window, ok := windowFromKey(key)
		if !ok {
			skipped++
			continue
		}
		parsed, err := time.Parse(windowKeyLayout, window)
		if err != nil {
			skipped++
			continue
		}
		if !parsed.Before(cutoff) {
			continue
		}
		if err := j.kv.Del(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		} else {
			deleted++
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"scanned": len(keys),
		"deleted": deleted,
		"skipped": skipped,
		"cutoff":  cutoff.Format(windowKeyLayout),
	}), "preference retention sweep complete")
	return multierr.Combine(errs...)
}

func (j *preferenceRetentionJob) cutoff() time.Time {
	now := j.now().UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, -j.months, 0)
}

// windowFromKey extracts the trailing shipment window segment from a
// preference key of the form <namespace>:pref:<memberID>:<window>.
func windowFromKey(key string) (string, bool) {
	idx := strings.LastIndex(key, ":")
	if idx < 0 || idx == len(key)-1 {
		return "", false
	}
	return key[idx+1:], true
}
