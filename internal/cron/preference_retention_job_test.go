package cron

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/merlotworks/wineclub-backend/pkg/logger"
)

type fakePreferenceKeyspace struct {
	keys    []string
	listErr error
	delErr  error
	deleted []string
}

func (f *fakePreferenceKeyspace) ListKeys(_ context.Context, _ string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.keys, nil
}

func (f *fakePreferenceKeyspace) Del(_ context.Context, keys ...string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, keys...)
	return nil
}

func (f *fakePreferenceKeyspace) PreferencePrefix(memberID string) string {
	if memberID == "" {
		return "wineclub:pref"
	}
	return "wineclub:pref:" + memberID
}

func newPreferenceRetentionJob(t *testing.T, kv *fakePreferenceKeyspace, months int) *preferenceRetentionJob {
	t.Helper()
	jobIface, err := NewPreferenceRetentionJob(PreferenceRetentionJobParams{
		Logger:          logger.New(logger.Options{ServiceName: "test"}),
		KV:              kv,
		RetentionMonths: months,
	})
	if err != nil {
		t.Fatalf("NewPreferenceRetentionJob: %v", err)
	}
	job, ok := jobIface.(*preferenceRetentionJob)
	if !ok {
		t.Fatalf("expected preferenceRetentionJob, got %T", jobIface)
	}
	return job
}

func TestPreferenceRetentionDeletesOldWindows(t *testing.T) {
	kv := &fakePreferenceKeyspace{keys: []string{
		"wineclub:pref:member-a:2024-01",
		"wineclub:pref:member-a:2026-07",
		"wineclub:pref:member-b:2025-06",
		"wineclub:pref:member-b:2026-08",
	}}
	job := newPreferenceRetentionJob(t, kv, 12)
	job.now = func() time.Time { return time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC) }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	sort.Strings(kv.deleted)
	want := []string{
		"wineclub:pref:member-a:2024-01",
		"wineclub:pref:member-b:2025-06",
	}
	if len(kv.deleted) != len(want) {
		t.Fatalf("expected %d deletions, got %v", len(want), kv.deleted)
	}
	for i, key := range want {
		if kv.deleted[i] != key {
			t.Fatalf("expected deletion of %s, got %s", key, kv.deleted[i])
		}
	}
}

func TestPreferenceRetentionSkipsMalformedKeys(t *testing.T) {
	kv := &fakePreferenceKeyspace{keys: []string{
		"wineclub:pref:member-a:not-a-window",
		"wineclub:pref:member-a:",
	}}
	job := newPreferenceRetentionJob(t, kv, 12)
	job.now = func() time.Time { return time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC) }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(kv.deleted) != 0 {
		t.Fatalf("expected no deletions, got %v", kv.deleted)
	}
}

func TestPreferenceRetentionKeepsWindowAtHorizon(t *testing.T) {
	// Exactly at the cutoff month stays; only strictly older windows go.
	kv := &fakePreferenceKeyspace{keys: []string{
		"wineclub:pref:member-a:2025-08",
	}}
	job := newPreferenceRetentionJob(t, kv, 12)
	job.now = func() time.Time { return time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC) }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(kv.deleted) != 0 {
		t.Fatalf("expected horizon window to survive, got deletions %v", kv.deleted)
	}
}

func TestPreferenceRetentionPropagatesScanError(t *testing.T) {
	kv := &fakePreferenceKeyspace{listErr: errors.New("boom")}
	job := newPreferenceRetentionJob(t, kv, 12)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestPreferenceRetentionCollectsDeleteErrors(t *testing.T) {
	kv := &fakePreferenceKeyspace{
		keys:   []string{"wineclub:pref:member-a:2020-01"},
		delErr: errors.New("boom"),
	}
	job := newPreferenceRetentionJob(t, kv, 12)
	job.now = func() time.Time { return time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC) }

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected delete error to surface")
	}
}
