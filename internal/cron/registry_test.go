package cron

import (
	"context"
	"testing"
)

type namedJob struct{ name string }

func (j *namedJob) Name() string              { return j.name }
func (j *namedJob) Run(context.Context) error { return nil }

func TestRegistryPreservesOrderAndIgnoresNil(t *testing.T) {
	retention := &namedJob{name: "outbox-retention"}
	cleanup := &namedJob{name: "day-stock-cleanup"}

	registry := NewRegistry(retention, nil, cleanup)
	registry.Register(nil)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Name() != "outbox-retention" || jobs[1].Name() != "day-stock-cleanup" {
		t.Fatalf("jobs out of order: %s, %s", jobs[0].Name(), jobs[1].Name())
	}
}

func TestRegistryJobsReturnsACopy(t *testing.T) {
	registry := NewRegistry(&namedJob{name: "outbox-retention"})

	jobs := registry.Jobs()
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatal("mutating the returned slice must not touch the registry")
	}
}
