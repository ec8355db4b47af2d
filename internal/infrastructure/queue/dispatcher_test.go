package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicwatch/report-system/internal/core/domain"
)

type recordingRepo struct {
	mu      sync.Mutex
	entries []domain.ReportActivity
	failFor string
}

func (r *recordingRepo) Insert(_ context.Context, a *domain.ReportActivity) error {
	if a.ReportID == r.failFor {
		return errors.New("write failed")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *a)
	return nil
}

func (r *recordingRepo) ListByReport(_ context.Context, reportID string, limit int) ([]*domain.ReportActivity, error) {
	return nil, nil
}

func (r *recordingRepo) byReport(id string) []domain.ReportActivity {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ReportActivity
	for _, e := range r.entries {
		if e.ReportID == id {
			out = append(out, e)
		}
	}
	return out
}

func TestDispatcherPreservesPerReportOrder(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())
	d.Start(context.Background())

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	reports := []string{"r1", "r2", "r3"}
	for i := 0; i < 20; i++ {
		for _, id := range reports {
			d.Publish(domain.ReportActivity{
				ReportID: id,
				Action:   domain.ActionUpdated,
				At:       base.Add(time.Duration(i) * time.Second),
			})
		}
	}
	d.Close()

	for _, id := range reports {
		got := repo.byReport(id)
		if len(got) != 20 {
			t.Fatalf("%s: expected 20 entries, got %d", id, len(got))
		}
		for i := 1; i < len(got); i++ {
			if !got[i].At.After(got[i-1].At) {
				t.Fatalf("%s: entries out of order at %d", id, i)
			}
		}
	}
}

func TestDispatcherShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingRepo{}, zerolog.Nop())
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("report-%d", i)
		first := d.shardIndex(id)
		if first < 0 || first >= 8 {
			t.Fatalf("shard %d out of range", first)
		}
		if d.shardIndex(id) != first {
			t.Fatalf("shard for %s changed", id)
		}
	}
}

func TestDispatcherDefaultsWorkers(t *testing.T) {
	d := NewDispatcher(0, &recordingRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}

func TestDispatcherInsertFailureDoesNotStopWorker(t *testing.T) {
	repo := &recordingRepo{failFor: "bad"}
	d := NewDispatcher(1, repo, zerolog.Nop())
	d.Start(context.Background())

	d.Publish(domain.ReportActivity{ReportID: "bad", Action: domain.ActionCreated})
	d.Publish(domain.ReportActivity{ReportID: "good", Action: domain.ActionCreated})
	d.Close()

	if got := repo.byReport("good"); len(got) != 1 {
		t.Fatalf("expected entry after failure to be recorded, got %d", len(got))
	}
}

func TestDispatcherPublishAfterCloseIsDropped(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(2, repo, zerolog.Nop())
	d.Start(context.Background())
	d.Close()
	d.Close()

	d.Publish(domain.ReportActivity{ReportID: "r1", Action: domain.ActionCreated})
	if got := repo.byReport("r1"); len(got) != 0 {
		t.Fatalf("expected no entries after close, got %d", len(got))
	}
}

func TestDispatcherFullQueueDrops(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())

	// Workers not started: the buffer fills and further entries are dropped.
	for i := 0; i < channelBuffer+10; i++ {
		d.Publish(domain.ReportActivity{ReportID: "r1", Action: domain.ActionUpdated})
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected buffer to hold %d entries, got %d", channelBuffer, got)
	}
}
