package store

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := Open(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func mustLand(t *testing.T, st *Store) *Land {
	t.Helper()
	land, err := st.CreateLand(context.Background(), "land-"+t.Name(), "", []string{"fr"})
	if err != nil {
		t.Fatalf("create land: %v", err)
	}
	return land
}

func mustExpression(t *testing.T, st *Store, landID int64, url string, depth int) *Expression {
	t.Helper()
	expr, err := st.UpsertExpression(context.Background(), landID, url, URLHash(url), nil, depth)
	if err != nil {
		t.Fatalf("upsert %q: %v", url, err)
	}
	return expr
}

func TestUpsertExpressionIdempotent(t *testing.T) {
	st := openTestStore(t)
	land := mustLand(t, st)

	first := mustExpression(t, st, land.ID, "https://example.org/a", 2)
	again := mustExpression(t, st, land.ID, "https://example.org/a", 0)

	if first.ID != again.ID {
		t.Fatalf("rediscovery created a new row: %d vs %d", first.ID, again.ID)
	}
	if again.Depth != 2 {
		t.Errorf("depth = %d after shallower rediscovery, want 2", again.Depth)
	}
}

func TestUpsertExpressionLandScoped(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	a := mustLand(t, st)
	b, err := st.CreateLand(ctx, "other-"+t.Name(), "", []string{"en"})
	if err != nil {
		t.Fatal(err)
	}

	ea := mustExpression(t, st, a.ID, "https://example.org/x", 0)
	eb := mustExpression(t, st, b.ID, "https://example.org/x", 0)
	if ea.ID == eb.ID {
		t.Error("same URL in two lands shares a row")
	}
}

func TestSelectCrawlBatchOrderAndFilter(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	land := mustLand(t, st)

	deep := mustExpression(t, st, land.ID, "https://example.org/deep", 3)
	shallow := mustExpression(t, st, land.ID, "https://example.org/shallow", 0)
	approved := mustExpression(t, st, land.ID, "https://example.org/done", 0)

	now := time.Now().UTC()
	approved.ApprovedAt = &now
	if err := st.UpdateExpression(ctx, approved); err != nil {
		t.Fatal(err)
	}

	batch, err := st.SelectCrawlBatch(ctx, land.ID, 10, CrawlFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 2 {
		t.Fatalf("batch size = %d, want 2", len(batch))
	}
	if batch[0].ID != shallow.ID || batch[1].ID != deep.ID {
		t.Errorf("batch order = [%d %d], want depth ascending", batch[0].ID, batch[1].ID)
	}

	depth := 3
	filtered, err := st.SelectCrawlBatch(ctx, land.ID, 10, CrawlFilter{Depth: &depth})
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 || filtered[0].ID != deep.ID {
		t.Errorf("depth filter returned %d rows", len(filtered))
	}
}

func TestInsertLinkPairDedup(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	land := mustLand(t, st)

	a := mustExpression(t, st, land.ID, "https://example.org/a", 0)
	b := mustExpression(t, st, land.ID, "https://example.org/b", 1)

	wrote, err := st.InsertLink(ctx, &ExpressionLink{SourceID: a.ID, TargetID: b.ID, LinkType: LinkInternal})
	if err != nil || !wrote {
		t.Fatalf("first insert: wrote=%v err=%v", wrote, err)
	}
	wrote, err = st.InsertLink(ctx, &ExpressionLink{SourceID: a.ID, TargetID: b.ID, LinkType: LinkInternal})
	if err != nil || wrote {
		t.Errorf("same direction repeat: wrote=%v err=%v", wrote, err)
	}
	wrote, err = st.InsertLink(ctx, &ExpressionLink{SourceID: b.ID, TargetID: a.ID, LinkType: LinkInternal})
	if err != nil || wrote {
		t.Errorf("reverse direction: wrote=%v err=%v", wrote, err)
	}
	if _, err := st.InsertLink(ctx, &ExpressionLink{SourceID: a.ID, TargetID: a.ID, LinkType: LinkInternal}); err == nil {
		t.Error("self edge accepted")
	}
}

func TestInsertMediaDedup(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	land := mustLand(t, st)
	expr := mustExpression(t, st, land.ID, "https://example.org/a", 0)

	url := "https://example.org/img.png"
	id1, created, err := st.InsertMedia(ctx, expr.ID, url, URLHash(url), MediaImage)
	if err != nil || !created {
		t.Fatalf("first insert: created=%v err=%v", created, err)
	}
	id2, created, err := st.InsertMedia(ctx, expr.ID, url, URLHash(url), MediaImage)
	if err != nil || created {
		t.Errorf("repeat insert: created=%v err=%v", created, err)
	}
	if id1 != id2 {
		t.Errorf("repeat insert changed id: %d vs %d", id1, id2)
	}
}

func TestRepairApprovals(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	land := mustLand(t, st)

	now := time.Now().UTC()
	relevant := mustExpression(t, st, land.ID, "https://example.org/hit", 0)
	score := 4.2
	relevant.ApprovedAt = &now
	relevant.Relevance = &score
	if err := st.UpdateExpression(ctx, relevant); err != nil {
		t.Fatal(err)
	}

	irrelevant := mustExpression(t, st, land.ID, "https://example.org/miss", 0)
	zero := 0.0
	irrelevant.ApprovedAt = &now
	irrelevant.Relevance = &zero
	if err := st.UpdateExpression(ctx, irrelevant); err != nil {
		t.Fatal(err)
	}

	repaired, err := st.RepairApprovals(ctx, land.ID)
	if err != nil {
		t.Fatal(err)
	}
	if repaired != 1 {
		t.Fatalf("repaired = %d, want 1", repaired)
	}

	got, _ := st.GetExpression(ctx, irrelevant.ID)
	if got.ApprovedAt != nil {
		t.Error("zero-relevance expression kept its approval")
	}
	got, _ = st.GetExpression(ctx, relevant.ID)
	if got.ApprovedAt == nil {
		t.Error("relevant expression lost its approval")
	}
}

func TestJobLifecycleCAS(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	land := mustLand(t, st)

	job := &CrawlJob{ID: "job-1", LandID: land.ID, JobType: "crawl", Status: JobPending, Channel: "crawl_progress_job-1"}
	if err := st.CreateJob(ctx, job); err != nil {
		t.Fatal(err)
	}

	ok, err := st.MarkJobRunning(ctx, job.ID)
	if err != nil || !ok {
		t.Fatalf("first start: ok=%v err=%v", ok, err)
	}
	ok, err = st.MarkJobRunning(ctx, job.ID)
	if err != nil || ok {
		t.Errorf("second start: ok=%v err=%v", ok, err)
	}

	if err := st.FinishJob(ctx, job.ID, JobCompleted, nil, nil); err != nil {
		t.Fatal(err)
	}
	got, err := st.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != JobCompleted || got.StartedAt == nil || got.CompletedAt == nil {
		t.Errorf("job = %+v, want completed with both timestamps", got)
	}

	// A finished job cannot be cancelled.
	cancelled, err := st.CancelJob(ctx, job.ID)
	if err != nil || cancelled {
		t.Errorf("cancel after completion: cancelled=%v err=%v", cancelled, err)
	}
}

func TestDeleteLandCascades(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	land := mustLand(t, st)
	expr := mustExpression(t, st, land.ID, "https://example.org/a", 0)
	url := "https://example.org/img.png"
	if _, _, err := st.InsertMedia(ctx, expr.ID, url, URLHash(url), MediaImage); err != nil {
		t.Fatal(err)
	}

	if err := st.DeleteLand(ctx, land.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := st.GetExpression(ctx, expr.ID); err == nil {
		t.Error("expression survived land deletion")
	}
}
