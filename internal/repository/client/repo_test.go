package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/attribute"
	domclient "github.com/kailas-cloud/matchdex/internal/domain/client"
)

func testProfile(t *testing.T, id string, emb []float32) domclient.Profile {
	t.Helper()
	p, err := domclient.New(id,
		attribute.NewSet(map[string]attribute.Value{
			"budget_max": attribute.Number(500000),
			"locations":  attribute.List("Sunnyvale"),
		}),
		[]string{"buyer"}, []string{"first-time"}, "likes parks", emb, 0)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSaveGet_RoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t, 2)
	ctx := context.Background()

	if err := repo.Save(ctx, testProfile(t, "c1", []float32{0.5, -1})); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.ID() != "c1" || got.Notes() != "likes parks" {
		t.Errorf("unexpected profile: %+v", got)
	}
	if v, _, _ := got.Preferences().Float("budget_max"); v != 500000 {
		t.Errorf("budget_max = %v", v)
	}
	if locs := got.Preferences().Strings("locations"); !slices.Equal(locs, []string{"Sunnyvale"}) {
		t.Errorf("locations = %v", locs)
	}
	if !slices.Equal(got.Embedding(), []float32{0.5, -1}) {
		t.Errorf("embedding = %v", got.Embedding())
	}
	if !got.HasTag("first-time") || got.UpdatedAt() != 1760000000000 {
		t.Errorf("tags or timestamp lost: %v %d", got.Tags(), got.UpdatedAt())
	}
}

func TestSave_WithoutEmbeddingDropsStored(t *testing.T) {
	repo, ms := newTestRepo(t, 0)
	ctx := context.Background()

	_ = repo.Save(ctx, testProfile(t, "c1", []float32{1}))
	_ = repo.Save(ctx, testProfile(t, "c1", nil))

	if _, ok := ms.hashes[clientKey("c1")][fieldEmbedding]; ok {
		t.Error("stale embedding must be removed")
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t, 0)
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList_SortedByID(t *testing.T) {
	repo, _ := newTestRepo(t, 0)
	ctx := context.Background()
	for _, id := range []string{"c3", "c1", "c2"} {
		_ = repo.Save(ctx, testProfile(t, id, nil))
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	ids := make([]string, len(got))
	for i, p := range got {
		ids[i] = p.ID()
	}
	if !slices.Equal(ids, []string{"c1", "c2", "c3"}) {
		t.Errorf("unexpected order: %v", ids)
	}
}

func TestList_ScanError(t *testing.T) {
	repo, ms := newTestRepo(t, 0)
	ms.scanErr = errors.New("conn reset")
	if _, err := repo.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSetEmbedding(t *testing.T) {
	repo, _ := newTestRepo(t, 2)
	ctx := context.Background()
	_ = repo.Save(ctx, testProfile(t, "c1", nil))

	if err := repo.SetEmbedding(ctx, "c1", []float32{1, 2}); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _ := repo.Get(ctx, "c1")
	if !slices.Equal(got.Embedding(), []float32{1, 2}) {
		t.Errorf("embedding = %v", got.Embedding())
	}

	if err := repo.SetEmbedding(ctx, "c1", []float32{1}); !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch, got %v", err)
	}
	if err := repo.SetEmbedding(ctx, "ghost", []float32{1, 2}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := repo.ClearEmbedding(ctx, "c1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = repo.Get(ctx, "c1")
	if got.HasEmbedding() {
		t.Error("expected cleared embedding")
	}
}

func TestAppendMessage_KeepsNewest(t *testing.T) {
	repo, _ := newTestRepo(t, 0)
	ctx := context.Background()
	_ = repo.Save(ctx, testProfile(t, "c1", nil))

	for i := range MaxMessages + 3 {
		if err := repo.AppendMessage(ctx, "c1", fmt.Sprintf("m%d", i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	msgs, err := repo.Messages(ctx, "c1")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != MaxMessages || msgs[0] != "m3" {
		t.Errorf("expected newest %d messages starting at m3, got %d starting %q", MaxMessages, len(msgs), msgs[0])
	}
}

func TestSave_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t, 0)
	ms.hsetErr = errors.New("readonly")
	if err := repo.Save(context.Background(), testProfile(t, "c1", nil)); err == nil {
		t.Fatal("expected error")
	}
}

func TestMessages_UnknownClient(t *testing.T) {
	repo, _ := newTestRepo(t, 0)
	if _, err := repo.Messages(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.AppendMessage(context.Background(), "ghost", "hi"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on append, got %v", err)
	}
}

func TestDelete_DropsMessageLog(t *testing.T) {
	repo, ms := newTestRepo(t, 0)
	ctx := context.Background()
	_ = repo.Save(ctx, testProfile(t, "c1", nil))
	_ = repo.AppendMessage(ctx, "c1", "looking in Sunnyvale", "under 900k")

	if err := repo.Delete(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(ms.hashes) != 0 || len(ms.lists) != 0 {
		t.Errorf("expected profile and messages gone, got %v / %v", ms.hashes, ms.lists)
	}
}
