package observability_test

import (
	"testing"

	"github.com/tontinehub/tontine-admin-bfa/internal/infra/observability"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrCacheHit("snapshot")
	m.IncrCacheHit("snapshot")
	m.IncrCacheHit("snapshot")
	m.IncrCacheMiss("snapshot")
	m.IncrSnapshotFetch()
	m.IncrStoreError("list_users")
	m.IncrMutation("add_group", true)
	m.IncrMutation("make_deposit", true)
	m.IncrMutation("make_deposit", true)
	m.IncrMutation("delete_group", false)

	s := m.Snapshot()

	if s.SnapshotFetches != 1 {
		t.Errorf("expected 1 snapshot fetch, got %d", s.SnapshotFetches)
	}
	if s.CacheHitRate != 0.75 {
		t.Errorf("expected cache hit rate 0.75, got %f", s.CacheHitRate)
	}
	if s.StoreErrors != 1 {
		t.Errorf("expected 1 store error, got %d", s.StoreErrors)
	}
	if s.Mutations != 4 || s.FailedMutations != 1 {
		t.Errorf("expected 4 mutations with 1 failure, got %d/%d", s.Mutations, s.FailedMutations)
	}
	if s.MutationFailRate != 0.25 {
		t.Errorf("expected fail rate 0.25, got %f", s.MutationFailRate)
	}
}

func TestMetrics_EmptySnapshot(t *testing.T) {
	s := observability.NewMetrics().Snapshot()
	if s.CacheHitRate != 0 || s.MutationFailRate != 0 || s.Mutations != 0 {
		t.Errorf("expected zero snapshot, got %+v", s)
	}
}

func TestMetrics_RegistryGathers(t *testing.T) {
	m := observability.NewMetrics()
	m.SetMissed("today", 3)
	m.SetDepositTotals(1500, 2000, 3500)

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{"tontine_admin_missed_members", "tontine_admin_deposit_total_fc"} {
		if !found[name] {
			t.Errorf("expected %s to be registered", name)
		}
	}
}
