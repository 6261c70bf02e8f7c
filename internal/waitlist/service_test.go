package waitlist

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"slotly/internal/pools"

	"github.com/google/uuid"
)

// fakeRepository is an in-memory Repository that mirrors the transactional
// semantics of the postgres implementation.
type fakeRepository struct {
	mu      sync.Mutex
	pools   map[uuid.UUID]*pools.ResourcePool
	entries map[uuid.UUID][]*WaitlistEntry
}

var (
	_ Repository = (*fakeRepository)(nil)
	_ PoolStore  = (*fakeRepository)(nil)
)

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		pools:   make(map[uuid.UUID]*pools.ResourcePool),
		entries: make(map[uuid.UUID][]*WaitlistEntry),
	}
}

func (f *fakeRepository) addPool(pool *pools.ResourcePool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pools[pool.ID] = pool
}

func (f *fakeRepository) GetPool(ctx context.Context, id uuid.UUID) (*pools.ResourcePool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pool, ok := f.pools[id]
	if !ok {
		return nil, pools.ErrPoolNotFound
	}
	return pool, nil
}

func (f *fakeRepository) Join(ctx context.Context, poolID uuid.UUID, participantID int64) (*WaitlistEntry, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pool, ok := f.pools[poolID]
	if !ok {
		return nil, 0, pools.ErrPoolNotFound
	}
	if pool.Kind != pools.KindWaitlist {
		return nil, 0, pools.ErrWrongKind
	}

	existing := f.entries[poolID]
	for _, e := range existing {
		if e.ParticipantID == participantID {
			return nil, 0, ErrAlreadyMember
		}
	}
	if pool.Capacity != nil && len(existing) >= *pool.Capacity {
		return nil, 0, ErrFull
	}

	entry := &WaitlistEntry{
		ID:            uuid.New(),
		PoolID:        poolID,
		ParticipantID: participantID,
		Position:      len(existing) + 1,
		JoinedAt:      time.Now(),
	}
	f.entries[poolID] = append(existing, entry)
	return entry, len(f.entries[poolID]), nil
}

func (f *fakeRepository) Leave(ctx context.Context, poolID uuid.UUID, participantID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.pools[poolID]; !ok {
		return pools.ErrPoolNotFound
	}

	entries := f.entries[poolID]
	idx := -1
	for i, e := range entries {
		if e.ParticipantID == participantID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotMember
	}

	removed := entries[idx].Position
	entries = append(entries[:idx], entries[idx+1:]...)
	for _, e := range entries {
		if e.Position > removed {
			e.Position--
		}
	}
	f.entries[poolID] = entries
	return nil
}

func (f *fakeRepository) List(ctx context.Context, poolID uuid.UUID) ([]WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries := make([]WaitlistEntry, 0, len(f.entries[poolID]))
	for _, e := range f.entries[poolID] {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })
	return entries, nil
}

func (f *fakeRepository) Count(ctx context.Context, poolID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries[poolID]), nil
}

func newTestService(repo *fakeRepository) Service {
	return NewService(repo, repo, nil, nil, nil, nil)
}

func boundedPool(capacity int) *pools.ResourcePool {
	return &pools.ResourcePool{ID: uuid.New(), Kind: pools.KindWaitlist, Capacity: &capacity}
}

func TestJoinAssignsDensePositions(t *testing.T) {
	repo := newFakeRepository()
	pool := boundedPool(10)
	repo.addPool(pool)
	svc := newTestService(repo)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		resp, err := svc.Join(ctx, pool.ID, i)
		if err != nil {
			t.Fatalf("join participant %d: %v", i, err)
		}
		if resp.Position != int(i) {
			t.Errorf("participant %d got position %d, want %d", i, resp.Position, i)
		}
		if resp.Total != int(i) {
			t.Errorf("participant %d saw total %d, want %d", i, resp.Total, i)
		}
	}
}

func TestJoinRejectsDuplicateMember(t *testing.T) {
	repo := newFakeRepository()
	pool := boundedPool(10)
	repo.addPool(pool)
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.Join(ctx, pool.ID, 42); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := svc.Join(ctx, pool.ID, 42); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("second join err = %v, want ErrAlreadyMember", err)
	}

	// The failed join must not have consumed a slot
	count, _ := repo.Count(ctx, pool.ID)
	if count != 1 {
		t.Errorf("member count = %d after rejected join, want 1", count)
	}
}

func TestJoinRejectsWhenFull(t *testing.T) {
	repo := newFakeRepository()
	pool := boundedPool(2)
	repo.addPool(pool)
	svc := newTestService(repo)
	ctx := context.Background()

	for i := int64(1); i <= 2; i++ {
		if _, err := svc.Join(ctx, pool.ID, i); err != nil {
			t.Fatalf("join participant %d: %v", i, err)
		}
	}
	if _, err := svc.Join(ctx, pool.ID, 3); !errors.Is(err, ErrFull) {
		t.Errorf("join on full pool err = %v, want ErrFull", err)
	}
}

func TestJoinUnboundedPoolNeverFills(t *testing.T) {
	repo := newFakeRepository()
	pool := &pools.ResourcePool{ID: uuid.New(), Kind: pools.KindWaitlist}
	repo.addPool(pool)
	svc := newTestService(repo)
	ctx := context.Background()

	for i := int64(1); i <= 200; i++ {
		if _, err := svc.Join(ctx, pool.ID, i); err != nil {
			t.Fatalf("join participant %d: %v", i, err)
		}
	}
}

func TestJoinWrongKind(t *testing.T) {
	repo := newFakeRepository()
	pool := &pools.ResourcePool{ID: uuid.New(), Kind: pools.KindReservationSet, MaxPerUnit: 1}
	repo.addPool(pool)
	svc := newTestService(repo)

	if _, err := svc.Join(context.Background(), pool.ID, 1); !errors.Is(err, pools.ErrWrongKind) {
		t.Errorf("join err = %v, want ErrWrongKind", err)
	}
}

func TestLeaveCompactsPositions(t *testing.T) {
	repo := newFakeRepository()
	pool := boundedPool(10)
	repo.addPool(pool)
	svc := newTestService(repo)
	ctx := context.Background()

	// A, B, C, D join in order
	participants := []int64{100, 200, 300, 400}
	for _, p := range participants {
		if _, err := svc.Join(ctx, pool.ID, p); err != nil {
			t.Fatalf("join %d: %v", p, err)
		}
	}

	// B leaves; A keeps 1, C and D shift down
	if err := svc.Leave(ctx, pool.ID, 200); err != nil {
		t.Fatalf("leave: %v", err)
	}

	view, err := svc.View(ctx, pool.ID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}

	want := []Slot{
		{Position: 1, ParticipantID: 100},
		{Position: 2, ParticipantID: 300},
		{Position: 3, ParticipantID: 400},
	}
	if len(view.Slots) != len(want) {
		t.Fatalf("got %d slots, want %d", len(view.Slots), len(want))
	}
	for i, slot := range view.Slots {
		if slot != want[i] {
			t.Errorf("slot %d = %+v, want %+v", i, slot, want[i])
		}
	}
}

func TestLeaveNotMember(t *testing.T) {
	repo := newFakeRepository()
	pool := boundedPool(10)
	repo.addPool(pool)
	svc := newTestService(repo)
	ctx := context.Background()

	if err := svc.Leave(ctx, pool.ID, 999); !errors.Is(err, ErrNotMember) {
		t.Errorf("leave err = %v, want ErrNotMember", err)
	}

	// Idempotent failure: leave-then-leave reports NotMember without side effects
	if _, err := svc.Join(ctx, pool.ID, 7); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := svc.Leave(ctx, pool.ID, 7); err != nil {
		t.Fatalf("first leave: %v", err)
	}
	if err := svc.Leave(ctx, pool.ID, 7); !errors.Is(err, ErrNotMember) {
		t.Errorf("second leave err = %v, want ErrNotMember", err)
	}
}

func TestStatsReportsRemaining(t *testing.T) {
	repo := newFakeRepository()
	pool := boundedPool(5)
	repo.addPool(pool)
	svc := newTestService(repo)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		if _, err := svc.Join(ctx, pool.ID, i); err != nil {
			t.Fatalf("join: %v", err)
		}
	}

	stats, err := svc.Stats(ctx, pool.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.MemberCount != 3 {
		t.Errorf("member count = %d, want 3", stats.MemberCount)
	}
	if stats.Remaining == nil || *stats.Remaining != 2 {
		t.Errorf("remaining = %v, want 2", stats.Remaining)
	}
}

func TestStatsUnboundedPool(t *testing.T) {
	repo := newFakeRepository()
	pool := &pools.ResourcePool{ID: uuid.New(), Kind: pools.KindWaitlist}
	repo.addPool(pool)
	svc := newTestService(repo)

	stats, err := svc.Stats(context.Background(), pool.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Capacity != nil || stats.Remaining != nil {
		t.Errorf("unbounded pool should report nil capacity and remaining, got %v / %v", stats.Capacity, stats.Remaining)
	}
}

func TestViewPoolNotFound(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	if _, err := svc.View(context.Background(), uuid.New()); !errors.Is(err, pools.ErrPoolNotFound) {
		t.Errorf("view err = %v, want ErrPoolNotFound", err)
	}
}
