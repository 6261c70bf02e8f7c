package gateway

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"slotly/internal/pools"
	"slotly/internal/reservations"
	"slotly/internal/waitlist"

	"github.com/google/uuid"
)

// memStore backs the gateway tests with in-memory allocation state that
// mirrors the transactional semantics of the postgres repositories.
type memStore struct {
	mu     sync.Mutex
	pools  map[uuid.UUID]*pools.ResourcePool
	topics map[uuid.UUID]*pools.Topic
	lists  map[uuid.UUID][]*waitlist.WaitlistEntry
	resvs  []*reservations.Reservation
}

var (
	_ waitlist.Repository     = (*memStore)(nil)
	_ waitlist.PoolStore      = (*memStore)(nil)
	_ reservations.Repository = (*memStore)(nil)
	_ reservations.Catalog    = (*memStore)(nil)
	_ pools.Service           = (*fakePoolsService)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		pools:  make(map[uuid.UUID]*pools.ResourcePool),
		topics: make(map[uuid.UUID]*pools.Topic),
		lists:  make(map[uuid.UUID][]*waitlist.WaitlistEntry),
	}
}

// waitlist.Repository

func (m *memStore) Join(ctx context.Context, poolID uuid.UUID, participantID int64) (*waitlist.WaitlistEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pool, ok := m.pools[poolID]
	if !ok {
		return nil, 0, pools.ErrPoolNotFound
	}
	if pool.Kind != pools.KindWaitlist {
		return nil, 0, pools.ErrWrongKind
	}
	entries := m.lists[poolID]
	for _, e := range entries {
		if e.ParticipantID == participantID {
			return nil, 0, waitlist.ErrAlreadyMember
		}
	}
	if pool.Capacity != nil && len(entries) >= *pool.Capacity {
		return nil, 0, waitlist.ErrFull
	}
	entry := &waitlist.WaitlistEntry{
		ID:            uuid.New(),
		PoolID:        poolID,
		ParticipantID: participantID,
		Position:      len(entries) + 1,
		JoinedAt:      time.Now(),
	}
	m.lists[poolID] = append(entries, entry)
	return entry, len(m.lists[poolID]), nil
}

func (m *memStore) Leave(ctx context.Context, poolID uuid.UUID, participantID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pools[poolID]; !ok {
		return pools.ErrPoolNotFound
	}
	entries := m.lists[poolID]
	idx := -1
	for i, e := range entries {
		if e.ParticipantID == participantID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return waitlist.ErrNotMember
	}
	removed := entries[idx].Position
	entries = append(entries[:idx], entries[idx+1:]...)
	for _, e := range entries {
		if e.Position > removed {
			e.Position--
		}
	}
	m.lists[poolID] = entries
	return nil
}

func (m *memStore) List(ctx context.Context, poolID uuid.UUID) ([]waitlist.WaitlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]waitlist.WaitlistEntry, 0, len(m.lists[poolID]))
	for _, e := range m.lists[poolID] {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })
	return entries, nil
}

func (m *memStore) Count(ctx context.Context, poolID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lists[poolID]), nil
}

// reservations.Repository

func (m *memStore) confirmedCount(topicID uuid.UUID) int {
	count := 0
	for _, r := range m.resvs {
		if r.TopicID == topicID && r.Confirmed {
			count++
		}
	}
	return count
}

func (m *memStore) resolveTopic(topicID uuid.UUID) (*pools.Topic, *pools.ResourcePool, error) {
	topic, ok := m.topics[topicID]
	if !ok {
		return nil, nil, pools.ErrTopicNotFound
	}
	pool, ok := m.pools[topic.PoolID]
	if !ok {
		return nil, nil, pools.ErrPoolNotFound
	}
	if pool.Kind != pools.KindReservationSet {
		return nil, nil, pools.ErrWrongKind
	}
	return topic, pool, nil
}

func (m *memStore) Claim(ctx context.Context, topicID uuid.UUID, participantID int64) (*reservations.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	topic, pool, err := m.resolveTopic(topicID)
	if err != nil {
		return nil, err
	}
	for _, r := range m.resvs {
		if r.TopicID == topicID && r.ParticipantID == participantID {
			return nil, reservations.ErrAlreadyReserved
		}
	}
	if m.confirmedCount(topicID) >= pool.MaxPerUnit {
		return nil, reservations.ErrTopicFull
	}
	reservation := &reservations.Reservation{
		ID:            uuid.New(),
		TopicID:       topicID,
		PoolID:        topic.PoolID,
		ParticipantID: participantID,
		CreatedAt:     time.Now(),
	}
	m.resvs = append(m.resvs, reservation)
	return reservation, nil
}

func (m *memStore) Confirm(ctx context.Context, topicID uuid.UUID, participantID, confirmerID int64) (*reservations.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, pool, err := m.resolveTopic(topicID)
	if err != nil {
		return nil, err
	}
	var target *reservations.Reservation
	for _, r := range m.resvs {
		if r.TopicID == topicID && r.ParticipantID == participantID && !r.Confirmed {
			target = r
			break
		}
	}
	if target == nil {
		return nil, reservations.ErrReservationNotFound
	}
	if m.confirmedCount(topicID) >= pool.MaxPerUnit {
		return nil, reservations.ErrTopicFull
	}
	now := time.Now()
	target.Confirmed = true
	target.ConfirmedBy = &confirmerID
	target.ConfirmedAt = &now
	return target, nil
}

func (m *memStore) Release(ctx context.Context, topicID uuid.UUID, participantID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, _, err := m.resolveTopic(topicID); err != nil {
		return err
	}
	for i, r := range m.resvs {
		if r.TopicID == topicID && r.ParticipantID == participantID {
			m.resvs = append(m.resvs[:i], m.resvs[i+1:]...)
			return nil
		}
	}
	return reservations.ErrReservationNotFound
}

func (m *memStore) ListByTopic(ctx context.Context, topicID uuid.UUID) ([]*reservations.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*reservations.Reservation
	for _, r := range m.resvs {
		if r.TopicID == topicID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListByPool(ctx context.Context, poolID uuid.UUID) ([]*reservations.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*reservations.Reservation
	for _, r := range m.resvs {
		if r.PoolID == poolID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) CountConfirmed(ctx context.Context, topicID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.confirmedCount(topicID), nil
}

// waitlist.PoolStore and reservations.Catalog

func (m *memStore) GetPool(ctx context.Context, id uuid.UUID) (*pools.ResourcePool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pool, ok := m.pools[id]
	if !ok {
		return nil, pools.ErrPoolNotFound
	}
	return pool, nil
}

func (m *memStore) GetTopic(ctx context.Context, id uuid.UUID) (*pools.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	topic, ok := m.topics[id]
	if !ok {
		return nil, pools.ErrTopicNotFound
	}
	return topic, nil
}

func (m *memStore) ListTopics(ctx context.Context, poolID uuid.UUID) ([]pools.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []pools.Topic
	for _, t := range m.topics {
		if t.PoolID == poolID {
			out = append(out, *t)
		}
	}
	return out, nil
}

// fakePoolsService adapts memStore to pools.Service for the gateway
type fakePoolsService struct {
	store *memStore
}

func (f *fakePoolsService) CreatePool(ctx context.Context, request *pools.CreatePoolRequest) (*pools.PoolResponse, error) {
	pool := &pools.ResourcePool{
		ID:           uuid.New(),
		Kind:         request.Kind,
		Capacity:     request.Capacity,
		MaxPerUnit:   request.MaxPerUnit,
		OwnerEventID: request.OwnerEventID,
	}
	f.store.mu.Lock()
	f.store.pools[pool.ID] = pool
	f.store.mu.Unlock()
	return &pools.PoolResponse{ID: pool.ID, Kind: pool.Kind, Capacity: pool.Capacity, MaxPerUnit: pool.MaxPerUnit}, nil
}

func (f *fakePoolsService) GetPool(ctx context.Context, id uuid.UUID) (*pools.PoolResponse, error) {
	pool, err := f.store.GetPool(ctx, id)
	if err != nil {
		return nil, err
	}
	return &pools.PoolResponse{ID: pool.ID, Kind: pool.Kind, Capacity: pool.Capacity, MaxPerUnit: pool.MaxPerUnit}, nil
}

func (f *fakePoolsService) DeletePool(ctx context.Context, id uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, ok := f.store.pools[id]; !ok {
		return pools.ErrPoolNotFound
	}
	delete(f.store.pools, id)
	delete(f.store.lists, id)
	for topicID, topic := range f.store.topics {
		if topic.PoolID == id {
			delete(f.store.topics, topicID)
		}
	}
	kept := f.store.resvs[:0]
	for _, r := range f.store.resvs {
		if r.PoolID != id {
			kept = append(kept, r)
		}
	}
	f.store.resvs = kept
	return nil
}

func (f *fakePoolsService) AddTopic(ctx context.Context, poolID uuid.UUID, request *pools.AddTopicRequest) (*pools.TopicResponse, error) {
	topic := &pools.Topic{ID: uuid.New(), PoolID: poolID, Title: request.Title}
	f.store.mu.Lock()
	f.store.topics[topic.ID] = topic
	f.store.mu.Unlock()
	return &pools.TopicResponse{ID: topic.ID, PoolID: poolID, Title: topic.Title}, nil
}

func (f *fakePoolsService) ListTopics(ctx context.Context, poolID uuid.UUID) ([]pools.TopicResponse, error) {
	topics, _ := f.store.ListTopics(ctx, poolID)
	out := make([]pools.TopicResponse, 0, len(topics))
	for _, t := range topics {
		out = append(out, pools.TopicResponse{ID: t.ID, PoolID: t.PoolID, Title: t.Title})
	}
	return out, nil
}

func (f *fakePoolsService) DeleteTopic(ctx context.Context, poolID, topicID uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	topic, ok := f.store.topics[topicID]
	if !ok || topic.PoolID != poolID {
		return pools.ErrTopicNotFound
	}
	delete(f.store.topics, topicID)
	kept := f.store.resvs[:0]
	for _, r := range f.store.resvs {
		if r.TopicID != topicID {
			kept = append(kept, r)
		}
	}
	f.store.resvs = kept
	return nil
}

func (f *fakePoolsService) ResolveTopicPool(ctx context.Context, topicID uuid.UUID) (uuid.UUID, error) {
	topic, err := f.store.GetTopic(ctx, topicID)
	if err != nil {
		return uuid.Nil, err
	}
	return topic.PoolID, nil
}

func newTestGateway(t *testing.T) (*Gateway, *memStore) {
	t.Helper()
	store := newMemStore()
	poolsSvc := &fakePoolsService{store: store}
	waitlistSvc := waitlist.NewService(store, store, nil, nil, nil, nil)
	reservationsSvc := reservations.NewService(store, store, nil, nil, nil, nil)
	g := New(poolsSvc, waitlistSvc, reservationsSvc, NewLockStore(WithCleanupEvery(0)))
	t.Cleanup(g.Close)
	return g, store
}

func addWaitlistPool(store *memStore, capacity *int) uuid.UUID {
	pool := &pools.ResourcePool{ID: uuid.New(), Kind: pools.KindWaitlist, Capacity: capacity}
	store.mu.Lock()
	store.pools[pool.ID] = pool
	store.mu.Unlock()
	return pool.ID
}

func addReservationPool(store *memStore, maxPerTopic int) (uuid.UUID, uuid.UUID) {
	pool := &pools.ResourcePool{ID: uuid.New(), Kind: pools.KindReservationSet, MaxPerUnit: maxPerTopic}
	topic := &pools.Topic{ID: uuid.New(), PoolID: pool.ID, Title: "round one"}
	store.mu.Lock()
	store.pools[pool.ID] = pool
	store.topics[topic.ID] = topic
	store.mu.Unlock()
	return pool.ID, topic.ID
}

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	g, store := newTestGateway(t)
	capacity := 10
	poolID := addWaitlistPool(store, &capacity)
	ctx := context.Background()

	const joiners = 50
	var wg sync.WaitGroup
	errs := make([]error, joiners)

	wg.Add(joiners)
	for i := 0; i < joiners; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = g.JoinWaitlist(ctx, poolID, int64(i+1))
		}(i)
	}
	wg.Wait()

	succeeded, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, waitlist.ErrFull):
			full++
		default:
			t.Errorf("unexpected join error: %v", err)
		}
	}
	if succeeded != capacity {
		t.Errorf("%d joins succeeded, want %d", succeeded, capacity)
	}
	if full != joiners-capacity {
		t.Errorf("%d joins saw ErrFull, want %d", full, joiners-capacity)
	}

	view, err := g.ViewWaitlist(ctx, poolID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Count != capacity {
		t.Fatalf("view count = %d, want %d", view.Count, capacity)
	}
	seen := make(map[int64]bool)
	for i, slot := range view.Slots {
		if slot.Position != i+1 {
			t.Errorf("slot %d has position %d, want %d", i, slot.Position, i+1)
		}
		if seen[slot.ParticipantID] {
			t.Errorf("participant %d appears twice", slot.ParticipantID)
		}
		seen[slot.ParticipantID] = true
	}
}

func TestConcurrentJoinsAndLeavesStayDense(t *testing.T) {
	g, store := newTestGateway(t)
	poolID := addWaitlistPool(store, nil)
	ctx := context.Background()

	const participants = 40
	var wg sync.WaitGroup
	wg.Add(participants)
	for i := 0; i < participants; i++ {
		go func(i int) {
			defer wg.Done()
			id := int64(i + 1)
			if _, err := g.JoinWaitlist(ctx, poolID, id); err != nil {
				t.Errorf("join %d: %v", id, err)
				return
			}
			// Every other participant immediately leaves again
			if i%2 == 0 {
				if err := g.LeaveWaitlist(ctx, poolID, id); err != nil {
					t.Errorf("leave %d: %v", id, err)
				}
			}
		}(i)
	}
	wg.Wait()

	view, err := g.ViewWaitlist(ctx, poolID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Count != participants/2 {
		t.Errorf("count = %d, want %d", view.Count, participants/2)
	}
	for i, slot := range view.Slots {
		if slot.Position != i+1 {
			t.Errorf("positions not dense: slot %d has position %d", i, slot.Position)
		}
	}
}

func TestConcurrentConfirmsRaceForLastSeat(t *testing.T) {
	g, store := newTestGateway(t)
	_, topicID := addReservationPool(store, 1)
	ctx := context.Background()

	// Both participants hold claims on the cap-1 topic
	if _, err := g.ClaimReservation(ctx, topicID, 10); err != nil {
		t.Fatalf("claim 10: %v", err)
	}
	if _, err := g.ClaimReservation(ctx, topicID, 20); err != nil {
		t.Fatalf("claim 20: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, participant := range []int64{10, 20} {
		wg.Add(1)
		go func(i int, participant int64) {
			defer wg.Done()
			_, errs[i] = g.ConfirmReservation(ctx, topicID, participant, 99)
		}(i, participant)
	}
	wg.Wait()

	succeeded, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, reservations.ErrTopicFull):
			full++
		default:
			t.Errorf("unexpected confirm error: %v", err)
		}
	}
	if succeeded != 1 || full != 1 {
		t.Errorf("got %d confirmations and %d ErrTopicFull, want 1 and 1", succeeded, full)
	}
}

func TestCancelledContextStillAppliesMutation(t *testing.T) {
	g, store := newTestGateway(t)
	poolID := addWaitlistPool(store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The caller is gone, but once the pool lock is held the join runs
	// to completion rather than leaving partial state.
	if _, err := g.JoinWaitlist(ctx, poolID, 1); err != nil {
		t.Fatalf("join with cancelled context: %v", err)
	}

	view, err := g.ViewWaitlist(context.Background(), poolID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Count != 1 {
		t.Errorf("count = %d, want 1", view.Count)
	}
}

func TestDeletePoolDropsAllocations(t *testing.T) {
	g, store := newTestGateway(t)
	poolID := addWaitlistPool(store, nil)
	ctx := context.Background()

	if _, err := g.JoinWaitlist(ctx, poolID, 1); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := g.DeletePool(ctx, poolID); err != nil {
		t.Fatalf("delete pool: %v", err)
	}

	if _, err := g.JoinWaitlist(ctx, poolID, 2); !errors.Is(err, pools.ErrPoolNotFound) {
		t.Errorf("join after delete err = %v, want ErrPoolNotFound", err)
	}
}
