package reservations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"slotly/internal/pools"

	"github.com/google/uuid"
)

// fakeRepository is an in-memory Repository that mirrors the transactional
// semantics of the postgres implementation, including the confirmed-only
// capacity policy.
type fakeRepository struct {
	mu           sync.Mutex
	pools        map[uuid.UUID]*pools.ResourcePool
	topics       map[uuid.UUID]*pools.Topic
	reservations []*Reservation
}

var (
	_ Repository = (*fakeRepository)(nil)
	_ Catalog    = (*fakeRepository)(nil)
)

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		pools:  make(map[uuid.UUID]*pools.ResourcePool),
		topics: make(map[uuid.UUID]*pools.Topic),
	}
}

func (f *fakeRepository) addPool(pool *pools.ResourcePool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pools[pool.ID] = pool
}

func (f *fakeRepository) addTopic(topic *pools.Topic) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics[topic.ID] = topic
}

func (f *fakeRepository) resolve(topicID uuid.UUID) (*pools.Topic, *pools.ResourcePool, error) {
	topic, ok := f.topics[topicID]
	if !ok {
		return nil, nil, pools.ErrTopicNotFound
	}
	pool, ok := f.pools[topic.PoolID]
	if !ok {
		return nil, nil, pools.ErrPoolNotFound
	}
	if pool.Kind != pools.KindReservationSet {
		return nil, nil, pools.ErrWrongKind
	}
	return topic, pool, nil
}

func (f *fakeRepository) confirmedCount(topicID uuid.UUID) int {
	count := 0
	for _, r := range f.reservations {
		if r.TopicID == topicID && r.Confirmed {
			count++
		}
	}
	return count
}

func (f *fakeRepository) Claim(ctx context.Context, topicID uuid.UUID, participantID int64) (*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	topic, pool, err := f.resolve(topicID)
	if err != nil {
		return nil, err
	}
	for _, r := range f.reservations {
		if r.TopicID == topicID && r.ParticipantID == participantID {
			return nil, ErrAlreadyReserved
		}
	}
	if f.confirmedCount(topicID) >= pool.MaxPerUnit {
		return nil, ErrTopicFull
	}

	reservation := &Reservation{
		ID:            uuid.New(),
		TopicID:       topicID,
		PoolID:        topic.PoolID,
		ParticipantID: participantID,
		CreatedAt:     time.Now(),
	}
	f.reservations = append(f.reservations, reservation)
	return reservation, nil
}

func (f *fakeRepository) Confirm(ctx context.Context, topicID uuid.UUID, participantID, confirmerID int64) (*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, pool, err := f.resolve(topicID)
	if err != nil {
		return nil, err
	}

	var target *Reservation
	for _, r := range f.reservations {
		if r.TopicID == topicID && r.ParticipantID == participantID && !r.Confirmed {
			target = r
			break
		}
	}
	if target == nil {
		return nil, ErrReservationNotFound
	}
	if f.confirmedCount(topicID) >= pool.MaxPerUnit {
		return nil, ErrTopicFull
	}

	now := time.Now()
	target.Confirmed = true
	target.ConfirmedBy = &confirmerID
	target.ConfirmedAt = &now
	return target, nil
}

func (f *fakeRepository) Release(ctx context.Context, topicID uuid.UUID, participantID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, _, err := f.resolve(topicID); err != nil {
		return err
	}
	for i, r := range f.reservations {
		if r.TopicID == topicID && r.ParticipantID == participantID {
			f.reservations = append(f.reservations[:i], f.reservations[i+1:]...)
			return nil
		}
	}
	return ErrReservationNotFound
}

func (f *fakeRepository) ListByTopic(ctx context.Context, topicID uuid.UUID) ([]*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Reservation
	for _, r := range f.reservations {
		if r.TopicID == topicID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListByPool(ctx context.Context, poolID uuid.UUID) ([]*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Reservation
	for _, r := range f.reservations {
		if r.PoolID == poolID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepository) CountConfirmed(ctx context.Context, topicID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirmedCount(topicID), nil
}

// Catalog via the same fake

func (f *fakeRepository) GetPool(ctx context.Context, id uuid.UUID) (*pools.ResourcePool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pool, ok := f.pools[id]
	if !ok {
		return nil, pools.ErrPoolNotFound
	}
	return pool, nil
}

func (f *fakeRepository) GetTopic(ctx context.Context, id uuid.UUID) (*pools.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	topic, ok := f.topics[id]
	if !ok {
		return nil, pools.ErrTopicNotFound
	}
	return topic, nil
}

func (f *fakeRepository) ListTopics(ctx context.Context, poolID uuid.UUID) ([]pools.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []pools.Topic
	for _, t := range f.topics {
		if t.PoolID == poolID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func setupTopic(maxPerTopic int) (*fakeRepository, Service, uuid.UUID) {
	repo := newFakeRepository()
	pool := &pools.ResourcePool{ID: uuid.New(), Kind: pools.KindReservationSet, MaxPerUnit: maxPerTopic}
	topic := &pools.Topic{ID: uuid.New(), PoolID: pool.ID, Title: "intro round"}
	repo.addPool(pool)
	repo.addTopic(topic)
	svc := NewService(repo, repo, nil, nil, nil, nil)
	return repo, svc, topic.ID
}

func TestClaimThenConfirm(t *testing.T) {
	_, svc, topicID := setupTopic(2)
	ctx := context.Background()

	claimed, err := svc.Claim(ctx, topicID, 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.Confirmed {
		t.Error("fresh claim should be unconfirmed")
	}

	confirmed, err := svc.Confirm(ctx, topicID, 10, 99)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !confirmed.Confirmed {
		t.Error("reservation should be confirmed")
	}
	if confirmed.ConfirmedBy == nil || *confirmed.ConfirmedBy != 99 {
		t.Errorf("confirmed_by = %v, want 99", confirmed.ConfirmedBy)
	}
}

func TestClaimDuplicateRejected(t *testing.T) {
	_, svc, topicID := setupTopic(5)
	ctx := context.Background()

	if _, err := svc.Claim(ctx, topicID, 10); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := svc.Claim(ctx, topicID, 10); !errors.Is(err, ErrAlreadyReserved) {
		t.Errorf("second claim err = %v, want ErrAlreadyReserved", err)
	}
}

func TestUnconfirmedClaimsDoNotBlockCapacity(t *testing.T) {
	_, svc, topicID := setupTopic(1)
	ctx := context.Background()

	// Two participants may both hold unconfirmed claims on a cap-1 topic
	if _, err := svc.Claim(ctx, topicID, 10); err != nil {
		t.Fatalf("claim 10: %v", err)
	}
	if _, err := svc.Claim(ctx, topicID, 20); err != nil {
		t.Fatalf("claim 20: %v", err)
	}

	// First confirmation wins the single seat
	if _, err := svc.Confirm(ctx, topicID, 10, 99); err != nil {
		t.Fatalf("confirm 10: %v", err)
	}
	if _, err := svc.Confirm(ctx, topicID, 20, 99); !errors.Is(err, ErrTopicFull) {
		t.Errorf("confirm 20 err = %v, want ErrTopicFull", err)
	}
}

func TestClaimRejectedWhenConfirmedFull(t *testing.T) {
	_, svc, topicID := setupTopic(1)
	ctx := context.Background()

	if _, err := svc.Claim(ctx, topicID, 10); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := svc.Confirm(ctx, topicID, 10, 99); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.Claim(ctx, topicID, 20); !errors.Is(err, ErrTopicFull) {
		t.Errorf("claim on full topic err = %v, want ErrTopicFull", err)
	}
}

func TestConfirmWithoutClaim(t *testing.T) {
	_, svc, topicID := setupTopic(3)

	if _, err := svc.Confirm(context.Background(), topicID, 10, 99); !errors.Is(err, ErrReservationNotFound) {
		t.Errorf("confirm err = %v, want ErrReservationNotFound", err)
	}
}

func TestConfirmTwiceRejected(t *testing.T) {
	_, svc, topicID := setupTopic(3)
	ctx := context.Background()

	if _, err := svc.Claim(ctx, topicID, 10); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := svc.Confirm(ctx, topicID, 10, 99); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	// An already-confirmed reservation has no pending claim to confirm
	if _, err := svc.Confirm(ctx, topicID, 10, 99); !errors.Is(err, ErrReservationNotFound) {
		t.Errorf("second confirm err = %v, want ErrReservationNotFound", err)
	}
}

func TestReleaseFreesConfirmedSeat(t *testing.T) {
	_, svc, topicID := setupTopic(1)
	ctx := context.Background()

	if _, err := svc.Claim(ctx, topicID, 10); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := svc.Confirm(ctx, topicID, 10, 99); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := svc.Release(ctx, topicID, 10); err != nil {
		t.Fatalf("release: %v", err)
	}

	// The seat is free again
	if _, err := svc.Claim(ctx, topicID, 20); err != nil {
		t.Fatalf("claim after release: %v", err)
	}
	if _, err := svc.Confirm(ctx, topicID, 20, 99); err != nil {
		t.Fatalf("confirm after release: %v", err)
	}
}

func TestReleaseUnknownReservation(t *testing.T) {
	_, svc, topicID := setupTopic(1)

	if err := svc.Release(context.Background(), topicID, 77); !errors.Is(err, ErrReservationNotFound) {
		t.Errorf("release err = %v, want ErrReservationNotFound", err)
	}
}

func TestClaimUnknownTopic(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, repo, nil, nil, nil, nil)

	if _, err := svc.Claim(context.Background(), uuid.New(), 10); !errors.Is(err, pools.ErrTopicNotFound) {
		t.Errorf("claim err = %v, want ErrTopicNotFound", err)
	}
}

func TestListByTopicReportsRemaining(t *testing.T) {
	_, svc, topicID := setupTopic(3)
	ctx := context.Background()

	for _, p := range []int64{10, 20, 30} {
		if _, err := svc.Claim(ctx, topicID, p); err != nil {
			t.Fatalf("claim %d: %v", p, err)
		}
	}
	if _, err := svc.Confirm(ctx, topicID, 10, 99); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	view, err := svc.ListByTopic(ctx, topicID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if view.Confirmed != 1 {
		t.Errorf("confirmed = %d, want 1", view.Confirmed)
	}
	if view.Remaining != 2 {
		t.Errorf("remaining = %d, want 2", view.Remaining)
	}
	if len(view.Reservations) != 3 {
		t.Errorf("reservations = %d, want 3", len(view.Reservations))
	}
}

func TestListByPoolSummarizesTopics(t *testing.T) {
	repo := newFakeRepository()
	pool := &pools.ResourcePool{ID: uuid.New(), Kind: pools.KindReservationSet, MaxPerUnit: 2}
	topicA := &pools.Topic{ID: uuid.New(), PoolID: pool.ID, Title: "topic a"}
	topicB := &pools.Topic{ID: uuid.New(), PoolID: pool.ID, Title: "topic b"}
	repo.addPool(pool)
	repo.addTopic(topicA)
	repo.addTopic(topicB)
	svc := NewService(repo, repo, nil, nil, nil, nil)
	ctx := context.Background()

	if _, err := svc.Claim(ctx, topicA.ID, 10); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := svc.Confirm(ctx, topicA.ID, 10, 99); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.Claim(ctx, topicB.ID, 20); err != nil {
		t.Fatalf("claim: %v", err)
	}

	view, err := svc.ListByPool(ctx, pool.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(view.Topics) != 2 {
		t.Fatalf("topics = %d, want 2", len(view.Topics))
	}

	byID := make(map[uuid.UUID]TopicSummary)
	for _, s := range view.Topics {
		byID[s.TopicID] = s
	}
	if s := byID[topicA.ID]; s.Confirmed != 1 || s.Claimed != 1 || s.Remaining != 1 {
		t.Errorf("topic a summary = %+v", s)
	}
	if s := byID[topicB.ID]; s.Confirmed != 0 || s.Claimed != 1 || s.Remaining != 2 {
		t.Errorf("topic b summary = %+v", s)
	}
}
