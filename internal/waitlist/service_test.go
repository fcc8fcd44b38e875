package waitlist

import (
	"context"
	"sort"
	"testing"
	"time"

	"stagepass/internal/notifications"
	"stagepass/internal/shared/apperror"
	"stagepass/internal/shows"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWaitlistRepo struct {
	entries []*Entry
}

func (f *fakeWaitlistRepo) Create(ctx context.Context, entry *Entry) error {
	entry.ID = uuid.New()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeWaitlistRepo) GetActiveByUserAndTier(ctx context.Context, userID, tierID uuid.UUID) (*Entry, error) {
	for _, e := range f.entries {
		if e.UserID == userID && e.TierID == tierID && e.Status == EntryActive {
			return e, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "no active waitlist entry for this tier")
}

func (f *fakeWaitlistRepo) OldestActive(ctx context.Context, tierID uuid.UUID, limit int, now time.Time) ([]Entry, error) {
	var matched []*Entry
	for _, e := range f.entries {
		if e.TierID == tierID && e.Status == EntryActive && e.ExpiresAt.After(now) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]Entry, len(matched))
	for i, e := range matched {
		out[i] = *e
	}
	return out, nil
}

func (f *fakeWaitlistRepo) MarkNotified(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	for _, id := range ids {
		for _, e := range f.entries {
			if e.ID == id {
				e.Status = EntryNotified
				e.NotifiedAt = &at
			}
		}
	}
	return nil
}

func (f *fakeWaitlistRepo) Position(ctx context.Context, entry *Entry, now time.Time) (int, error) {
	earlier := 0
	for _, e := range f.entries {
		if e.TierID == entry.TierID && e.Status == EntryActive &&
			e.ExpiresAt.After(now) && e.CreatedAt.Before(entry.CreatedAt) {
			earlier++
		}
	}
	return earlier + 1, nil
}

type fakeCatalog struct {
	show *shows.Show
	tier *shows.TicketTier
}

func (f *fakeCatalog) GetShowByID(ctx context.Context, id uuid.UUID) (*shows.Show, error) {
	if f.show == nil || f.show.ID != id {
		return nil, apperror.New(apperror.KindNotFound, "show %s not found", id)
	}
	return f.show, nil
}

func (f *fakeCatalog) GetTierByID(ctx context.Context, id uuid.UUID) (*shows.TicketTier, error) {
	if f.tier == nil || f.tier.ID != id {
		return nil, apperror.New(apperror.KindNotFound, "ticket tier %s not found", id)
	}
	return f.tier, nil
}

type fakeInventory struct {
	sold map[uuid.UUID]int
}

func (f *fakeInventory) TierSold(ctx context.Context, tierID uuid.UUID) (int, error) {
	return f.sold[tierID], nil
}

type recordingPublisher struct {
	messages []*notifications.Message
}

func (r *recordingPublisher) Publish(ctx context.Context, message *notifications.Message) error {
	r.messages = append(r.messages, message)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func waitlistFixture(sold int) (*service, *fakeWaitlistRepo, *recordingPublisher, *shows.Show, *shows.TicketTier) {
	show := &shows.Show{
		ID:       uuid.New(),
		Name:     "Midnight Run",
		Status:   shows.StatusPublished,
		StartsAt: time.Now().Add(72 * time.Hour),
	}
	tier := &shows.TicketTier{
		ID:          uuid.New(),
		ShowID:      show.ID,
		Name:        "Standing Room",
		Type:        shows.TierStanding,
		MaxQuantity: 100,
	}
	repo := &fakeWaitlistRepo{}
	publisher := &recordingPublisher{}
	svc := NewService(repo, &fakeCatalog{show: show, tier: tier}, &fakeInventory{
		sold: map[uuid.UUID]int{tier.ID: sold},
	}, publisher).(*service)
	return svc, repo, publisher, show, tier
}

func TestJoinRequiresTierAtCapacity(t *testing.T) {
	svc, _, _, show, tier := waitlistFixture(99)

	_, err := svc.Join(context.Background(), uuid.New(), "fan@example.com", JoinRequest{
		ShowID:   show.ID,
		TierID:   tier.ID,
		Quantity: 2,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindResourceExhausted))
	assert.Contains(t, err.Error(), "still has availability")
}

func TestJoinAndPosition(t *testing.T) {
	svc, _, _, show, tier := waitlistFixture(100)

	first, err := svc.Join(context.Background(), uuid.New(), "first@example.com", JoinRequest{
		ShowID: show.ID, TierID: tier.ID, Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position)

	second, err := svc.Join(context.Background(), uuid.New(), "second@example.com", JoinRequest{
		ShowID: show.ID, TierID: tier.ID, Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Position)

	// Expiry follows the show start, not the join time
	assert.Equal(t, show.StartsAt.Add(WaitlistExpiry), first.ExpiresAt)
}

func TestJoinDuplicateRejected(t *testing.T) {
	svc, _, _, show, tier := waitlistFixture(100)
	userID := uuid.New()

	_, err := svc.Join(context.Background(), userID, "fan@example.com", JoinRequest{
		ShowID: show.ID, TierID: tier.ID, Quantity: 1,
	})
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), userID, "fan@example.com", JoinRequest{
		ShowID: show.ID, TierID: tier.ID, Quantity: 1,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyExists))
}

func TestNotifyFreedIsFIFO(t *testing.T) {
	svc, repo, publisher, show, tier := waitlistFixture(100)

	base := time.Now().Add(-time.Hour)
	for i, email := range []string{"t1@example.com", "t2@example.com", "t3@example.com"} {
		repo.entries = append(repo.entries, &Entry{
			ID:        uuid.New(),
			ShowID:    show.ID,
			TierID:    tier.ID,
			UserID:    uuid.New(),
			Email:     email,
			Quantity:  1,
			Status:    EntryActive,
			ExpiresAt: time.Now().Add(48 * time.Hour),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	notified, err := svc.NotifyFreed(context.Background(), show.ID, tier.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, notified)

	require.Len(t, publisher.messages, 1)
	assert.Equal(t, "t1@example.com", publisher.messages[0].RecipientEmail)
	assert.Equal(t, notifications.TypeWaitlistSpotAvailable, publisher.messages[0].Type)

	// A second backfill moves to the next entrant
	notified, err = svc.NotifyFreed(context.Background(), show.ID, tier.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
	assert.Equal(t, "t2@example.com", publisher.messages[1].RecipientEmail)
}

func TestNotifyFreedSkipsExpiredEntries(t *testing.T) {
	svc, repo, publisher, show, tier := waitlistFixture(100)

	repo.entries = append(repo.entries,
		&Entry{
			ID: uuid.New(), ShowID: show.ID, TierID: tier.ID, UserID: uuid.New(),
			Email: "lapsed@example.com", Quantity: 1, Status: EntryActive,
			ExpiresAt: time.Now().Add(-time.Hour),
			CreatedAt: time.Now().Add(-2 * time.Hour),
		},
		&Entry{
			ID: uuid.New(), ShowID: show.ID, TierID: tier.ID, UserID: uuid.New(),
			Email: "current@example.com", Quantity: 1, Status: EntryActive,
			ExpiresAt: time.Now().Add(48 * time.Hour),
			CreatedAt: time.Now().Add(-time.Hour),
		},
	)

	notified, err := svc.NotifyFreed(context.Background(), show.ID, tier.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
	require.Len(t, publisher.messages, 1)
	assert.Equal(t, "current@example.com", publisher.messages[0].RecipientEmail)
}

func TestNotifyFreedNoEntrants(t *testing.T) {
	svc, _, publisher, show, tier := waitlistFixture(100)

	notified, err := svc.NotifyFreed(context.Background(), show.ID, tier.ID, 3)
	require.NoError(t, err)
	assert.Zero(t, notified)
	assert.Empty(t, publisher.messages)
}
