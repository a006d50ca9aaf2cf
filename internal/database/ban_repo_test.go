package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zuiji/legacy-waitlist/internal/models"
)

func TestBanRepo_CreateAndGet(t *testing.T) {
	pool := testPool(t)
	repo := NewBanRepository(pool)
	ctx := context.Background()

	issuer := createTestCharacter(t, pool)

	ban := &models.Ban{
		ID: nextID(),
		Entity: models.Entity{
			ID:       nextID(),
			Name:     "Goonswarm Federation",
			Category: models.EntityAlliance,
		},
		IssuedAt: time.Now().Truncate(time.Microsecond),
		IssuedBy: issuer.ID,
		Reason:   "awoxing",
	}
	createTestBan(t, pool, repo, ban)

	got, err := repo.GetByID(ctx, ban.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatal("GetByID returned nil after Create")
	}
	if got.Entity != ban.Entity {
		t.Errorf("Entity = %+v, want %+v", got.Entity, ban.Entity)
	}
	if got.Reason != "awoxing" {
		t.Errorf("Reason = %q, want %q", got.Reason, "awoxing")
	}
	if got.PublicReason != nil {
		t.Errorf("PublicReason = %v, want nil", got.PublicReason)
	}
	if got.RevokedAt != nil || got.RevokedBy != nil {
		t.Error("expected fresh ban to carry no revocation")
	}
}

func TestBanRepo_GetByID_NotFound(t *testing.T) {
	pool := testPool(t)
	repo := NewBanRepository(pool)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, 999999999999)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestBanRepo_ListActive(t *testing.T) {
	pool := testPool(t)
	repo := NewBanRepository(pool)
	ctx := context.Background()

	issuer := createTestCharacter(t, pool)
	now := time.Now().Truncate(time.Microsecond)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	permanent := &models.Ban{
		ID:       nextID(),
		Entity:   models.Entity{ID: nextID(), Name: "Permanent Target", Category: models.EntityCharacter},
		IssuedAt: now,
		IssuedBy: issuer.ID,
		Reason:   "permanent",
	}
	timed := &models.Ban{
		ID:        nextID(),
		Entity:    models.Entity{ID: nextID(), Name: "Timed Target", Category: models.EntityCharacter},
		IssuedAt:  now,
		IssuedBy:  issuer.ID,
		Reason:    "timed",
		RevokedAt: &future,
	}
	expired := &models.Ban{
		ID:        nextID(),
		Entity:    models.Entity{ID: nextID(), Name: "Expired Target", Category: models.EntityCharacter},
		IssuedAt:  past,
		IssuedBy:  issuer.ID,
		Reason:    "expired",
		RevokedAt: &past,
	}
	revoked := &models.Ban{
		ID:        nextID(),
		Entity:    models.Entity{ID: nextID(), Name: "Revoked Target", Category: models.EntityCharacter},
		IssuedAt:  past,
		IssuedBy:  issuer.ID,
		Reason:    "revoked",
		RevokedAt: &past,
		RevokedBy: &issuer.ID,
	}
	for _, b := range []*models.Ban{permanent, timed, expired, revoked} {
		createTestBan(t, pool, repo, b)
	}

	bans, err := repo.ListActive(ctx, now)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}

	byID := make(map[int64]models.BanWithIssuer, len(bans))
	for _, b := range bans {
		byID[b.ID] = b
	}
	if _, ok := byID[permanent.ID]; !ok {
		t.Error("expected permanent ban in active list")
	}
	if _, ok := byID[timed.ID]; !ok {
		t.Error("expected timed ban in active list")
	}
	if _, ok := byID[expired.ID]; ok {
		t.Error("expired ban should not be listed")
	}
	if _, ok := byID[revoked.ID]; ok {
		t.Error("revoked ban should not be listed")
	}

	got := byID[permanent.ID]
	if got.Issuer.ID != issuer.ID || got.Issuer.Name != issuer.Name {
		t.Errorf("Issuer = %+v, want id %d name %q", got.Issuer, issuer.ID, issuer.Name)
	}
}

func TestBanRepo_HistoryForEntity(t *testing.T) {
	pool := testPool(t)
	repo := NewBanRepository(pool)
	ctx := context.Background()

	issuer := createTestCharacter(t, pool)
	entityID := nextID()
	now := time.Now().Truncate(time.Microsecond)

	older := &models.Ban{
		ID:       nextID(),
		Entity:   models.Entity{ID: entityID, Name: "Repeat Offender", Category: models.EntityCharacter},
		IssuedAt: now.Add(-48 * time.Hour),
		IssuedBy: issuer.ID,
		Reason:   "first offense",
	}
	newer := &models.Ban{
		ID:       nextID(),
		Entity:   models.Entity{ID: entityID, Name: "Repeat Offender", Category: models.EntityCharacter},
		IssuedAt: now,
		IssuedBy: issuer.ID,
		Reason:   "second offense",
	}
	unrelated := &models.Ban{
		ID:       nextID(),
		Entity:   models.Entity{ID: nextID(), Name: "Someone Else", Category: models.EntityCharacter},
		IssuedAt: now,
		IssuedBy: issuer.ID,
		Reason:   "unrelated",
	}
	for _, b := range []*models.Ban{older, newer, unrelated} {
		createTestBan(t, pool, repo, b)
	}

	bans, err := repo.HistoryForEntity(ctx, models.EntityCharacter, entityID)
	if err != nil {
		t.Fatalf("HistoryForEntity: %v", err)
	}
	if len(bans) != 2 {
		t.Fatalf("expected 2 bans, got %d", len(bans))
	}
	if bans[0].ID != newer.ID || bans[1].ID != older.ID {
		t.Errorf("expected newest first, got %d then %d", bans[0].ID, bans[1].ID)
	}
}

func TestBanRepo_HistoryForEntity_CategoryScoped(t *testing.T) {
	pool := testPool(t)
	repo := NewBanRepository(pool)
	ctx := context.Background()

	issuer := createTestCharacter(t, pool)
	entityID := nextID()

	// Same numeric ID, different category: must not show up.
	corpBan := &models.Ban{
		ID:       nextID(),
		Entity:   models.Entity{ID: entityID, Name: "Corp With Shared ID", Category: models.EntityCorporation},
		IssuedAt: time.Now().Truncate(time.Microsecond),
		IssuedBy: issuer.ID,
		Reason:   "corp ban",
	}
	createTestBan(t, pool, repo, corpBan)

	bans, err := repo.HistoryForEntity(ctx, models.EntityCharacter, entityID)
	if err != nil {
		t.Fatalf("HistoryForEntity: %v", err)
	}
	if len(bans) != 0 {
		t.Errorf("expected no character bans for id %d, got %d", entityID, len(bans))
	}
}

func TestBanRepo_Update(t *testing.T) {
	pool := testPool(t)
	repo := NewBanRepository(pool)
	ctx := context.Background()

	issuer := createTestCharacter(t, pool)
	amender := createTestCharacter(t, pool)

	ban := &models.Ban{
		ID:       nextID(),
		Entity:   models.Entity{ID: nextID(), Name: "Original Name", Category: models.EntityCharacter},
		IssuedAt: time.Now().Add(-time.Hour).Truncate(time.Microsecond),
		IssuedBy: issuer.ID,
		Reason:   "original reason",
	}
	createTestBan(t, pool, repo, ban)

	public := "updated public reason"
	end := time.Now().Add(72 * time.Hour).Truncate(time.Microsecond)
	ban.Reason = "amended reason"
	ban.PublicReason = &public
	ban.RevokedAt = &end
	ban.IssuedAt = time.Now().Truncate(time.Microsecond)
	ban.IssuedBy = amender.ID
	if err := repo.Update(ctx, ban); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, ban.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Reason != "amended reason" {
		t.Errorf("Reason = %q, want amended", got.Reason)
	}
	if got.PublicReason == nil || *got.PublicReason != public {
		t.Errorf("PublicReason = %v, want %q", got.PublicReason, public)
	}
	if got.IssuedBy != amender.ID {
		t.Errorf("IssuedBy = %d, want %d", got.IssuedBy, amender.ID)
	}
	if got.RevokedAt == nil || !got.RevokedAt.Equal(end) {
		t.Errorf("RevokedAt = %v, want %v", got.RevokedAt, end)
	}
}

func TestBanRepo_RevokeActive(t *testing.T) {
	pool := testPool(t)
	repo := NewBanRepository(pool)
	ctx := context.Background()

	issuer := createTestCharacter(t, pool)
	revoker := createTestCharacter(t, pool)

	ban := &models.Ban{
		ID:       nextID(),
		Entity:   models.Entity{ID: nextID(), Name: "Target", Category: models.EntityCharacter},
		IssuedAt: time.Now().Truncate(time.Microsecond),
		IssuedBy: issuer.ID,
		Reason:   "to be revoked",
	}
	createTestBan(t, pool, repo, ban)

	at := time.Now().Truncate(time.Microsecond)
	ok, err := repo.RevokeActive(ctx, ban.ID, at, revoker.ID)
	if err != nil {
		t.Fatalf("RevokeActive: %v", err)
	}
	if !ok {
		t.Fatal("expected first revoke to win")
	}

	got, err := repo.GetByID(ctx, ban.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.RevokedAt == nil || !got.RevokedAt.Equal(at) {
		t.Errorf("RevokedAt = %v, want %v", got.RevokedAt, at)
	}
	if got.RevokedBy == nil || *got.RevokedBy != revoker.ID {
		t.Errorf("RevokedBy = %v, want %d", got.RevokedBy, revoker.ID)
	}
}

func TestBanRepo_RevokeActive_SecondLoses(t *testing.T) {
	pool := testPool(t)
	repo := NewBanRepository(pool)
	ctx := context.Background()

	issuer := createTestCharacter(t, pool)
	first := createTestCharacter(t, pool)
	second := createTestCharacter(t, pool)

	ban := &models.Ban{
		ID:       nextID(),
		Entity:   models.Entity{ID: nextID(), Name: "Target", Category: models.EntityCharacter},
		IssuedAt: time.Now().Truncate(time.Microsecond),
		IssuedBy: issuer.ID,
		Reason:   "double revoke",
	}
	createTestBan(t, pool, repo, ban)

	at := time.Now().Truncate(time.Microsecond)
	ok, err := repo.RevokeActive(ctx, ban.ID, at, first.ID)
	if err != nil || !ok {
		t.Fatalf("first RevokeActive = %v, %v", ok, err)
	}

	ok, err = repo.RevokeActive(ctx, ban.ID, at.Add(time.Second), second.ID)
	if err != nil {
		t.Fatalf("second RevokeActive: %v", err)
	}
	if ok {
		t.Fatal("expected second revoke to lose")
	}

	got, err := repo.GetByID(ctx, ban.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.RevokedBy == nil || *got.RevokedBy != first.ID {
		t.Errorf("RevokedBy = %v, want first revoker %d", got.RevokedBy, first.ID)
	}
}

func TestBanRepo_RevokeActive_AlreadyExpired(t *testing.T) {
	pool := testPool(t)
	repo := NewBanRepository(pool)
	ctx := context.Background()

	issuer := createTestCharacter(t, pool)
	past := time.Now().Add(-24 * time.Hour).Truncate(time.Microsecond)

	ban := &models.Ban{
		ID:        nextID(),
		Entity:    models.Entity{ID: nextID(), Name: "Expired Target", Category: models.EntityCharacter},
		IssuedAt:  past.Add(-24 * time.Hour),
		IssuedBy:  issuer.ID,
		Reason:    "ran out",
		RevokedAt: &past,
	}
	createTestBan(t, pool, repo, ban)

	ok, err := repo.RevokeActive(ctx, ban.ID, time.Now().Truncate(time.Microsecond), issuer.ID)
	if err != nil {
		t.Fatalf("RevokeActive: %v", err)
	}
	if ok {
		t.Fatal("expected revoke of expired ban to fail")
	}

	got, err := repo.GetByID(ctx, ban.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.RevokedBy != nil {
		t.Errorf("expected expired ban to stay unattributed, got RevokedBy = %d", *got.RevokedBy)
	}
	if !got.RevokedAt.Equal(past) {
		t.Errorf("RevokedAt = %v, want untouched %v", got.RevokedAt, past)
	}
}

func TestBanRepo_RevokeActive_Concurrent(t *testing.T) {
	pool := testPool(t)
	repo := NewBanRepository(pool)
	ctx := context.Background()

	issuer := createTestCharacter(t, pool)

	const racers = 8
	revokers := make([]*models.Character, racers)
	for i := range revokers {
		revokers[i] = createTestCharacter(t, pool)
	}

	ban := &models.Ban{
		ID:       nextID(),
		Entity:   models.Entity{ID: nextID(), Name: "Contested Target", Category: models.EntityCharacter},
		IssuedAt: time.Now().Truncate(time.Microsecond),
		IssuedBy: issuer.ID,
		Reason:   "contested revoke",
	}
	createTestBan(t, pool, repo, ban)

	at := time.Now().Truncate(time.Microsecond)
	var wins int
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := range racers {
		go func(revokerID int64) {
			defer wg.Done()
			ok, err := repo.RevokeActive(ctx, ban.ID, at, revokerID)
			if err != nil {
				t.Errorf("RevokeActive: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(revokers[i].ID)
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winning revoke, got %d", wins)
	}
}
