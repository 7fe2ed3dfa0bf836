package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seiyria/landoftherair/internal/game/character"
	"github.com/seiyria/landoftherair/internal/game/class"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/skill"
	"github.com/seiyria/landoftherair/internal/storage/postgres"
	"github.com/seiyria/landoftherair/internal/testutil"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func setupPlayerRepo(t *testing.T) (*postgres.PlayerRepository, int64) {
	t.Helper()
	pool := testutil.NewPool(t)
	acctRepo := postgres.NewAccountRepository(pool)
	acct, err := acctRepo.Create(context.Background(), uniqueName("user"), "password123")
	require.NoError(t, err)
	return postgres.NewPlayerRepository(pool), acct.ID
}

func makeTestPlayer(username string, slot int) *character.Player {
	p := character.NewPlayer(username, slot, class.Mage)
	p.Map = "Rylt"
	p.X, p.Y = 14, 14
	p.Skills[skill.Conjuration] = 250
	p.Sack.AddItem(item.New(&item.Def{Name: "Rusty Dagger", ItemClass: item.ClassDagger, Value: 10}))
	p.EarnCurrency(character.CurrencyGold, 120)
	return p
}

func TestPlayerRepository_CreateAndGet(t *testing.T) {
	repo, accountID := setupPlayerRepo(t)
	ctx := context.Background()

	p := makeTestPlayer(uniqueName("zara"), 0)
	rec, err := repo.Create(ctx, accountID, p)
	require.NoError(t, err)
	assert.Greater(t, rec.ID, int64(0))
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := repo.GetBySlot(ctx, accountID, 0)
	require.NoError(t, err)
	assert.Equal(t, p.Username, got.Player.Username)
	assert.Equal(t, "Rylt", got.Player.Map)
	assert.Equal(t, 14, got.Player.X)
	assert.Equal(t, 250.0, got.Player.Skills[skill.Conjuration])
	assert.Equal(t, 120, got.Player.CurrencyValue(character.CurrencyGold))
	require.Equal(t, 1, got.Player.Sack.Size())
	assert.Equal(t, "Rusty Dagger", got.Player.Sack.AllItems()[0].Name)
}

func TestPlayerRepository_SlotTaken(t *testing.T) {
	repo, accountID := setupPlayerRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, accountID, makeTestPlayer(uniqueName("zara"), 0))
	require.NoError(t, err)

	_, err = repo.Create(ctx, accountID, makeTestPlayer(uniqueName("other"), 0))
	assert.ErrorIs(t, err, postgres.ErrPlayerSlotTaken)
}

func TestPlayerRepository_SaveRoundTrip(t *testing.T) {
	repo, accountID := setupPlayerRepo(t)
	ctx := context.Background()

	p := makeTestPlayer(uniqueName("zara"), 0)
	_, err := repo.Create(ctx, accountID, p)
	require.NoError(t, err)

	p.X, p.Y = 3, 9
	p.Map = "Dedlaen"
	p.HP.Set(40)
	require.NoError(t, repo.Save(ctx, accountID, p))

	got, err := repo.GetBySlot(ctx, accountID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Dedlaen", got.Player.Map)
	assert.Equal(t, 3, got.Player.X)
	assert.Equal(t, 40, got.Player.HP.Current)
}

func TestPlayerRepository_SaveUnknown(t *testing.T) {
	repo, accountID := setupPlayerRepo(t)
	err := repo.Save(context.Background(), accountID, makeTestPlayer(uniqueName("ghost"), 7))
	assert.ErrorIs(t, err, postgres.ErrPlayerNotFound)
}

func TestPlayerRepository_ListByAccount(t *testing.T) {
	repo, accountID := setupPlayerRepo(t)
	ctx := context.Background()

	for slot := 0; slot < 3; slot++ {
		_, err := repo.Create(ctx, accountID, makeTestPlayer(uniqueName("char"), slot))
		require.NoError(t, err)
	}

	recs, err := repo.ListByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for slot, rec := range recs {
		assert.Equal(t, slot, rec.CharSlot)
	}
}

func TestPlayerRepository_Delete(t *testing.T) {
	repo, accountID := setupPlayerRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, accountID, makeTestPlayer(uniqueName("zara"), 0))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, accountID, 0))
	_, err = repo.GetBySlot(ctx, accountID, 0)
	assert.ErrorIs(t, err, postgres.ErrPlayerNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, accountID, 0), postgres.ErrPlayerNotFound)
}

func TestAccountRepository_Lifecycle(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewAccountRepository(pool)
	ctx := context.Background()

	username := uniqueName("acct")
	acct, err := repo.Create(ctx, username, "hunter22")
	require.NoError(t, err)
	assert.Equal(t, postgres.RolePlayer, acct.Role)

	_, err = repo.Create(ctx, username, "hunter22")
	assert.ErrorIs(t, err, postgres.ErrAccountExists)

	got, err := repo.Authenticate(ctx, username, "hunter22")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)

	_, err = repo.Authenticate(ctx, username, "wrong")
	assert.ErrorIs(t, err, postgres.ErrInvalidCredentials)

	_, err = repo.Authenticate(ctx, uniqueName("nobody"), "x")
	assert.ErrorIs(t, err, postgres.ErrAccountNotFound)

	require.NoError(t, repo.SetRole(ctx, acct.ID, postgres.RoleGM))
	got, err = repo.GetByUsername(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, postgres.RoleGM, got.Role)
}
