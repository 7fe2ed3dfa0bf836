package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seiyria/landoftherair/internal/game/character"
)

// ErrPlayerNotFound is returned when a player lookup yields no results.
var ErrPlayerNotFound = errors.New("player not found")

// ErrPlayerSlotTaken is returned when creating a player in an occupied
// character slot.
var ErrPlayerSlotTaken = errors.New("player slot already taken")

// PlayerRecord pairs a stored player with its row metadata.
type PlayerRecord struct {
	ID        int64
	AccountID int64
	CharSlot  int
	Player    *character.Player
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlayerRepository persists player characters as JSONB documents. The
// simulation owns the full character shape; the database only indexes the
// identity columns it needs for lookups.
type PlayerRepository struct {
	db *pgxpool.Pool
}

// NewPlayerRepository creates a PlayerRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Create inserts a new player into the account's character slot.
//
// Precondition: accountID must reference an existing account; p.Username
// must be non-empty.
// Postcondition: Returns the stored record, or ErrPlayerSlotTaken when the
// slot is occupied.
func (r *PlayerRepository) Create(ctx context.Context, accountID int64, p *character.Player) (PlayerRecord, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return PlayerRecord{}, fmt.Errorf("encoding player: %w", err)
	}

	rec := PlayerRecord{AccountID: accountID, CharSlot: p.CharSlot, Player: p}
	err = r.db.QueryRow(ctx, `
		INSERT INTO players (account_id, char_slot, data)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		accountID, p.CharSlot, data,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return PlayerRecord{}, ErrPlayerSlotTaken
		}
		return PlayerRecord{}, fmt.Errorf("inserting player: %w", err)
	}
	return rec, nil
}

// Save writes the player's current state back to its slot.
//
// Postcondition: returns ErrPlayerNotFound if the slot holds no player.
func (r *PlayerRepository) Save(ctx context.Context, accountID int64, p *character.Player) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding player: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE players SET data = $3, updated_at = NOW()
		WHERE account_id = $1 AND char_slot = $2`,
		accountID, p.CharSlot, data,
	)
	if err != nil {
		return fmt.Errorf("saving player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// GetBySlot loads the player in the account's character slot.
//
// Postcondition: the returned player is hydrated and ready for the
// simulation, or ErrPlayerNotFound.
func (r *PlayerRepository) GetBySlot(ctx context.Context, accountID int64, charSlot int) (PlayerRecord, error) {
	var (
		rec  PlayerRecord
		data []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, account_id, char_slot, data, created_at, updated_at
		FROM players WHERE account_id = $1 AND char_slot = $2`,
		accountID, charSlot,
	).Scan(&rec.ID, &rec.AccountID, &rec.CharSlot, &data, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PlayerRecord{}, ErrPlayerNotFound
		}
		return PlayerRecord{}, fmt.Errorf("querying player: %w", err)
	}

	p, err := decodePlayer(data)
	if err != nil {
		return PlayerRecord{}, err
	}
	rec.Player = p
	return rec, nil
}

// ListByAccount returns the account's players ordered by character slot.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *PlayerRepository) ListByAccount(ctx context.Context, accountID int64) ([]PlayerRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, char_slot, data, created_at, updated_at
		FROM players WHERE account_id = $1 ORDER BY char_slot ASC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	out := make([]PlayerRecord, 0)
	for rows.Next() {
		var (
			rec  PlayerRecord
			data []byte
		)
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.CharSlot, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning player row: %w", err)
		}
		p, err := decodePlayer(data)
		if err != nil {
			return nil, err
		}
		rec.Player = p
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes the player in the account's character slot.
//
// Postcondition: returns ErrPlayerNotFound if the slot holds no player.
func (r *PlayerRepository) Delete(ctx context.Context, accountID int64, charSlot int) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM players WHERE account_id = $1 AND char_slot = $2`,
		accountID, charSlot,
	)
	if err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

func decodePlayer(data []byte) (*character.Player, error) {
	var p character.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding player: %w", err)
	}
	p.Hydrate()
	return &p, nil
}
