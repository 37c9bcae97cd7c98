package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/NikkyAI/pentagame-server/game/board"
)

// RedisStore persists game state to Redis.
//
// Key scheme:
//
//	pentagame:user:{uuid}:room                    current room id
//	pentagame:room:{id}                           metadata hash
//	pentagame:room:{id}:players                   uuid to display name hash
//	pentagame:room:{id}:figure:{f}:moves          move list, newest first
//	pentagame:room:{id}:user:{uuid}:figure:{f}    per-user move list, newest first
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis using a redis:// URL and verifies the
// connection with a ping.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Close releases the underlying connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func userRoomKey(userID uuid.UUID) string {
	return fmt.Sprintf("pentagame:user:%s:room", userID)
}

func roomKey(roomID int64) string {
	return fmt.Sprintf("pentagame:room:%d", roomID)
}

func roomPlayersKey(roomID int64) string {
	return fmt.Sprintf("pentagame:room:%d:players", roomID)
}

func figureMovesKey(roomID int64, figure board.Figure) string {
	return fmt.Sprintf("pentagame:room:%d:figure:%d:moves", roomID, figure)
}

func userFigureMovesKey(roomID int64, userID uuid.UUID, figure board.Figure) string {
	return fmt.Sprintf("pentagame:room:%d:user:%s:figure:%d", roomID, userID, figure)
}

// CurrentRoom implements Store.
func (r *RedisStore) CurrentRoom(ctx context.Context, userID uuid.UUID) (int64, bool, error) {
	val, err := r.client.Get(ctx, userRoomKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve current room: %w", err)
	}

	roomID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt room binding %q: %w", val, err)
	}
	return roomID, true, nil
}

// JoinRoom binds a user to a room and registers them as a player.
func (r *RedisStore) JoinRoom(ctx context.Context, roomID int64, player Player) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, userRoomKey(player.ID), strconv.FormatInt(roomID, 10), 0)
	pipe.HSet(ctx, roomPlayersKey(roomID), player.ID.String(), player.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to join room %d: %w", roomID, err)
	}
	return nil
}

func (r *RedisStore) latestFrom(ctx context.Context, key string) (*MoveRecord, error) {
	raw, err := r.client.LIndex(ctx, key, 0).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoMove
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read move list: %w", err)
	}

	var rec MoveRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("corrupt move record: %w", err)
	}
	return &rec, nil
}

// LatestMove implements Store.
func (r *RedisStore) LatestMove(ctx context.Context, roomID int64, userID uuid.UUID, figure board.Figure) (*MoveRecord, error) {
	return r.latestFrom(ctx, userFigureMovesKey(roomID, userID, figure))
}

// LatestFigureMove implements Store.
func (r *RedisStore) LatestFigureMove(ctx context.Context, roomID int64, figure board.Figure) (*MoveRecord, error) {
	return r.latestFrom(ctx, figureMovesKey(roomID, figure))
}

// RecordMove implements Store. The record is pushed onto both the
// per-figure and the per-user lists in one transaction so the two views
// of the history cannot drift apart.
func (r *RedisStore) RecordMove(ctx context.Context, rec MoveRecord) error {
	if rec.Recorded.IsZero() {
		rec.Recorded = time.Now()
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal move record: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, figureMovesKey(rec.RoomID, rec.Figure), raw)
	pipe.LPush(ctx, userFigureMovesKey(rec.RoomID, rec.UserID, rec.Figure), raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record move: %w", err)
	}
	return nil
}

// RoomSummary implements Store.
func (r *RedisStore) RoomSummary(ctx context.Context, roomID int64) (RoomSummary, error) {
	fields, err := r.client.HGetAll(ctx, roomKey(roomID)).Result()
	if err != nil {
		return RoomSummary{}, fmt.Errorf("failed to read room %d: %w", roomID, err)
	}
	if len(fields) == 0 {
		return RoomSummary{}, fmt.Errorf("room %d: %w", roomID, ErrRoomNotFound)
	}

	summary := RoomSummary{
		Name:        fields["name"],
		Description: fields["description"],
	}
	if raw, ok := fields["state"]; ok {
		state, err := strconv.Atoi(raw)
		if err != nil {
			return RoomSummary{}, fmt.Errorf("corrupt state for room %d: %w", roomID, err)
		}
		summary.State = state
	}
	if raw, ok := fields["host"]; ok {
		hostID, err := uuid.Parse(raw)
		if err != nil {
			return RoomSummary{}, fmt.Errorf("corrupt host for room %d: %w", roomID, err)
		}
		summary.HostID = hostID
	}
	return summary, nil
}

// CreateRoom writes a room's metadata hash.
func (r *RedisStore) CreateRoom(ctx context.Context, roomID int64, summary RoomSummary) error {
	err := r.client.HSet(ctx, roomKey(roomID),
		"name", summary.Name,
		"description", summary.Description,
		"state", strconv.Itoa(summary.State),
		"host", summary.HostID.String(),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to create room %d: %w", roomID, err)
	}
	return nil
}

// RoomPlayers implements Store.
func (r *RedisStore) RoomPlayers(ctx context.Context, roomID int64) ([]Player, error) {
	fields, err := r.client.HGetAll(ctx, roomPlayersKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read players of room %d: %w", roomID, err)
	}

	players := make([]Player, 0, len(fields))
	for rawID, name := range fields {
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("corrupt player id %q in room %d: %w", rawID, roomID, err)
		}
		players = append(players, Player{ID: id, Name: name})
	}
	return players, nil
}

// SetRoomState implements Store.
func (r *RedisStore) SetRoomState(ctx context.Context, roomID int64, state int) error {
	exists, err := r.client.Exists(ctx, roomKey(roomID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check room %d: %w", roomID, err)
	}
	if exists == 0 {
		return fmt.Errorf("room %d: %w", roomID, ErrRoomNotFound)
	}

	if err := r.client.HSet(ctx, roomKey(roomID), "state", strconv.Itoa(state)).Err(); err != nil {
		return fmt.Errorf("failed to set state of room %d: %w", roomID, err)
	}
	return nil
}
