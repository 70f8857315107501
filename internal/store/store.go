// Package store is the Room persistence layer: CRUD with optimistic
// concurrency plus the hot-path targeted updates spec §4.3 calls out
// (appendChat, applyCorrectGuess, touchActivity). Backed by MongoDB,
// grounded on the bson-tagged domain-struct pattern used by
// other_examples/S4tyendra-public-vc__models.go and
// other_examples/puoxiu-cogame__room.go, and on the teacher's
// storage/postgres.go for the repo shape (context-first methods, sentinel
// errors). Sentinel errors are returned unwrapped; driver errors are wrapped
// with fmt.Errorf("store: <op>: %w", err).
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pranavnigade123/drawzzl-backend/internal/model"
)

const maxRetries = 3

// Store is a MongoDB-backed Room repository.
type Store struct {
	coll *mongo.Collection
}

// New connects to MongoDB at uri and returns a Store bound to the "rooms"
// collection in the "drawzzl" database. Failure to bind here is the one
// fatal startup condition spec §7 allows.
func New(ctx context.Context, uri string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Store{coll: client.Database("drawzzl").Collection("rooms")}, nil
}

// Load fetches a room by id along with its current version.
func (s *Store) Load(ctx context.Context, roomID string) (*model.Room, error) {
	var room model.Room
	err := s.coll.FindOne(ctx, bson.M{"_id": roomID}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load: %w", err)
	}
	return &room, nil
}

// Save persists room if its current stored version still equals
// expectedVersion, bumping the version on success. Returns
// ErrVersionConflict otherwise.
func (s *Store) Save(ctx context.Context, room *model.Room, expectedVersion int64) error {
	next := *room
	next.Version = expectedVersion + 1

	filter := bson.M{"_id": room.RoomID, "version": expectedVersion}
	res, err := s.coll.ReplaceOne(ctx, filter, next, options.Replace().SetUpsert(expectedVersion == 0))
	if err != nil {
		return fmt.Errorf("store: save: %w", err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrVersionConflict
	}
	room.Version = next.Version
	return nil
}

// Delete removes a room document.
func (s *Store) Delete(ctx context.Context, roomID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": roomID})
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	return nil
}

// ForEach streams every room to fn, stopping early if fn returns false.
// Used by the sweeper (spec §4.4).
func (s *Store) ForEach(ctx context.Context, fn func(*model.Room) bool) error {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("store: foreach: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var room model.Room
		if err := cur.Decode(&room); err != nil {
			log.Warn().Err(err).Msg("store: foreach: skipping undecodable room")
			continue
		}
		if !fn(&room) {
			break
		}
	}
	return cur.Err()
}

// AppendChat atomically appends entry and trims to the last
// model.MaxChatHistory entries using Mongo's $push/$slice, avoiding the
// read-modify-write spec §9 warns against.
func (s *Store) AppendChat(ctx context.Context, roomID string, entry model.ChatEntry) error {
	_, err := s.coll.UpdateByID(ctx, roomID, bson.M{
		"$push": bson.M{
			"chat": bson.M{
				"$each":  []model.ChatEntry{entry},
				"$slice": -model.MaxChatHistory,
			},
		},
		"$set": bson.M{"lastActivity": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("store: appendChat: %w", err)
	}
	return nil
}

// ApplyCorrectGuess conditionally credits sessionID with pointsDelta points
// iff it is not already present in correctGuessers, returning whether the
// guess was newly credited. This is the conditional update spec §5 relies
// on to make the guess path's broadcast-before-persist safe.
func (s *Store) ApplyCorrectGuess(ctx context.Context, roomID, sessionID string, pointsDelta int) (bool, error) {
	filter := bson.M{
		"_id":                          roomID,
		"correctGuessers." + sessionID: bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{
			"correctGuessers." + sessionID: struct{}{},
			"lastActivity":                 time.Now(),
		},
		"$inc": bson.M{
			"roundPoints." + sessionID: pointsDelta,
		},
	}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("store: applyCorrectGuess: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, nil
	}

	arrayFilter := options.ArrayFilters{Filters: []interface{}{bson.M{"p.sessionId": sessionID}}}
	_, err = s.coll.UpdateOne(ctx, bson.M{"_id": roomID}, bson.M{
		"$inc": bson.M{"players.$[p].score": pointsDelta},
	}, options.Update().SetArrayFilters(arrayFilter))
	if err != nil {
		return true, fmt.Errorf("store: applyCorrectGuess: score bump: %w", err)
	}
	return true, nil
}

// AppendDrawing appends one opaque stroke-batch to the room's last-seen
// canvas snapshot (spec §3 "currentDrawing": opaque, engine does not
// interpret it). Fire-and-forget on the draw hot path, same shape as
// AppendChat but unbounded — the snapshot is cleared on clearCanvas and at
// the start of every turn, so it never accumulates across turns.
func (s *Store) AppendDrawing(ctx context.Context, roomID string, chunk []byte) error {
	_, err := s.coll.UpdateByID(ctx, roomID, bson.M{
		"$push": bson.M{"currentDrawing": chunk},
		"$set":  bson.M{"lastActivity": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("store: appendDrawing: %w", err)
	}
	return nil
}

// ClearDrawing empties the canvas snapshot, used on clearCanvas and when a
// new turn begins.
func (s *Store) ClearDrawing(ctx context.Context, roomID string) error {
	_, err := s.coll.UpdateByID(ctx, roomID, bson.M{
		"$set": bson.M{"currentDrawing": [][]byte{}, "lastActivity": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("store: clearDrawing: %w", err)
	}
	return nil
}

// CountRooms reports the total number of persisted rooms, for the health
// surface.
func (s *Store) CountRooms(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("store: countRooms: %w", err)
	}
	return n, nil
}

// Ping checks database connectivity for the health surface.
func (s *Store) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

// TouchActivity bumps lastActivity without a full optimistic save.
func (s *Store) TouchActivity(ctx context.Context, roomID string) error {
	_, err := s.coll.UpdateByID(ctx, roomID, bson.M{"$set": bson.M{"lastActivity": time.Now()}})
	if err != nil {
		return fmt.Errorf("store: touchActivity: %w", err)
	}
	return nil
}

// UpdateRoom is the optimistic-concurrency loop from spec §9: load, apply
// the pure mutation fn, save, and start over on ErrVersionConflict, making
// at most maxRetries attempts in total.
func (s *Store) UpdateRoom(ctx context.Context, roomID string, fn func(*model.Room) error) (*model.Room, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		room, err := s.Load(ctx, roomID)
		if err != nil {
			return nil, err
		}
		expected := room.Version
		if err := fn(room); err != nil {
			return nil, err
		}
		err = s.Save(ctx, room, expected)
		if err == nil {
			return room, nil
		}
		if err != ErrVersionConflict {
			return nil, err
		}
		lastErr = err
		log.Warn().Str("roomId", roomID).Int("attempt", attempt+1).Msg("store: version conflict, retrying")
	}
	log.Error().Str("roomId", roomID).Err(lastErr).Msg("store: optimistic update retries exhausted")
	return nil, ErrRetryExhausted
}
