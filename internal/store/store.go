// Package store persists rooms: the current board of each room, its
// per-room settings and the archive of recent boards.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gosimple/slug"
	"github.com/psionman/bfg-api/internal/bridge"
)

// ArchiveLimit is the number of boards kept per room, newest first.
const ArchiveLimit = 25

var ErrNoRoom = errors.New("room name required")

type SavedBoard struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PBN         string    `json:"pbn_text"`
	SavedAt     time.Time `json:"saved_at"`
}

type Room struct {
	Name            string        `json:"name"`
	BoardNumber     int           `json:"board_number"`
	Board           *bridge.Board `json:"board,omitempty"`
	OwnBid          string        `json:"own_bid"`
	SuggestedBid    string        `json:"suggested_bid"`
	SetHands        []int         `json:"set_hands"`
	UseSetHands     bool          `json:"use_set_hands"`
	DisplayHandType bool          `json:"display_hand_type"`
	SavedPBN        string        `json:"saved_pbn"`
	SavedBoards     []SavedBoard  `json:"saved_boards,omitempty"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Store loads and saves rooms. Load creates an empty room on first use.
// Writes are last-write-wins per room.
type Store interface {
	Load(ctx context.Context, name string) (*Room, error)
	Save(ctx context.Context, r *Room) error
	PushArchive(ctx context.Context, name, pbn string) error
	Archive(ctx context.Context, name string) ([]string, error)
	ReplaceArchive(ctx context.Context, name string, boards []string) error
	Close() error
}

// Key turns a room name into the key rooms are stored under.
func Key(name string) (string, error) {
	k := slug.Make(name)
	if k == "" {
		return "", ErrNoRoom
	}
	return k, nil
}

func newRoom(name string) *Room {
	return &Room{Name: name, SetHands: []int{}}
}

func encode(r *Room) ([]byte, error) {
	return json.Marshal(r)
}

func decode(data []byte) (*Room, error) {
	r := &Room{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	if r.SetHands == nil {
		r.SetHands = []int{}
	}
	return r, nil
}

// trim keeps the newest ArchiveLimit entries.
func trim(boards []string) []string {
	if len(boards) > ArchiveLimit {
		return boards[:ArchiveLimit]
	}
	return boards
}
