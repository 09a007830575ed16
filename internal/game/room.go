package game

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/psionman/bfg-api/internal/export"
	"github.com/psionman/bfg-api/internal/store"
	"github.com/psionman/bfg-api/internal/users"
	"github.com/rs/zerolog/log"
)

// GetUserSetHands returns the room's set-hand settings.
func (s *Service) GetUserSetHands(ctx context.Context, r Request) (Context, error) {
	name, err := r.room()
	if err != nil {
		return nil, err
	}
	room, err := s.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return Context{
		"set_hands":         room.SetHands,
		"use_set_hands":     room.UseSetHands,
		"display_hand_type": room.DisplayHandType,
	}, nil
}

// SetUserSetHands replaces the room's set-hand settings. Indexes outside
// the catalog are dropped.
func (s *Service) SetUserSetHands(ctx context.Context, r Request) (Context, error) {
	name, err := r.room()
	if err != nil {
		return nil, err
	}
	room, err := s.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	room.SetHands = validSetHands(r.SetHands)
	room.UseSetHands = r.UseSetHands
	room.DisplayHandType = r.DisplayHandType
	if err := s.store.Save(ctx, room); err != nil {
		return nil, err
	}
	s.users.Touch(r.Username)
	log.Info().Str("username", r.Username).Ints("set_hands", room.SetHands).Msg("update-set-hands")
	return Context{
		"set_hands":         room.SetHands,
		"use_set_hands":     room.UseSetHands,
		"display_hand_type": room.DisplayHandType,
	}, nil
}

// StaticData is what a client loads once at start-up.
func (s *Service) StaticData(ip string) Context {
	log.Info().Str("ip_address", ip).Msg("static-data")
	return Context{
		"calls":          bridge.CallNames(),
		"solo_set_hands": setHandNames(false),
		"duo_set_hands":  setHandNames(true),
		"sources":        bridge.SourceNames(),
		"versions":       map[string]string{"api": s.version},
	}
}

// SaveBoardFile stores pbn_text, or the room's archive when it is empty,
// as a named file in the room and exports it when an exporter is set.
func (s *Service) SaveBoardFile(ctx context.Context, r Request) (Context, error) {
	name, err := r.room()
	if err != nil {
		return nil, err
	}
	room, err := s.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	boards := []string{r.PBNText}
	if strings.TrimSpace(r.PBNText) == "" {
		if boards, err = s.store.Archive(ctx, name); err != nil {
			return nil, err
		}
	}
	now := time.Now().UTC()
	room.SavedBoards = append(room.SavedBoards, store.SavedBoard{
		Name:        r.FileName,
		Description: r.FileDescription,
		PBN:         strings.Join(boards, "\n\n"),
		SavedAt:     now,
	})
	if err := s.store.Save(ctx, room); err != nil {
		return nil, err
	}

	location := ""
	if s.exporter != nil {
		if location, err = s.exporter.Export(ctx, name, r.FileName, boards); err != nil {
			log.Error().Err(err).Str("room", name).Str("file", export.FileName(name, r.FileName)).Msg("export boards")
			return nil, err
		}
	}
	log.Info().Str("username", r.Username).Str("room", name).Int("boards", len(boards)).Str("location", location).Msg("save-board-file")
	return Context{
		"boards_saved": true,
		"location":     location,
		"archives":     archiveList(room),
	}, nil
}

// ArchiveList names the room's saved files by description.
func (s *Service) ArchiveList(ctx context.Context, r Request) (Context, error) {
	name, err := r.room()
	if err != nil {
		return nil, err
	}
	room, err := s.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return Context{"archives": archiveList(room)}, nil
}

func archiveList(room *store.Room) []string {
	out := make([]string, 0, len(room.SavedBoards))
	for _, b := range room.SavedBoards {
		out = append(out, b.Description)
	}
	slices.Sort(out)
	return out
}

func (s *Service) UserLogin(r Request, ip string) (Context, error) {
	if err := s.users.Login(r.Username); err != nil {
		return nil, err
	}
	log.Info().Str("username", r.Username).Str("ip_address", ip).Msg("login")
	return Context{}, nil
}

func (s *Service) UserLogout(r Request, ip string) (Context, error) {
	if err := s.users.Logout(r.Username); err != nil {
		return nil, err
	}
	log.Info().Str("username", r.Username).Str("ip_address", ip).Msg("logout")
	return Context{}, nil
}

// UserStatus reports on user_query, or on the requester when it is empty.
func (s *Service) UserStatus(r Request) (Context, error) {
	who := r.UserQuery
	if who == "" {
		who = r.Username
	}
	if who == "" {
		return nil, users.ErrNoUsername
	}
	u := s.users.Status(who)
	last := ""
	if u.LastActivity != nil {
		last = u.LastActivity.Format("2006-01-02T15:04:05.000Z")
	}
	return Context{"logged_in": u.LoggedIn, "last_activity": last}, nil
}

// DatabaseUpdate records activity for the requester.
func (s *Service) DatabaseUpdate(r Request) Context {
	s.users.Touch(r.Username)
	return Context{}
}

func (s *Service) SeatAssigned(r Request) Context {
	s.users.Touch(r.Username)
	log.Info().Str("username", r.Username).Str("seat", r.Seat).Str("room", r.RoomName).Msg("seat-assigned")
	return Context{}
}

// MessageSent relays a chat message to everyone in the room.
func (s *Service) MessageSent(r Request) (Context, error) {
	name, err := r.room()
	if err != nil {
		return nil, err
	}
	s.users.Touch(r.Username)
	log.Info().Str("username", r.Username).Str("room", name).Any("message", r.Message).Msg("message-sent")
	if s.notifier != nil {
		s.notifier.Message(name, r.Username, r.Message)
	}
	return Context{}, nil
}

func (s *Service) MessageReceived(r Request) Context {
	s.users.Touch(r.Username)
	log.Info().Str("username", r.Username).Any("message", r.Message).Msg("message-received")
	return Context{}
}
