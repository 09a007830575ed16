package game

import (
	"errors"
	"fmt"

	"github.com/psionman/bfg-api/internal/bridge"
)

var ErrNoRoom = errors.New("room_name required")

// Request carries the fields any operation may read. Clients send the
// subset they need; absent fields take their zero value.
type Request struct {
	Username        string         `json:"username"`
	PartnerUsername string         `json:"partner_username"`
	RoomName        string         `json:"room_name"`
	Seat            string         `json:"seat"`
	Mode            string         `json:"mode"`
	Bid             string         `json:"bid"`
	CardPlayed      string         `json:"card_played"`
	CardPlayer      string         `json:"card_player"`
	ClaimTricks     int            `json:"claim_tricks"`
	RotationSeat    string         `json:"rotation_seat"`
	PBNText         string         `json:"pbn_text"`
	UseSetHands     bool           `json:"use_set_hands"`
	UseDoubleDummy  bool           `json:"use_double_dummy"`
	BoardID         string         `json:"board_id"`
	SetHands        []int          `json:"set_hands"`
	DisplayHandType bool           `json:"display_hand_type"`
	AutoPlay        bool           `json:"auto_play"`
	Message         map[string]any `json:"message"`
	UserQuery       string         `json:"user_query"`
	FileName        string         `json:"file_name"`
	FileDescription string         `json:"file_description"`
}

// parsed is a request whose seat and mode have been checked.
type parsed struct {
	Request
	seat bridge.Seat
	mode bridge.Mode
}

// parse validates seat and mode. An empty seat means North and an empty
// mode means solo.
func (r Request) parse() (parsed, error) {
	p := parsed{Request: r, seat: bridge.North, mode: bridge.Solo}
	var err error
	if r.Seat != "" {
		if p.seat, err = bridge.ParseSeat(r.Seat); err != nil {
			return p, err
		}
	}
	if r.Mode != "" {
		if p.mode, err = bridge.ParseMode(r.Mode); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (r Request) room() (string, error) {
	if r.RoomName == "" {
		return "", ErrNoRoom
	}
	return r.RoomName, nil
}

// player names the person acting, for logs.
func (r Request) player() string {
	if r.CardPlayer != "" {
		return r.CardPlayer
	}
	return r.Username
}

func rotationOf(seat string) (int, error) {
	s, err := bridge.ParseSeat(seat)
	if err != nil {
		return 0, fmt.Errorf("rotation_seat: %w", err)
	}
	return int(s), nil
}
