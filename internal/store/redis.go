package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores each room as a JSON string and its archive as a capped list.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Redis{client: client, prefix: "bfg"}, nil
}

func (s *Redis) roomKey(name string) (string, error) {
	k, err := Key(name)
	if err != nil {
		return "", err
	}
	return s.prefix + ":room:" + k, nil
}

func (s *Redis) archiveKey(name string) (string, error) {
	k, err := Key(name)
	if err != nil {
		return "", err
	}
	return s.prefix + ":archive:" + k, nil
}

func (s *Redis) Load(ctx context.Context, name string) (*Room, error) {
	key, err := s.roomKey(name)
	if err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return newRoom(name), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", name, err)
	}
	return decode(data)
}

func (s *Redis) Save(ctx context.Context, r *Room) error {
	key, err := s.roomKey(r.Name)
	if err != nil {
		return err
	}
	r.UpdatedAt = time.Now().UTC()
	data, err := encode(r)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("save room %s: %w", r.Name, err)
	}
	return nil
}

func (s *Redis) PushArchive(ctx context.Context, name, pbn string) error {
	key, err := s.archiveKey(name)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, pbn)
	pipe.LTrim(ctx, key, 0, ArchiveLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("archive board for %s: %w", name, err)
	}
	return nil
}

func (s *Redis) Archive(ctx context.Context, name string) ([]string, error) {
	key, err := s.archiveKey(name)
	if err != nil {
		return nil, err
	}
	boards, err := s.client.LRange(ctx, key, 0, ArchiveLimit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read archive for %s: %w", name, err)
	}
	return boards, nil
}

func (s *Redis) ReplaceArchive(ctx context.Context, name string, boards []string) error {
	key, err := s.archiveKey(name)
	if err != nil {
		return err
	}
	boards = trim(boards)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(boards) > 0 {
		values := make([]any, len(boards))
		for i, b := range boards {
			values[i] = b
		}
		pipe.RPush(ctx, key, values...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replace archive for %s: %w", name, err)
	}
	return nil
}

func (s *Redis) Close() error { return s.client.Close() }
