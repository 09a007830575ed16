// Package api exposes the game operations over HTTP. Every operation is a
// POST of a JSON request to /bfg/<operation>/ answered with a flat JSON
// object; failures are {"error": "..."}.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psionman/bfg-api/internal/bridge"
	"github.com/psionman/bfg-api/internal/game"
	"github.com/psionman/bfg-api/internal/store"
	"github.com/psionman/bfg-api/internal/users"
)

// Options configures the routes.
type Options struct {
	User           string
	Pass           string
	AllowedOrigins []string
	Version        string
}

type operation func(ctx context.Context, c *gin.Context, r game.Request) (game.Context, error)

func plain(f func(context.Context, game.Request) (game.Context, error)) operation {
	return func(ctx context.Context, _ *gin.Context, r game.Request) (game.Context, error) {
		return f(ctx, r)
	}
}

func operations(svc *game.Service) map[string]operation {
	return map[string]operation{
		"new-board":         plain(svc.NewBoard),
		"room-board":        plain(svc.RoomBoard),
		"pbn-board":         plain(svc.PBNBoard),
		"restart-board":     plain(svc.RestartBoard),
		"replay-board":      plain(svc.ReplayBoard),
		"use-history-board": plain(svc.UseHistoryBoard),
		"get-history":       plain(svc.GetHistory),
		"rotate-boards":     plain(svc.RotateBoards),
		"bid-made":          plain(svc.BidMade),
		"use-suggestion": plain(func(ctx context.Context, r game.Request) (game.Context, error) {
			return svc.UseBid(ctx, r, true)
		}),
		"use-own-bid": plain(func(ctx context.Context, r game.Request) (game.Context, error) {
			return svc.UseBid(ctx, r, false)
		}),
		"cardplay":           plain(svc.CardplaySetup),
		"card-played":        plain(svc.CardPlayed),
		"claim":              plain(svc.Claim),
		"compare-scores":     plain(svc.CompareScores),
		"undo":               plain(svc.Undo),
		"get-user-set-hands": plain(svc.GetUserSetHands),
		"set-user-set-hands": plain(svc.SetUserSetHands),
		"save-board-file":    plain(svc.SaveBoardFile),
		"get-archive-list":   plain(svc.ArchiveList),
		"static-data": func(_ context.Context, c *gin.Context, _ game.Request) (game.Context, error) {
			return svc.StaticData(c.ClientIP()), nil
		},
		"user-login": func(_ context.Context, c *gin.Context, r game.Request) (game.Context, error) {
			return svc.UserLogin(r, c.ClientIP())
		},
		"user-logout": func(_ context.Context, c *gin.Context, r game.Request) (game.Context, error) {
			return svc.UserLogout(r, c.ClientIP())
		},
		"user-status": func(_ context.Context, _ *gin.Context, r game.Request) (game.Context, error) {
			return svc.UserStatus(r)
		},
		"user-seat": func(_ context.Context, _ *gin.Context, r game.Request) (game.Context, error) {
			return svc.SeatAssigned(r), nil
		},
		"database-update": func(_ context.Context, _ *gin.Context, r game.Request) (game.Context, error) {
			return svc.DatabaseUpdate(r), nil
		},
		"message-sent": func(_ context.Context, _ *gin.Context, r game.Request) (game.Context, error) {
			return svc.MessageSent(r)
		},
		"message-received": func(_ context.Context, _ *gin.Context, r game.Request) (game.Context, error) {
			return svc.MessageReceived(r), nil
		},
	}
}

// Register adds the health check and the /bfg operations to r.
func Register(r *gin.Engine, svc *game.Service, opts Options) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	bfg := r.Group("/bfg", cors(opts.AllowedOrigins))
	bfg.OPTIONS("/*any", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	bfg.GET("/versions/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"api": opts.Version})
	})
	if opts.User != "" && opts.Pass != "" {
		bfg.Use(gin.BasicAuth(gin.Accounts{opts.User: opts.Pass}))
	}
	for name, op := range operations(svc) {
		bfg.POST("/"+name+"/", handle(op))
	}
}

func handle(op operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req game.Request
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
		out, err := op(c.Request.Context(), c, req)
		if err != nil {
			c.JSON(status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

var malformed = []error{
	bridge.ErrInvalidSeat,
	bridge.ErrInvalidMode,
	bridge.ErrInvalidCard,
	game.ErrInvalidPBN,
	game.ErrNoRoom,
	store.ErrNoRoom,
	users.ErrNoUsername,
}

func status(err error) int {
	for _, m := range malformed {
		if errors.Is(err, m) {
			return http.StatusBadRequest
		}
	}
	if errors.Is(err, game.ErrNoBoard) || errors.Is(err, game.ErrNoSuchBoard) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// cors answers browsers from the allowed origins; "*" allows any origin.
func cors(allowed []string) gin.HandlerFunc {
	all := slices.Contains(allowed, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (all || slices.Contains(allowed, origin)) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Set("Access-Control-Max-Age", "86400")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
