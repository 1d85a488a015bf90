package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dgarridoc/arcanum-client/internal/config"
	"github.com/dgarridoc/arcanum-client/internal/engine"
	"github.com/dgarridoc/arcanum-client/internal/session"
	"github.com/dgarridoc/arcanum-client/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tr := transport.NewClient(cfg.ServerURL, log.Named("transport"),
		transport.WithRedialDelay(cfg.RedialDelay))
	sess := session.New(ctx, tr, log.Named("session"))
	sess.Start(ctx)
	defer sess.Close()

	if name := strings.TrimSpace(cfg.PlayerName); name != "" {
		sess.Join(ctx, name, engine.GameKind(cfg.GameType), engine.Mode(cfg.GameMode))
	}

	// The stdin loop can't be interrupted by context cancellation, so it
	// cancels the group itself on quit/EOF instead of joining it.
	gctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		if err := readCommands(gctx, sess, log); err != nil {
			log.Error("stdin", zap.Error(err))
		}
	}()

	g, gctx := errgroup.WithContext(gctx)
	g.Go(func() error { return printSnapshots(gctx, sess) })
	g.Go(func() error { return printNotices(gctx, sess) })

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		log.Fatal("client stopped", zap.Error(err))
	}
}

func printSnapshots(ctx context.Context, sess *session.Session) error {
	snaps, cancel := sess.Subscribe(16)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-snaps:
			if !ok {
				return nil
			}
			s := snap.State
			switch s.Kind {
			case engine.KindDuel:
				fmt.Printf("[v%d] %s round=%d you=%d opp=%d choice=%q\n",
					snap.Version, s.Phase, s.Duel.Round,
					s.Duel.PlayerScore, s.Duel.OpponentScore, s.Duel.PlayerChoice)
			case engine.KindStations:
				fmt.Printf("[v%d] %s station=%d/%d %q attempts=%d\n",
					snap.Version, s.Phase, s.Stations.Current, s.Stations.Total,
					s.Stations.Revealed, s.Stations.AttemptsLeft)
			default:
				fmt.Printf("[v%d] %s connected=%v\n", snap.Version, s.Phase, s.Connected)
			}
		}
	}
}

func printNotices(ctx context.Context, sess *session.Session) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-sess.Notices():
			fmt.Printf("! %s: %s\n", n.Kind, n.Message)
		}
	}
}

// readCommands drives the session from stdin:
//
//	join <name> [stations|duels] [pvp|pve]
//	guess <letter> | cast <spell> | rematch | leave | reset | quit
func readCommands(ctx context.Context, sess *session.Session, log *zap.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "join":
			if len(fields) < 2 {
				fmt.Println("usage: join <name> [stations|duels] [pvp|pve]")
				continue
			}
			kind, mode := engine.KindStations, engine.ModePVP
			if len(fields) > 2 {
				kind = engine.GameKind(fields[2])
			}
			if len(fields) > 3 {
				mode = engine.Mode(fields[3])
			}
			sess.Join(ctx, fields[1], kind, mode)
		case "guess":
			if len(fields) > 1 {
				sess.GuessLetter(ctx, fields[1])
			}
		case "cast":
			if len(fields) > 1 {
				sess.CastSpell(ctx, engine.Spell(fields[1]))
			}
		case "rematch":
			sess.RequestRematch(ctx)
		case "leave":
			sess.LeaveGame(ctx)
		case "reset":
			sess.ResetGame()
		case "quit":
			return nil
		default:
			log.Debug("unknown command", zap.String("command", fields[0]))
		}
	}
	return scanner.Err()
}
