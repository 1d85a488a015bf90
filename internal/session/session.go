// Package session wires the transport, the reducer, and the store together
// and exposes the command surface that presentation code drives.
package session

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dgarridoc/arcanum-client/internal/engine"
	"github.com/dgarridoc/arcanum-client/internal/protocol"
	"github.com/dgarridoc/arcanum-client/internal/store"
	"github.com/dgarridoc/arcanum-client/internal/transport"
)

// Transport is what the session needs from the socket layer. Satisfied by
// *transport.Client; tests substitute an in-memory fake.
type Transport interface {
	Connect(ctx context.Context)
	Disconnect()
	Send(ctx context.Context, cmd any)
	OnEvent(tag string, h transport.Handler) func()
	OnStatus(fn transport.StatusFunc)
}

// Notice is a diagnostic that bypasses the snapshot: server errors and the
// informational station notices.
type Notice struct {
	Kind    string // "error" | "station_complete" | "station_failed"
	Message string
}

// Session owns one store and one transport for the lifetime of the client.
// Presentation code reads snapshots via Snapshot/Subscribe and issues
// commands; it never touches the socket.
type Session struct {
	tr      Transport
	store   *store.Store
	log     *zap.Logger
	notices chan Notice
	unsubs  []func()
}

func New(ctx context.Context, tr Transport, log *zap.Logger) *Session {
	s := &Session{
		tr:      tr,
		store:   store.New(ctx, engine.NewInitialState()),
		log:     log,
		notices: make(chan Notice, 16),
	}

	tr.OnStatus(func(connected bool) {
		s.store.Dispatch(engine.ConnStatus{Connected: connected})
	})
	for _, tag := range protocol.Tags {
		s.unsubs = append(s.unsubs, tr.OnEvent(tag, s.handle))
	}
	return s
}

// Start opens the connection. Reconnection is the transport's problem; the
// session just keeps folding whatever arrives.
func (s *Session) Start(ctx context.Context) {
	s.tr.Connect(ctx)
}

// Close unregisters handlers and drops the connection. The store keeps its
// final snapshot until its context ends.
func (s *Session) Close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	s.tr.Disconnect()
}

func (s *Session) handle(ev engine.Event) {
	switch e := ev.(type) {
	case engine.ErrorEvent:
		s.log.Warn("server error", zap.String("message", e.Message))
		s.notify(Notice{Kind: "error", Message: e.Message})
	case engine.StationComplete:
		s.notify(Notice{Kind: "station_complete", Message: e.Word})
	case engine.StationFailed:
		s.notify(Notice{Kind: "station_failed", Message: e.Word})
	}
	s.store.Dispatch(ev)
}

func (s *Session) notify(n Notice) {
	select {
	case s.notices <- n:
	default:
		// Nobody is draining notices; they are droppable by design.
	}
}

// Notices exposes the diagnostic side channel.
func (s *Session) Notices() <-chan Notice { return s.notices }

// Snapshot returns the current snapshot.
func (s *Session) Snapshot() store.Snapshot { return s.store.State() }

// Subscribe returns a channel receiving every published snapshot, starting
// with the current one, plus a cancel func.
func (s *Session) Subscribe(buffer int) (<-chan store.Snapshot, func()) {
	return s.store.Subscribe(uuid.NewString(), buffer)
}

// Join moves to JOINING locally and sends the join command. The caller is
// responsible for passing a non-empty trimmed name.
func (s *Session) Join(ctx context.Context, name string, kind engine.GameKind, mode engine.Mode) {
	if kind == engine.KindNone {
		kind = engine.KindStations
	}
	if mode == "" {
		mode = engine.ModePVP
	}
	s.store.Dispatch(engine.JoinRequested{Name: name, Kind: kind, Mode: mode})
	s.tr.Send(ctx, protocol.Join(name, kind, mode))
}

// GuessLetter sends a letter guess. No optimistic update: the server is
// the sole authority on correctness.
func (s *Session) GuessLetter(ctx context.Context, letter string) {
	s.tr.Send(ctx, protocol.Guess(strings.ToUpper(letter)))
}

// CastSpell records the player's own choice immediately, hiding the round
// trip, then sends the cast.
func (s *Session) CastSpell(ctx context.Context, spell engine.Spell) {
	s.store.Dispatch(engine.SpellChosen{Spell: spell})
	s.tr.Send(ctx, protocol.SpellCast(spell))
}

// LeaveGame tells the server goodbye and resets locally.
func (s *Session) LeaveGame(ctx context.Context) {
	s.tr.Send(ctx, protocol.Leave())
	s.store.Dispatch(engine.SessionReset{})
}

// RequestRematch asks for a rematch and resets locally; the server's next
// duel_start re-seeds the duel view.
func (s *Session) RequestRematch(ctx context.Context) {
	s.tr.Send(ctx, protocol.Rematch())
	s.store.Dispatch(engine.SessionReset{})
}

// ResetGame resets locally with no network effect.
func (s *Session) ResetGame() {
	s.store.Dispatch(engine.SessionReset{})
}
