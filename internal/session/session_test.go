package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dgarridoc/arcanum-client/internal/engine"
	"github.com/dgarridoc/arcanum-client/internal/protocol"
	"github.com/dgarridoc/arcanum-client/internal/transport"
)

// fakeTransport satisfies Transport in memory: Deliver plays a server
// event into whichever handler is registered for its tag.
type fakeTransport struct {
	mu       sync.Mutex
	handlers map[string]transport.Handler
	status   transport.StatusFunc
	sent     []any
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: make(map[string]transport.Handler)}
}

func (f *fakeTransport) Connect(context.Context) {
	f.mu.Lock()
	fn := f.status
	f.mu.Unlock()
	if fn != nil {
		fn(true)
	}
}

func (f *fakeTransport) Disconnect() {}

func (f *fakeTransport) Send(_ context.Context, cmd any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, cmd)
}

func (f *fakeTransport) OnEvent(tag string, h transport.Handler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[tag] = h
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers, tag)
	}
}

func (f *fakeTransport) OnStatus(fn transport.StatusFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = fn
}

func (f *fakeTransport) Deliver(t *testing.T, tag string, ev engine.Event) {
	t.Helper()
	f.mu.Lock()
	h := f.handlers[tag]
	f.mu.Unlock()
	require.NotNil(t, h, "no handler registered for %q", tag)
	h(ev)
}

func (f *fakeTransport) Sent() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]any, len(f.sent))
	copy(out, f.sent)
	return out
}

func newSession(t *testing.T) (*Session, *fakeTransport) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	tr := newFakeTransport()
	return New(ctx, tr, zap.NewNop()), tr
}

func TestJoinSendsCommandAndMovesToJoining(t *testing.T) {
	sess, tr := newSession(t)
	ctx := context.Background()

	sess.Join(ctx, "Ana", engine.KindDuel, engine.ModePVE)

	snap := sess.Snapshot()
	assert.Equal(t, engine.PhaseJoining, snap.State.Phase)
	assert.Equal(t, engine.KindDuel, snap.State.Kind)
	assert.Equal(t, "Ana", snap.State.PlayerName)

	sent := tr.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, protocol.Join("Ana", engine.KindDuel, engine.ModePVE), sent[0])
}

func TestJoinDefaultsKindAndMode(t *testing.T) {
	sess, tr := newSession(t)

	sess.Join(context.Background(), "Ana", engine.KindNone, "")

	sent := tr.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, protocol.Join("Ana", engine.KindStations, engine.ModePVP), sent[0])
}

func TestGuessLetterUppercases(t *testing.T) {
	sess, tr := newSession(t)

	sess.GuessLetter(context.Background(), "a")

	sent := tr.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, protocol.Guess("A"), sent[0])
}

func TestCastSpellIsOptimistic(t *testing.T) {
	sess, tr := newSession(t)
	ctx := context.Background()

	tr.Deliver(t, protocol.TagDuelStart,
		engine.DuelStart{OpponentID: "ai_1", OpponentName: "Guardián Arcano", RoundsToWin: 2})

	sess.CastSpell(ctx, engine.SpellIgnis)
	snap := sess.Snapshot()
	assert.Equal(t, engine.SpellIgnis, snap.State.Duel.PlayerChoice,
		"choice must land before any server response")

	tr.Deliver(t, protocol.TagOpponentCast, engine.OpponentCast{})
	snap = sess.Snapshot()
	assert.Equal(t, engine.ChoicePending, snap.State.Duel.OpponentChoice.State)
	assert.Equal(t, engine.SpellIgnis, snap.State.Duel.PlayerChoice)

	sent := tr.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, protocol.SpellCast(engine.SpellIgnis), sent[0])
}

func TestStationsFlowThroughTransport(t *testing.T) {
	sess, tr := newSession(t)

	tr.Deliver(t, protocol.TagJoined, engine.Joined{PlayerID: "p1", PlayerName: "Ana"})
	tr.Deliver(t, protocol.TagWaiting, engine.Waiting{InQueue: 2})
	tr.Deliver(t, protocol.TagGameStart,
		engine.GameStart{Players: []engine.PlayerRef{{ID: "p1", Name: "Ana"}}, TotalStations: 5})

	snap := sess.Snapshot()
	assert.Equal(t, engine.PhasePlaying, snap.State.Phase)
	assert.Equal(t, engine.KindStations, snap.State.Kind)
	require.Len(t, snap.State.Roster, 1)
	assert.Equal(t, 1, snap.State.Roster[0].Station)
	assert.Equal(t, 5, snap.State.Stations.Total)
}

func TestLeaveSendsCommandThenResets(t *testing.T) {
	sess, tr := newSession(t)
	ctx := context.Background()

	sess.Join(ctx, "Ana", engine.KindStations, engine.ModePVP)
	tr.Deliver(t, protocol.TagJoined, engine.Joined{PlayerID: "p1", PlayerName: "Ana", GameID: "g1"})

	sess.LeaveGame(ctx)

	snap := sess.Snapshot()
	assert.Equal(t, engine.PhaseIdle, snap.State.Phase)
	assert.Equal(t, "Ana", snap.State.PlayerName)
	assert.Empty(t, snap.State.PlayerID)

	sent := tr.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, protocol.Leave(), sent[1])
}

func TestRematchSendsCommandThenResets(t *testing.T) {
	sess, tr := newSession(t)
	ctx := context.Background()

	tr.Deliver(t, protocol.TagDuelStart,
		engine.DuelStart{OpponentID: "ai_1", OpponentName: "Guardián Arcano", RoundsToWin: 2})
	tr.Deliver(t, protocol.TagDuelOver,
		engine.DuelOver{WinnerID: "ai_1", WinnerName: "Guardián Arcano", FinalScore: "2-0"})

	sess.RequestRematch(ctx)

	snap := sess.Snapshot()
	assert.Equal(t, engine.PhaseIdle, snap.State.Phase)
	assert.Nil(t, snap.State.Result)

	sent := tr.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, protocol.Rematch(), sent[0])
}

func TestErrorSurfacesAsNoticeNotState(t *testing.T) {
	sess, tr := newSession(t)

	before := sess.Snapshot()
	tr.Deliver(t, protocol.TagError, engine.ErrorEvent{Message: "boom"})

	select {
	case n := <-sess.Notices():
		assert.Equal(t, "error", n.Kind)
		assert.Equal(t, "boom", n.Message)
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("expected a notice")
	}

	after := sess.Snapshot()
	assert.Equal(t, before.State.Phase, after.State.Phase)
	assert.Greater(t, after.Version, before.Version, "publishes still happen")
}

func TestConnectFoldsStatusIntoSnapshot(t *testing.T) {
	sess, _ := newSession(t)

	sess.Start(context.Background())
	snap := sess.Snapshot()
	assert.True(t, snap.State.Connected)
}

func TestCloseUnregistersHandlers(t *testing.T) {
	sess, tr := newSession(t)
	sess.Close()

	tr.mu.Lock()
	defer tr.mu.Unlock()
	assert.Empty(t, tr.handlers)
}
