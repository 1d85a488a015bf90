// Package store owns the session snapshot. A single goroutine applies
// engine events through the reducer and broadcasts the resulting snapshot,
// so a transition is always computed from one consistent state and becomes
// visible atomically.
package store

import (
	"context"

	"github.com/dgarridoc/arcanum-client/internal/engine"
)

type Msg interface{ isStoreMsg() }

// Dispatch folds one event into the snapshot and publishes the result.
type Dispatch struct {
	Event engine.Event
}

// Subscribe registers a snapshot outbox. The current snapshot is sent
// immediately on registration.
type Subscribe struct {
	ID     string
	Outbox chan Snapshot
}

type Unsubscribe struct{ ID string }

type GetState struct {
	Reply chan Snapshot
}

type Shutdown struct{}

func (Dispatch) isStoreMsg()    {}
func (Subscribe) isStoreMsg()   {}
func (Unsubscribe) isStoreMsg() {}
func (GetState) isStoreMsg()    {}
func (Shutdown) isStoreMsg()    {}

// Snapshot pairs the state with a version that increments on every applied
// event, including identity transitions, so observers can detect updates
// by version alone.
type Snapshot struct {
	Version int
	State   engine.State
}

type Store struct {
	inbox   chan Msg
	state   engine.State
	version int
	subs    map[string]chan Snapshot
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, initial engine.State) *Store {
	ctx, cancel := context.WithCancel(parent)
	s := &Store{
		inbox:  make(chan Msg, 64),
		state:  initial,
		subs:   make(map[string]chan Snapshot),
		ctx:    ctx,
		cancel: cancel,
	}
	go s.loop()
	return s
}

func (s *Store) Inbox() chan<- Msg { return s.inbox }

// Dispatch queues one event for application.
func (s *Store) Dispatch(ev engine.Event) {
	select {
	case s.inbox <- Dispatch{Event: ev}:
	case <-s.ctx.Done():
	}
}

// State returns the current snapshot synchronously.
func (s *Store) State() Snapshot {
	reply := make(chan Snapshot, 1)
	select {
	case s.inbox <- GetState{Reply: reply}:
		return <-reply
	case <-s.ctx.Done():
		return Snapshot{}
	}
}

// Subscribe registers an outbox under id and returns it with a cancel
// func. The buffer must be drained promptly; a full outbox drops the
// subscriber rather than blocking the loop.
func (s *Store) Subscribe(id string, buffer int) (<-chan Snapshot, func()) {
	out := make(chan Snapshot, buffer)
	select {
	case s.inbox <- Subscribe{ID: id, Outbox: out}:
	case <-s.ctx.Done():
		close(out)
		return out, func() {}
	}
	return out, func() {
		select {
		case s.inbox <- Unsubscribe{ID: id}:
		case <-s.ctx.Done():
		}
	}
}

func (s *Store) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Subscribe:
				s.subs[msg.ID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: s.version, State: s.state}

			case Unsubscribe:
				if ch, ok := s.subs[msg.ID]; ok {
					close(ch)
					delete(s.subs, msg.ID)
				}

			case Dispatch:
				s.state = engine.Apply(s.state, msg.Event)
				s.version++
				s.broadcast(Snapshot{Version: s.version, State: s.state})

			case GetState:
				msg.Reply <- Snapshot{Version: s.version, State: s.state}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Store) shutdown() {
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.cancel()
}

func (s *Store) broadcast(snap Snapshot) {
	for id, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Subscriber is slow/full - drop them.
			close(ch)
			delete(s.subs, id)
		}
	}
}
