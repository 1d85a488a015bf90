package engine

// Phase is the top-level session state machine value.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseJoining  Phase = "joining"
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "game_over"
)

// GameKind selects which sub-protocol the session is running. It is fixed
// at join time and survives until a full reset.
type GameKind string

const (
	KindNone     GameKind = ""
	KindStations GameKind = "stations"
	KindDuel     GameKind = "duels"
)

type Mode string

const (
	ModePVP Mode = "pvp"
	ModePVE Mode = "pve"
)

type Spell string

const (
	SpellIgnis Spell = "ignis"
	SpellAqua  Spell = "aqua"
	SpellVirel Spell = "virel"
)

// Outcome is the per-round duel result from the local player's perspective.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeTie  Outcome = "tie"
)

type PlayerRef struct {
	ID   string
	Name string
}

// RosterEntry tracks one player's position in the stations game.
type RosterEntry struct {
	ID      string
	Name    string
	Station int
}

type LastGuess struct {
	Letter  string
	Correct bool
}

// StationsView is the stations-game slice of the snapshot.
type StationsView struct {
	Current      int
	Total        int
	Revealed     string
	AttemptsLeft int
	Guessed      map[string]bool
	LastGuess    *LastGuess
	// Occupancy is the server-authoritative station→names view. It is
	// replaced wholesale on station_status; it is never merged with the
	// roster-derived view.
	Occupancy map[int][]string
}

// ChoiceState distinguishes "no cast yet" from "opponent committed, value
// withheld until reveal".
type ChoiceState int

const (
	ChoiceNone ChoiceState = iota
	ChoicePending
	ChoiceRevealed
)

// OpponentChoice is the three-state opponent cast: none, pending, or a
// revealed spell. Spell is meaningful only when State is ChoiceRevealed.
type OpponentChoice struct {
	State ChoiceState
	Spell Spell
}

func NoChoice() OpponentChoice { return OpponentChoice{} }

func PendingChoice() OpponentChoice { return OpponentChoice{State: ChoicePending} }

func Revealed(s Spell) OpponentChoice {
	return OpponentChoice{State: ChoiceRevealed, Spell: s}
}

// RoundRecord is one completed duel round.
type RoundRecord struct {
	PlayerSpell   Spell
	OpponentSpell Spell
	Result        Outcome
}

// DuelView is the duel-game slice of the snapshot.
type DuelView struct {
	Opponent       *PlayerRef
	Mode           Mode
	Round          int
	RoundsToWin    int
	PlayerChoice   Spell // "" until the player casts
	OpponentChoice OpponentChoice
	LastResult     Outcome // "" until the first round resolves
	PlayerWins     []Spell
	OpponentWins   []Spell
	History        []RoundRecord
	PlayerScore    int
	OpponentScore  int
}

type WaitingInfo struct {
	InQueue int
	Message string
}

// Result is the terminal outcome of a session, set on game_over/duel_over.
type Result struct {
	Winner     PlayerRef
	YouWon     bool
	Words      []string // stations: completed words, in order
	FinalScore string   // duels: e.g. "2-1"
}

// State is the single authoritative client snapshot. The store replaces it
// wholesale on every transition; nothing outside the reducer mutates it.
type State struct {
	Connected bool

	PlayerID   string
	PlayerName string
	GameID     string

	Phase Phase
	Kind  GameKind

	Roster   []RosterEntry
	Stations StationsView
	Duel     DuelView
	Waiting  WaitingInfo
	Result   *Result
}

// NewInitialState returns the fixed boot snapshot.
func NewInitialState() State {
	return State{
		Phase: PhaseIdle,
		Stations: StationsView{
			Current:      1,
			Total:        10,
			AttemptsLeft: 6,
			Guessed:      map[string]bool{},
			Occupancy:    map[int][]string{},
		},
		Duel: DuelView{
			Mode:        ModePVP,
			Round:       1,
			RoundsToWin: 2,
		},
	}
}

// reset returns the initial snapshot preserving only the display name and
// the connection flag, which belongs to the transport rather than the game.
func reset(s State) State {
	next := NewInitialState()
	next.PlayerName = s.PlayerName
	next.Connected = s.Connected
	return next
}
