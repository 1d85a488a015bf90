package engine

// Event is the closed union of everything that can move the snapshot:
// server-sent events plus the handful of local intents issued by the
// command surface. Adding a tag means adding a type here and a case in
// Apply, checked at compile time.
type Event interface{ isEvent() }

// Server events.

type Joined struct {
	PlayerID   string
	PlayerName string
	GameID     string
}

type Waiting struct {
	InQueue int
	Message string
}

type GameStart struct {
	Players       []PlayerRef
	TotalStations int
}

type StationUpdate struct {
	Station      int
	Revealed     string
	AttemptsLeft int
}

type CorrectGuess struct {
	Letter   string
	Revealed string
}

type WrongGuess struct {
	Letter       string
	AttemptsLeft int
}

// StationComplete and StationFailed are informational; a station_update
// with the authoritative new state always follows. Neither touches the
// snapshot.

type StationComplete struct {
	Station int
	Word    string
}

type StationFailed struct {
	ResetTo int
	Word    string
}

type PlayerProgress struct {
	PlayerID string
	Station  int
}

type PlayerJoined struct {
	PlayerID   string
	PlayerName string
	Station    int
}

type StationStatus struct {
	Stations map[int][]string
}

type GameOver struct {
	WinnerID   string
	WinnerName string
	Words      []string
}

type DuelStart struct {
	OpponentID   string
	OpponentName string
	RoundsToWin  int
	Mode         Mode // optional; ai_ opponents force PVE regardless
}

type RoundStart struct {
	Round int
}

// OpponentCast means the opponent committed a spell this round; the value
// stays hidden until round_result reveals it.
type OpponentCast struct{}

type RoundResult struct {
	Round         int
	YourSpell     Spell
	OpponentSpell Spell
	Result        Outcome
	YourScore     int
	OpponentScore int
}

type DuelOver struct {
	WinnerID   string
	WinnerName string
	FinalScore string
	YouWon     bool
}

// ErrorEvent is a protocol-level diagnostic. It never alters the snapshot;
// the session surfaces it on the notices channel.
type ErrorEvent struct {
	Message string
}

// Local intents.

// JoinRequested is the optimistic half of the join command: stamp the name
// and kind, move to JOINING before the server answers.
type JoinRequested struct {
	Name string
	Kind GameKind
	Mode Mode
}

// SpellChosen is the optimistic half of a spell cast.
type SpellChosen struct {
	Spell Spell
}

// ConnStatus folds the transport's connected flag into the snapshot.
type ConnStatus struct {
	Connected bool
}

// SessionReset returns to the initial snapshot, keeping only the player's
// display name.
type SessionReset struct{}

func (Joined) isEvent()          {}
func (Waiting) isEvent()         {}
func (GameStart) isEvent()       {}
func (StationUpdate) isEvent()   {}
func (CorrectGuess) isEvent()    {}
func (WrongGuess) isEvent()      {}
func (StationComplete) isEvent() {}
func (StationFailed) isEvent()   {}
func (PlayerProgress) isEvent()  {}
func (PlayerJoined) isEvent()    {}
func (StationStatus) isEvent()   {}
func (GameOver) isEvent()        {}
func (DuelStart) isEvent()       {}
func (RoundStart) isEvent()      {}
func (OpponentCast) isEvent()    {}
func (RoundResult) isEvent()     {}
func (DuelOver) isEvent()        {}
func (ErrorEvent) isEvent()      {}
func (JoinRequested) isEvent()   {}
func (SpellChosen) isEvent()     {}
func (ConnStatus) isEvent()      {}
func (SessionReset) isEvent()    {}
