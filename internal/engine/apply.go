package engine

import (
	"maps"
	"slices"
	"strings"
)

// aiPrefix marks server-generated PVE opponents. An opponent whose id
// carries it forces ModePVE regardless of what the payload claims.
const aiPrefix = "ai_"

// Apply folds one event into the snapshot and returns the next snapshot.
// It is pure and total: every event type has exactly one rule, unknown
// events are the identity, and the input state is never mutated.
//
// Rules are intentionally not gated on the current phase. A stale event
// arriving after a reset is applied by its own rule, matching the behavior
// the server relies on when it re-synchronizes a reconnected client.
func Apply(s State, ev Event) State {
	switch e := ev.(type) {
	case Joined:
		s.PlayerID = e.PlayerID
		s.PlayerName = e.PlayerName
		if e.GameID != "" {
			s.GameID = e.GameID
			s.Phase = PhaseWaiting
		}
		return s

	case Waiting:
		s.Phase = PhaseWaiting
		s.Waiting = WaitingInfo{InQueue: e.InQueue, Message: e.Message}
		return s

	case GameStart:
		s.Phase = PhasePlaying
		s.Kind = KindStations
		roster := make([]RosterEntry, 0, len(e.Players))
		for _, p := range e.Players {
			roster = append(roster, RosterEntry{ID: p.ID, Name: p.Name, Station: 1})
		}
		s.Roster = roster
		s.Stations.Total = e.TotalStations
		return s

	case StationUpdate:
		s.Stations.Current = e.Station
		s.Stations.Revealed = e.Revealed
		s.Stations.AttemptsLeft = e.AttemptsLeft
		s.Stations.Guessed = map[string]bool{}
		s.Stations.LastGuess = nil
		return s

	case CorrectGuess:
		letter := strings.ToUpper(e.Letter)
		s.Stations.Guessed = withLetter(s.Stations.Guessed, letter)
		s.Stations.Revealed = e.Revealed
		s.Stations.LastGuess = &LastGuess{Letter: letter, Correct: true}
		return s

	case WrongGuess:
		letter := strings.ToUpper(e.Letter)
		s.Stations.Guessed = withLetter(s.Stations.Guessed, letter)
		s.Stations.AttemptsLeft = e.AttemptsLeft
		s.Stations.LastGuess = &LastGuess{Letter: letter, Correct: false}
		return s

	case StationComplete:
		return s

	case StationFailed:
		return s

	case PlayerProgress:
		for i, entry := range s.Roster {
			if entry.ID == e.PlayerID {
				roster := slices.Clone(s.Roster)
				roster[i].Station = e.Station
				s.Roster = roster
				break
			}
		}
		return s

	case PlayerJoined:
		station := e.Station
		if station == 0 {
			station = 1
		}
		s.Roster = append(slices.Clone(s.Roster),
			RosterEntry{ID: e.PlayerID, Name: e.PlayerName, Station: station})
		return s

	case StationStatus:
		s.Stations.Occupancy = e.Stations
		return s

	case GameOver:
		s.Phase = PhaseGameOver
		s.Result = &Result{
			Winner: PlayerRef{ID: e.WinnerID, Name: e.WinnerName},
			YouWon: e.WinnerID != "" && e.WinnerID == s.PlayerID,
			Words:  e.Words,
		}
		return s

	case DuelStart:
		s.Phase = PhasePlaying
		s.Kind = KindDuel
		roundsToWin := e.RoundsToWin
		if roundsToWin <= 0 {
			roundsToWin = 2
		}
		s.Duel = DuelView{
			Opponent:    &PlayerRef{ID: e.OpponentID, Name: e.OpponentName},
			Mode:        duelMode(e),
			Round:       1,
			RoundsToWin: roundsToWin,
		}
		s.Result = nil
		return s

	case RoundStart:
		s.Duel.Round = e.Round
		s.Duel.PlayerChoice = ""
		s.Duel.OpponentChoice = NoChoice()
		s.Duel.LastResult = ""
		return s

	case OpponentCast:
		s.Duel.OpponentChoice = PendingChoice()
		return s

	case RoundResult:
		s.Duel.PlayerChoice = e.YourSpell
		s.Duel.OpponentChoice = Revealed(e.OpponentSpell)
		s.Duel.LastResult = e.Result
		s.Duel.History = append(slices.Clone(s.Duel.History), RoundRecord{
			PlayerSpell:   e.YourSpell,
			OpponentSpell: e.OpponentSpell,
			Result:        e.Result,
		})
		switch e.Result {
		case OutcomeWin:
			s.Duel.PlayerWins = append(slices.Clone(s.Duel.PlayerWins), e.YourSpell)
		case OutcomeLose:
			s.Duel.OpponentWins = append(slices.Clone(s.Duel.OpponentWins), e.OpponentSpell)
		}
		s.Duel.PlayerScore = e.YourScore
		s.Duel.OpponentScore = e.OpponentScore
		return s

	case DuelOver:
		s.Phase = PhaseGameOver
		s.Result = &Result{
			Winner:     PlayerRef{ID: e.WinnerID, Name: e.WinnerName},
			YouWon:     e.YouWon || (e.WinnerID != "" && e.WinnerID == s.PlayerID),
			FinalScore: e.FinalScore,
		}
		return s

	case ErrorEvent:
		return s

	case JoinRequested:
		s.Phase = PhaseJoining
		s.PlayerName = e.Name
		s.Kind = e.Kind
		if e.Kind == KindDuel && e.Mode != "" {
			s.Duel.Mode = e.Mode
		}
		return s

	case SpellChosen:
		s.Duel.PlayerChoice = e.Spell
		return s

	case ConnStatus:
		s.Connected = e.Connected
		return s

	case SessionReset:
		return reset(s)

	default:
		return s
	}
}

// duelMode infers PVE for AI opponents, otherwise trusts the payload and
// falls back to PVP.
func duelMode(e DuelStart) Mode {
	if strings.HasPrefix(e.OpponentID, aiPrefix) {
		return ModePVE
	}
	if e.Mode != "" {
		return e.Mode
	}
	return ModePVP
}

func withLetter(guessed map[string]bool, letter string) map[string]bool {
	next := maps.Clone(guessed)
	if next == nil {
		next = map[string]bool{}
	}
	next[letter] = true
	return next
}
