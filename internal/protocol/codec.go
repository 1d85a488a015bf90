// Package protocol translates between the service's JSON frames and the
// engine's event union. Every frame carries a "type" discriminator; the
// remaining fields are tag-specific.
package protocol

import (
	"encoding/json"
	"strconv"

	"github.com/dgarridoc/arcanum-client/internal/engine"
)

// Inbound event tags.
const (
	TagJoined          = "joined"
	TagWaiting         = "waiting"
	TagGameStart       = "game_start"
	TagStationUpdate   = "station_update"
	TagCorrectGuess    = "correct_guess"
	TagWrongGuess      = "wrong_guess"
	TagStationComplete = "station_complete"
	TagStationFailed   = "station_failed"
	TagPlayerProgress  = "player_progress"
	TagPlayerJoined    = "player_joined"
	TagStationStatus   = "station_status"
	TagGameOver        = "game_over"
	TagDuelStart       = "duel_start"
	TagRoundStart      = "round_start"
	TagOpponentCast    = "opponent_cast"
	TagRoundResult     = "round_result"
	TagDuelOver        = "duel_over"
	TagError           = "error"
)

// Tags lists every inbound tag the service emits, in no particular order.
var Tags = []string{
	TagJoined, TagWaiting, TagGameStart, TagStationUpdate, TagCorrectGuess,
	TagWrongGuess, TagStationComplete, TagStationFailed, TagPlayerProgress,
	TagPlayerJoined, TagStationStatus, TagGameOver, TagDuelStart,
	TagRoundStart, TagOpponentCast, TagRoundResult, TagDuelOver, TagError,
}

type envelope struct {
	Type string `json:"type"`
}

type wirePlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type joinedFrame struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	GameID     string `json:"game_id"`
}

type waitingFrame struct {
	PlayersInQueue int    `json:"players_in_queue"`
	Message        string `json:"message"`
}

type gameStartFrame struct {
	Players       []wirePlayer `json:"players"`
	TotalStations int          `json:"total_stations"`
}

type stationUpdateFrame struct {
	Station      int    `json:"station"`
	Revealed     string `json:"revealed"`
	AttemptsLeft int    `json:"attempts_left"`
}

type correctGuessFrame struct {
	Letter   string `json:"letter"`
	Revealed string `json:"revealed"`
}

type wrongGuessFrame struct {
	Letter       string `json:"letter"`
	AttemptsLeft int    `json:"attempts_left"`
}

type stationCompleteFrame struct {
	Station int    `json:"station"`
	Word    string `json:"word"`
}

type stationFailedFrame struct {
	ResetTo int    `json:"reset_to"`
	Word    string `json:"word"`
}

type playerProgressFrame struct {
	PlayerID string `json:"player_id"`
	Station  int    `json:"station"`
}

type playerJoinedFrame struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Station    int    `json:"station"`
}

type stationStatusFrame struct {
	// Station numbers arrive as JSON object keys, hence strings.
	Stations map[string][]string `json:"stations"`
}

type gameOverFrame struct {
	WinnerID   string   `json:"winner_id"`
	WinnerName string   `json:"winner_name"`
	Words      []string `json:"words"`
}

type duelStartFrame struct {
	OpponentID   string `json:"opponent_id"`
	OpponentName string `json:"opponent_name"`
	RoundsToWin  int    `json:"rounds_to_win"`
	GameMode     string `json:"game_mode"`
}

type roundStartFrame struct {
	RoundNumber int `json:"round_number"`
}

type roundResultFrame struct {
	RoundNumber   int    `json:"round_number"`
	YourSpell     string `json:"your_spell"`
	OpponentSpell string `json:"opponent_spell"`
	Result        string `json:"result"`
	YourScore     int    `json:"your_score"`
	OpponentScore int    `json:"opponent_score"`
}

type duelOverFrame struct {
	WinnerID   string `json:"winner_id"`
	WinnerName string `json:"winner_name"`
	FinalScore string `json:"final_score"`
	YourResult string `json:"your_result"`
}

type errorFrame struct {
	Message string `json:"message"`
}

// Decode parses one inbound frame. It returns the tag, the decoded engine
// event, and whether the frame was usable. Malformed payloads and unknown
// tags report ok=false; the transport drops them.
func Decode(data []byte) (tag string, ev engine.Event, ok bool) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
		return "", nil, false
	}

	switch env.Type {
	case TagJoined:
		var f joinedFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.Joined{PlayerID: f.PlayerID, PlayerName: f.PlayerName, GameID: f.GameID}, true

	case TagWaiting:
		var f waitingFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.Waiting{InQueue: f.PlayersInQueue, Message: f.Message}, true

	case TagGameStart:
		var f gameStartFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		players := make([]engine.PlayerRef, 0, len(f.Players))
		for _, p := range f.Players {
			players = append(players, engine.PlayerRef{ID: p.ID, Name: p.Name})
		}
		return env.Type, engine.GameStart{Players: players, TotalStations: f.TotalStations}, true

	case TagStationUpdate:
		var f stationUpdateFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.StationUpdate{Station: f.Station, Revealed: f.Revealed, AttemptsLeft: f.AttemptsLeft}, true

	case TagCorrectGuess:
		var f correctGuessFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.CorrectGuess{Letter: f.Letter, Revealed: f.Revealed}, true

	case TagWrongGuess:
		var f wrongGuessFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.WrongGuess{Letter: f.Letter, AttemptsLeft: f.AttemptsLeft}, true

	case TagStationComplete:
		var f stationCompleteFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.StationComplete{Station: f.Station, Word: f.Word}, true

	case TagStationFailed:
		var f stationFailedFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.StationFailed{ResetTo: f.ResetTo, Word: f.Word}, true

	case TagPlayerProgress:
		var f playerProgressFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.PlayerProgress{PlayerID: f.PlayerID, Station: f.Station}, true

	case TagPlayerJoined:
		var f playerJoinedFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.PlayerJoined{PlayerID: f.PlayerID, PlayerName: f.PlayerName, Station: f.Station}, true

	case TagStationStatus:
		var f stationStatusFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		stations := make(map[int][]string, len(f.Stations))
		for k, names := range f.Stations {
			n, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			stations[n] = names
		}
		return env.Type, engine.StationStatus{Stations: stations}, true

	case TagGameOver:
		var f gameOverFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.GameOver{WinnerID: f.WinnerID, WinnerName: f.WinnerName, Words: f.Words}, true

	case TagDuelStart:
		var f duelStartFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.DuelStart{
			OpponentID:   f.OpponentID,
			OpponentName: f.OpponentName,
			RoundsToWin:  f.RoundsToWin,
			Mode:         engine.Mode(f.GameMode),
		}, true

	case TagRoundStart:
		var f roundStartFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.RoundStart{Round: f.RoundNumber}, true

	case TagOpponentCast:
		return env.Type, engine.OpponentCast{}, true

	case TagRoundResult:
		var f roundResultFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.RoundResult{
			Round:         f.RoundNumber,
			YourSpell:     engine.Spell(f.YourSpell),
			OpponentSpell: engine.Spell(f.OpponentSpell),
			Result:        engine.Outcome(f.Result),
			YourScore:     f.YourScore,
			OpponentScore: f.OpponentScore,
		}, true

	case TagDuelOver:
		var f duelOverFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.DuelOver{
			WinnerID:   f.WinnerID,
			WinnerName: f.WinnerName,
			FinalScore: f.FinalScore,
			YouWon:     f.YourResult == "victory",
		}, true

	case TagError:
		var f errorFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return env.Type, nil, false
		}
		return env.Type, engine.ErrorEvent{Message: f.Message}, true

	default:
		return env.Type, nil, false
	}
}
