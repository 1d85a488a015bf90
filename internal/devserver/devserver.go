// Package devserver is a scripted stand-in for the real party-game
// service: one websocket endpoint speaking the same frames, with canned
// stations words and a fixed-cycle duel opponent. It exists so the client
// can be exercised end to end without the production backend; it is not a
// game-logic authority.
package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var stationWords = []string{"LUMOS", "PATRONUS", "ARCANUM"}

const (
	attemptsPerStation = 6
	roundsToWin        = 2
)

// beats maps each spell to the spell it defeats.
var beats = map[string]string{
	"ignis": "virel",
	"virel": "aqua",
	"aqua":  "ignis",
}

var aiCycle = []string{"ignis", "aqua", "virel"}

func Router(log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/ws", Handler(log))
	return r
}

type clientCommand struct {
	Type       string `json:"type"`
	PlayerName string `json:"player_name"`
	GameType   string `json:"game_type"`
	GameMode   string `json:"game_mode"`
	Letter     string `json:"letter"`
	Spell      string `json:"spell"`
}

// conn is the per-connection script state.
type conn struct {
	ws  *websocket.Conn
	log *zap.Logger

	playerID   string
	playerName string
	gameType   string

	// stations
	station  int
	guessed  map[string]bool
	attempts int
	words    []string

	// duels
	round        int
	yourScore    int
	aiScore      int
	aiTurn       int
	opponentID   string
	opponentName string
}

func Handler(log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close(websocket.StatusNormalClosure, "bye")

		c := &conn{ws: ws, log: log}
		for {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
			_, data, err := ws.Read(ctx)
			cancel()
			if err != nil {
				return
			}

			var cmd clientCommand
			if err := json.Unmarshal(data, &cmd); err != nil {
				c.send(r.Context(), map[string]any{"type": "error", "message": "bad json"})
				continue
			}
			c.dispatch(r.Context(), cmd)
		}
	}
}

func (c *conn) dispatch(ctx context.Context, cmd clientCommand) {
	switch cmd.Type {
	case "join":
		c.join(ctx, cmd)
	case "guess":
		c.guess(ctx, cmd.Letter)
	case "spell_cast":
		c.spellCast(ctx, cmd.Spell)
	case "rematch":
		c.startDuel(ctx)
	case "leave":
		c.playerID = ""
		c.gameType = ""
	default:
		c.send(ctx, map[string]any{"type": "error", "message": "unknown command"})
	}
}

func (c *conn) join(ctx context.Context, cmd clientCommand) {
	c.playerID = "p_" + uuid.NewString()[:8]
	c.playerName = cmd.PlayerName
	c.gameType = cmd.GameType

	c.send(ctx, map[string]any{
		"type":        "joined",
		"player_id":   c.playerID,
		"player_name": c.playerName,
		"game_id":     "g_" + uuid.NewString()[:8],
	})
	c.send(ctx, map[string]any{
		"type":             "waiting",
		"players_in_queue": 1,
		"message":          "Buscando jugadores...",
	})

	if cmd.GameType == "duels" {
		c.opponentName = "Guardián Arcano"
		c.opponentID = "ai_" + uuid.NewString()[:8]
		if cmd.GameMode == "pvp" {
			// No real matchmaking here; hand out a sparring partner.
			c.opponentID = "p_" + uuid.NewString()[:8]
			c.opponentName = "Sparring"
		}
		c.startDuel(ctx)
		return
	}

	c.words = stationWords
	c.send(ctx, map[string]any{
		"type":           "game_start",
		"players":        []map[string]string{{"id": c.playerID, "name": c.playerName}},
		"total_stations": len(c.words),
	})
	c.startStation(ctx, 1)
}

func (c *conn) startStation(ctx context.Context, station int) {
	c.station = station
	c.guessed = map[string]bool{}
	c.attempts = attemptsPerStation
	c.send(ctx, map[string]any{
		"type":          "station_update",
		"station":       c.station,
		"revealed":      c.revealed(),
		"attempts_left": c.attempts,
	})
	c.send(ctx, map[string]any{
		"type":     "station_status",
		"stations": map[string][]string{fmt.Sprint(c.station): {c.playerName}},
	})
}

func (c *conn) revealed() string {
	word := c.words[c.station-1]
	out := make([]byte, len(word))
	for i := range word {
		if c.guessed[string(word[i])] {
			out[i] = word[i]
		} else {
			out[i] = '_'
		}
	}
	return string(out)
}

func (c *conn) guess(ctx context.Context, letter string) {
	if c.gameType != "stations" || c.station == 0 {
		return
	}
	letter = strings.ToUpper(letter)
	word := c.words[c.station-1]
	c.guessed[letter] = true

	if strings.Contains(word, letter) {
		c.send(ctx, map[string]any{
			"type":     "correct_guess",
			"letter":   letter,
			"revealed": c.revealed(),
		})
		if !strings.Contains(c.revealed(), "_") {
			c.send(ctx, map[string]any{"type": "station_complete", "station": c.station, "word": word})
			if c.station == len(c.words) {
				c.send(ctx, map[string]any{
					"type":        "game_over",
					"winner_id":   c.playerID,
					"winner_name": c.playerName,
					"words":       c.words,
				})
				c.station = 0
				return
			}
			c.send(ctx, map[string]any{
				"type":        "player_progress",
				"player_id":   c.playerID,
				"player_name": c.playerName,
				"station":     c.station + 1,
			})
			c.startStation(ctx, c.station+1)
		}
		return
	}

	c.attempts--
	c.send(ctx, map[string]any{
		"type":          "wrong_guess",
		"letter":        letter,
		"attempts_left": c.attempts,
	})
	if c.attempts <= 0 {
		c.send(ctx, map[string]any{"type": "station_failed", "reset_to": c.station, "word": word})
		c.startStation(ctx, c.station)
	}
}

func (c *conn) startDuel(ctx context.Context) {
	c.round = 1
	c.yourScore = 0
	c.aiScore = 0
	c.send(ctx, map[string]any{
		"type":          "duel_start",
		"opponent_id":   c.opponentID,
		"opponent_name": c.opponentName,
		"rounds_to_win": roundsToWin,
	})
	c.send(ctx, map[string]any{"type": "round_start", "round_number": c.round})
}

func (c *conn) spellCast(ctx context.Context, spell string) {
	if c.gameType != "duels" || c.round == 0 {
		return
	}
	if _, ok := beats[spell]; !ok {
		c.send(ctx, map[string]any{"type": "error", "message": "unknown spell: " + spell})
		return
	}

	// The opponent commits first, value withheld until the reveal.
	c.send(ctx, map[string]any{"type": "opponent_cast"})

	aiSpell := aiCycle[c.aiTurn%len(aiCycle)]
	c.aiTurn++

	result := "tie"
	switch {
	case beats[spell] == aiSpell:
		result = "win"
		c.yourScore++
	case beats[aiSpell] == spell:
		result = "lose"
		c.aiScore++
	}

	c.send(ctx, map[string]any{
		"type":           "round_result",
		"round_number":   c.round,
		"your_spell":     spell,
		"opponent_spell": aiSpell,
		"result":         result,
		"your_score":     c.yourScore,
		"opponent_score": c.aiScore,
	})

	if c.yourScore >= roundsToWin || c.aiScore >= roundsToWin {
		winnerID, winnerName, yourResult := c.playerID, c.playerName, "victory"
		if c.aiScore > c.yourScore {
			winnerID, winnerName, yourResult = c.opponentID, c.opponentName, "defeat"
		}
		c.send(ctx, map[string]any{
			"type":        "duel_over",
			"winner_id":   winnerID,
			"winner_name": winnerName,
			"final_score": fmt.Sprintf("%d-%d", max(c.yourScore, c.aiScore), min(c.yourScore, c.aiScore)),
			"your_result": yourResult,
		})
		c.round = 0
		return
	}

	c.round++
	c.send(ctx, map[string]any{"type": "round_start", "round_number": c.round})
}

func (c *conn) send(ctx context.Context, frame map[string]any) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.ws.Write(wctx, websocket.MessageText, payload); err != nil {
		c.log.Debug("write failed", zap.Error(err))
	}
}
