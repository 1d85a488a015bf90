package protocol

import "github.com/dgarridoc/arcanum-client/internal/engine"

// Outbound commands. All are fire-and-forget; the server never correlates
// acknowledgements back to a command.

type JoinCommand struct {
	Type       string `json:"type"`
	PlayerName string `json:"player_name"`
	GameType   string `json:"game_type"`
	GameMode   string `json:"game_mode,omitempty"`
}

type GuessCommand struct {
	Type   string `json:"type"`
	Letter string `json:"letter"`
}

type SpellCastCommand struct {
	Type  string `json:"type"`
	Spell string `json:"spell"`
}

type LeaveCommand struct {
	Type string `json:"type"`
}

type RematchCommand struct {
	Type string `json:"type"`
}

func Join(name string, kind engine.GameKind, mode engine.Mode) JoinCommand {
	return JoinCommand{
		Type:       "join",
		PlayerName: name,
		GameType:   string(kind),
		GameMode:   string(mode),
	}
}

func Guess(letter string) GuessCommand {
	return GuessCommand{Type: "guess", Letter: letter}
}

func SpellCast(spell engine.Spell) SpellCastCommand {
	return SpellCastCommand{Type: "spell_cast", Spell: string(spell)}
}

func Leave() LeaveCommand { return LeaveCommand{Type: "leave"} }

func Rematch() RematchCommand { return RematchCommand{Type: "rematch"} }
