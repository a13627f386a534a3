// Package roster holds the fixed player tokens and actions the harness drives.
package roster

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultPlayers is the stock roster. Each token doubles as the player's nickname.
var DefaultPlayers = []string{"Ania", "Bartek", "Czarek", "Daria", "Ewa", "Filip", "Gosia"}

// Action is a move a player can submit to the game server.
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
)

var actionNames = [...]string{"Fold", "Check", "Call", "Raise"}

// Actions lists every action in menu order.
var Actions = []Action{Fold, Check, Call, Raise}

func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	return a >= Fold && a <= Raise
}

// NeedsAmount reports whether the action carries an amount.
func (a Action) NeedsAmount() bool {
	return a == Raise
}

// ParseAction accepts an action name (case-insensitive) or its menu index.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		a := Action(i)
		if !a.Valid() {
			return 0, fmt.Errorf("action index %d out of range [0,%d]", i, len(Actions)-1)
		}
		return a, nil
	}
	for _, a := range Actions {
		if strings.EqualFold(a.String(), s) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Roster is an immutable ordered list of player tokens.
type Roster struct {
	players []string
}

// New copies players into a roster.
func New(players []string) *Roster {
	return &Roster{players: append([]string(nil), players...)}
}

// Default returns the stock seven-player roster.
func Default() *Roster {
	return New(DefaultPlayers)
}

// Len returns the number of players.
func (r *Roster) Len() int {
	return len(r.players)
}

// Players returns a copy of the tokens in order.
func (r *Roster) Players() []string {
	return append([]string(nil), r.players...)
}

// Player returns the token at index i.
func (r *Roster) Player(i int) (string, bool) {
	if i < 0 || i >= len(r.players) {
		return "", false
	}
	return r.players[i], true
}

// Lookup resolves a player by index or by token name.
func (r *Roster) Lookup(s string) (string, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		p, ok := r.Player(i)
		if !ok {
			return "", fmt.Errorf("player index %d out of range [0,%d]", i, len(r.players)-1)
		}
		return p, nil
	}
	for _, p := range r.players {
		if p == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown player %q", s)
}
