// Package strategy holds the basic-strategy chart used to grade player
// decisions.
//
// The chart is static data keyed by hand category (pair, soft, hard), the
// player's value and the dealer upcard. Lookups follow a fixed precedence:
// a pair rule wins over a soft-total rule, which wins over a hard-total rule.
package strategy

import (
	"fmt"
	"strings"
)

// Action is a player decision.
type Action int

const (
	Hit Action = iota
	Stand
	Double
	Split
)

// Actions lists every action in display order.
var Actions = [...]Action{Hit, Stand, Double, Split}

// String returns the display name of the action
func (a Action) String() string {
	switch a {
	case Hit:
		return "Hit"
	case Stand:
		return "Stand"
	case Double:
		return "Double Down"
	case Split:
		return "Split"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Code returns the single-letter chart code (H, S, D, P).
func (a Action) Code() string {
	switch a {
	case Hit:
		return "H"
	case Stand:
		return "S"
	case Double:
		return "D"
	case Split:
		return "P"
	default:
		return "?"
	}
}

// ParseAction accepts a chart code or a display name, case-insensitively.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "hit":
		return Hit, nil
	case "s", "stand":
		return Stand, nil
	case "d", "double", "double down":
		return Double, nil
	case "p", "split":
		return Split, nil
	default:
		return 0, fmt.Errorf("strategy: unknown action %q", s)
	}
}
