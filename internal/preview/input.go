package preview

import "github.com/gdamore/tcell/v2"

// Action is a previewer command.
type Action uint8

const (
	ActionNone Action = iota
	ActionMoveN
	ActionMoveS
	ActionMoveE
	ActionMoveW
	ActionRegrow
	ActionSpawn
	ActionQuit
)

// keyToAction maps a tcell key event to a previewer action.
func keyToAction(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyUp:
		return ActionMoveN
	case tcell.KeyDown:
		return ActionMoveS
	case tcell.KeyRight:
		return ActionMoveE
	case tcell.KeyLeft:
		return ActionMoveW
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	}

	switch ev.Rune() {
	case 'k', 'K':
		return ActionMoveN
	case 'j', 'J':
		return ActionMoveS
	case 'l', 'L':
		return ActionMoveE
	case 'h', 'H':
		return ActionMoveW
	case 'r', 'R':
		return ActionRegrow
	case 's', 'S':
		return ActionSpawn
	case 'q', 'Q':
		return ActionQuit
	}
	return ActionNone
}
