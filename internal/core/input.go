package core

// Action represents a semantic game action, abstracted from physical key presses.
// Games react to intents; the platform decides which keys produce them.
type Action int

const (
	ActionNone      Action = iota
	ActionUp               // W, Up arrow
	ActionDown             // S, Down arrow
	ActionLeft             // A, Left arrow
	ActionRight            // D, Right arrow
	ActionToggleAI         // Space - start/stop the solver
	ActionHint             // H - ask the solver without moving
	ActionSmarter          // + - raise solver intelligence
	ActionDumber           // - - lower solver intelligence
	ActionSlower           // ] - longer delay between AI moves
	ActionFaster           // [ - shorter delay between AI moves
	ActionRestart          // R - new game
	ActionPause            // P - pause/unpause
	ActionQuit             // Q, Ctrl+C
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionToggleAI:
		return "ToggleAI"
	case ActionHint:
		return "Hint"
	case ActionSmarter:
		return "Smarter"
	case ActionDumber:
		return "Dumber"
	case ActionSlower:
		return "Slower"
	case ActionFaster:
		return "Faster"
	case ActionRestart:
		return "Restart"
	case ActionPause:
		return "Pause"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame represents the input state during one simulation tick.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return f.Actions[a]
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	clear(f.Actions)
}
