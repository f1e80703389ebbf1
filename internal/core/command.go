package core

// Command is an already-decoded player intent accepted by the game core.
// Mapping raw keys to commands is the platform's job.
type Command int

const (
	CmdNone Command = iota
	CmdMoveUp
	CmdMoveDown
	CmdMoveLeft
	CmdMoveRight
	CmdAttack      // engage the Attack perk
	CmdSpeedToggle // engage or release the Speed perk
	CmdRestart     // rebuild the session
	CmdQuit        // tear the session down
	CmdPause       // pause or resume the timer
)

// String returns a human-readable name for the command.
func (c Command) String() string {
	switch c {
	case CmdNone:
		return "None"
	case CmdMoveUp:
		return "MoveUp"
	case CmdMoveDown:
		return "MoveDown"
	case CmdMoveLeft:
		return "MoveLeft"
	case CmdMoveRight:
		return "MoveRight"
	case CmdAttack:
		return "Attack"
	case CmdSpeedToggle:
		return "SpeedToggle"
	case CmdRestart:
		return "Restart"
	case CmdQuit:
		return "Quit"
	case CmdPause:
		return "Pause"
	default:
		return "Unknown"
	}
}

// Direction returns the heading requested by a move command.
// ok is false for commands that are not moves.
func (c Command) Direction() (d Direction, ok bool) {
	switch c {
	case CmdMoveUp:
		return DirUp, true
	case CmdMoveDown:
		return DirDown, true
	case CmdMoveLeft:
		return DirLeft, true
	case CmdMoveRight:
		return DirRight, true
	}
	return 0, false
}
