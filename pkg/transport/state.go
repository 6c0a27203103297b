package transport

// State is the lifecycle phase of a Conn. Transitions are strictly
// linear: Disconnected -> Connecting -> Connected -> Disconnecting ->
// Disconnected. A failed connect attempt runs the Disconnecting cleanup
// internally and lands back on Disconnected; no stable Connecting failure
// state is ever observable.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateDisconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}
