// Package feed provides market data access: historical candles over
// REST and live kline updates over WebSocket.
package feed

// State describes the lifecycle of a live feed connection.
type State int

// Feed states.
const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateUnavailable
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateUnavailable:
		return "unavailable"
	case StateClosed:
		return "closed"
	default:
		return "idle"
	}
}
