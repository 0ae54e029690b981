package console

import "github.com/cwbudde/algo-speaker/stats/level"

// StatusMsg carries a periodic extended status record.
type StatusMsg [7]byte

// Levels holds the meters of the running audio loop.
type Levels struct {
	Input  level.Stats
	Output level.Stats
}
