package ids

import (
	"fmt"
	"strings"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

const (
	StrategySnowflake = "snowflake"
	StrategyMillis    = "millis"
)

// New builds the generator selected by configuration.
func New(strategy string, nodeID int64) (ports.IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategySnowflake:
		return NewSnowflakeGenerator(nodeID)
	case StrategyMillis:
		return NewMillisGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}
