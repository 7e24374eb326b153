package actors

import (
	"log/slog"
	"time"

	"fedit/internal/database"
	"fedit/internal/logging"
	"fedit/internal/utils"
)

// GetCountsMsg asks an actor for the size of the collection it owns.
type GetCountsMsg struct{}

// Deps is what every store actor needs to reach its keys.
type Deps struct {
	Store     database.KeyValue
	Keys      database.Keys
	Logger    *slog.Logger
	Metrics   *utils.MetricsCollector
	Clock     Clock
	OpTimeout time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.Metrics == nil {
		d.Metrics = utils.NewMetricsCollector()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.OpTimeout <= 0 {
		d.OpTimeout = 5 * time.Second
	}
	return d
}
