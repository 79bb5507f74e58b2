package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock supplies the current time. Feature extraction substitutes "now" for
// missing or malformed order dates, so it must be injectable in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func NewSystemClock() Clock {
	return systemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
