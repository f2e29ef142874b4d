package orchestration

import (
	"context"
	"sync"

	"github.com/agbru/argontune/internal/hasher"
	"github.com/agbru/argontune/internal/params"
)

var (
	defaultOnce  sync.Once
	defaultTuner *Tuner
)

// Default returns the process-wide tuner: Argon2id over x/crypto with an
// in-memory store.
func Default() *Tuner {
	defaultOnce.Do(func() {
		defaultTuner = NewTuner(hasher.NewArgon2())
	})
	return defaultTuner
}

// GetMaxParameters tunes req on the process-wide tuner. Zero fields take
// DefaultBudget, DefaultCalibration and DefaultSelection.
func GetMaxParameters(ctx context.Context, req Request) (params.CostParameters, error) {
	res, err := Default().Tune(ctx, req)
	if err != nil {
		return params.CostParameters{}, err
	}
	return res.Params, nil
}
