package cli

import (
	"time"

	"github.com/agbru/argontune/internal/calibration"
	"github.com/agbru/argontune/internal/orchestration"
	"github.com/agbru/argontune/internal/params"
	"github.com/agbru/argontune/internal/selection"
)

func sample(mem, timeCost uint32, ms int) calibration.Sample {
	p := params.CostParameters{HashLength: 32, TimeCost: timeCost, MemoryCost: mem, Parallelism: 4, Variant: params.Argon2id}
	return calibration.NewSample(p, time.Duration(ms)*time.Millisecond)
}

func freshResult() orchestration.Result {
	series := calibration.Series{sample(16, 1, 40), sample(16, 2, 80), sample(16, 3, 120)}
	return orchestration.Result{
		Key:    orchestration.Key{Budget: 100 * time.Millisecond, Calibration: calibration.ClosestMatch, Selection: selection.MaxCost},
		Params: series[1].Params,
		Series: series,
		Chosen: series[1],
	}
}

func cachedResult() orchestration.Result {
	res := freshResult()
	res.Cached, res.Series, res.Chosen = true, nil, calibration.Sample{}
	return res
}
