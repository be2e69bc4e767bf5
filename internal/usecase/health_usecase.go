package usecase

import (
	"context"
	"sort"
	"time"
)

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}

// Probe reports whether one dependency is usable. A nil Probe is skipped.
type Probe func(ctx context.Context) error

type healthUsecase struct {
	probes  map[string]Probe
	timeout time.Duration
}

func NewHealthUsecase(probes map[string]Probe, timeout time.Duration) HealthUsecase {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &healthUsecase{probes: probes, timeout: timeout}
}

// Check runs every probe and reports "ok" or the failure per dependency.
func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	status := map[string]string{"status": "ok"}
	healthy := true

	names := make([]string, 0, len(u.probes))
	for name := range u.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		probe := u.probes[name]
		if probe == nil {
			continue
		}
		pctx, cancel := context.WithTimeout(ctx, u.timeout)
		err := probe(pctx)
		cancel()
		if err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		status["status"] = "degraded"
	}
	return status, healthy
}
