package pricing

import "sort"

// APIStat is one row of pricing API statistics
type APIStat struct {
	Service string
	Region  string
	Success int
	Failure int
	Cache   int
}

// Total is the number of API lookups, excluding cache hits
func (s APIStat) Total() int {
	return s.Success + s.Failure
}

// SuccessRate is the share of API lookups that succeeded, in percent
func (s APIStat) SuccessRate() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Total()) * 100.0
}

// APIStats returns a snapshot of the pricing statistics sorted by service and region
func (e *Estimator) APIStats() []APIStat {
	if e == nil {
		return nil
	}
	e.statsLock.RLock()
	defer e.statsLock.RUnlock()

	var out []APIStat
	for service, regions := range e.stats {
		for region, counts := range regions {
			out = append(out, APIStat{
				Service: service,
				Region:  region,
				Success: counts[statSuccess],
				Failure: counts[statFailure],
				Cache:   counts[statCache],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Service != out[j].Service {
			return out[i].Service < out[j].Service
		}
		return out[i].Region < out[j].Region
	})
	return out
}
