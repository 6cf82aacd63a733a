package availability

import (
	"sort"
	"time"
)

func timeParseDate(date string) (time.Time, error) {
	return time.Parse("2006-01-02", date)
}

// NormalizeTimes sorts and deduplicates a slot time set.
func NormalizeTimes(times []string) []string {
	seen := make(map[string]struct{}, len(times))
	out := make([]string, 0, len(times))
	for _, t := range times {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
