package fuel

import (
	"strings"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/co2meter/internal/payload"
)

// preferredFieldKeys are tried in priority order before the substring
// heuristic.
var preferredFieldKeys = []string{
	"total_fuel_consumed",
	"data.total_fuel_consumed",
	"fuel_consumed",
	"total_fuel",
	"fuel_total",
	"fuel",
}

// DetectFieldKey finds the dotted path of the fuel-consumed value in a sample
// of rows. A preferred name is returned as listed; otherwise the first path
// (lowercased, in first-seen order) mentioning "fuel" together with "consum"
// or "total" is returned.
func DetectFieldKey(rows []payload.Value) (string, bool) {
	paths := leafPaths(rows)
	seen := lo.SliceToMap(paths, func(p string) (string, struct{}) { return p, struct{}{} })

	for _, key := range preferredFieldKeys {
		if _, ok := seen[key]; ok {
			return key, true
		}
	}

	return lo.Find(paths, func(p string) bool {
		return strings.Contains(p, "fuel") &&
			(strings.Contains(p, "consum") || strings.Contains(p, "total"))
	})
}

// leafPaths returns the distinct lowercase leaf paths of rows in the order
// they are first encountered.
func leafPaths(rows []payload.Value) []string {
	var paths []string
	for _, row := range rows {
		for path := range Leaves(row) {
			paths = append(paths, strings.ToLower(path))
		}
	}
	return lo.Uniq(paths)
}
