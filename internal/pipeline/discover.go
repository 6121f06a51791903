package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/coffeestats/coffee-trade-etl/internal/logging"
)

var log *logrus.Logger = logging.GetLogger()

// Discovery is the set of input files found for a year range. Years lists the
// years with at least one file and Missed those without, both ascending.
type Discovery struct {
	ByYear map[int][]string
	Years  []int
	Missed []int
}

// Files returns all discovered paths, year by year.
func (d Discovery) Files() []string {
	files := []string{}
	for _, y := range d.Years {
		files = append(files, d.ByYear[y]...)
	}
	return files
}

// Pattern returns the glob used to find the files of one year.
func Pattern(rootDir, nameTemplate string, year int) string {
	return filepath.Join(rootDir, fmt.Sprintf("%s_*_WORLD_%d.csv", nameTemplate, year))
}

// Discover enumerates {rootDir}/{nameTemplate}_*_WORLD_{year}.csv for every
// year in [yearStart, yearEnd]. A year without files is logged and skipped.
func Discover(rootDir, nameTemplate string, yearStart, yearEnd int) (Discovery, error) {
	d := Discovery{ByYear: map[int][]string{}}
	if yearStart > yearEnd {
		return d, fmt.Errorf("invalid year range: %d > %d", yearStart, yearEnd)
	}
	for year := yearStart; year <= yearEnd; year++ {
		pattern := Pattern(rootDir, nameTemplate, year)
		files, err := filepath.Glob(pattern)
		if err != nil {
			return d, fmt.Errorf("invalid file pattern %s: %w", pattern, err)
		}
		if len(files) == 0 {
			log.Warnf("no files found for the pattern: %s", pattern)
			discoveryMisses.Inc()
			d.Missed = append(d.Missed, year)
			continue
		}
		sort.Strings(files)
		d.ByYear[year] = files
		d.Years = append(d.Years, year)
	}
	return d, nil
}
