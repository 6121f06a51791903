package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-gota/gota/dataframe"

	"github.com/coffeestats/coffee-trade-etl/internal/api/listoptions"
	"github.com/coffeestats/coffee-trade-etl/internal/pipeline"
)

func CollectionResponse(collection []interface{}, req *http.Request, count, limit, offset int) *Collection {
	var first, previous, next, last string
	q := req.URL.Query()

	// set the "first" link with same limit+offset (what they requested)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	params, _ := url.PathUnescape(q.Encode())
	first = fmt.Sprintf("%v?%v", req.URL.Path, params)

	// set the "last" link with limit+offset set for the next page
	q.Set("offset", strconv.Itoa(offset+limit))
	params, _ = url.PathUnescape(q.Encode())
	last = fmt.Sprintf("%v?%v", req.URL.Path, params)

	// set the "previous" link with limit-offset set for the previous page
	if offset > limit {
		q.Set("offset", strconv.Itoa(offset-limit))
		params, _ = url.PathUnescape(q.Encode())
		previous = fmt.Sprintf("%v?%v", req.URL.Path, params)
	}

	// set the "next" link with limit+offset set for the next page
	if offset+limit < count {
		q.Set("offset", strconv.Itoa(offset+limit))
		params, _ = url.PathUnescape(q.Encode())
		next = fmt.Sprintf("%v?%v", req.URL.Path, params)
	}

	// set offset based on limit size aka page size
	links := Links{
		First:    first,
		Previous: previous,
		Next:     next,
		Last:     last,
	}

	return &Collection{
		Data: collection,
		Meta: Metadata{
			Count:  count,
			Limit:  limit,
			Offset: offset,
		},
		Links: links,
	}
}

// tableRecords converts rows to JSON objects keyed by column name. Missing
// values become null.
func tableRecords(df dataframe.DataFrame) []interface{} {
	if pipeline.IsEmpty(df) {
		return []interface{}{}
	}
	maps := df.Maps()
	records := make([]interface{}, len(maps))
	for i, m := range maps {
		records[i] = m
	}
	return records
}

// filterRows keeps the rows whose integer value in col satisfies keep.
func filterRows(df dataframe.DataFrame, col string, keep func(int) bool) (dataframe.DataFrame, error) {
	if pipeline.IsEmpty(df) {
		return df, nil
	}
	s := df.Col(col)
	if s.Err != nil {
		return dataframe.DataFrame{}, s.Err
	}
	idx := []int{}
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		v, err := e.Int()
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("column %s: %w", col, err)
		}
		if keep(v) {
			idx = append(idx, i)
		}
	}
	out := df.Subset(idx)
	return out, out.Err
}

// filterYear keeps the rows of year. A zero year keeps every row.
func filterYear(df dataframe.DataFrame, col string, year int) (dataframe.DataFrame, error) {
	if year == 0 {
		return df, nil
	}
	return filterRows(df, col, func(v int) bool { return v == year })
}

// filterPeriodYear keeps the rows whose period, yyyy or yyyymm, falls in year.
func filterPeriodYear(df dataframe.DataFrame, col string, year int) (dataframe.DataFrame, error) {
	if year == 0 {
		return df, nil
	}
	return filterRows(df, col, func(v int) bool {
		if v >= 10000 {
			v /= 100
		}
		return v == year
	})
}

// pageTable orders df as requested and cuts one page out of it.
func pageTable(df dataframe.DataFrame, opts listoptions.ListOptions) (dataframe.DataFrame, int, error) {
	if pipeline.IsEmpty(df) {
		return df, 0, nil
	}
	if opts.OrderBy != "" {
		order := dataframe.Sort(opts.OrderBy)
		if opts.OrderHow == listoptions.OrderDesc {
			order = dataframe.RevSort(opts.OrderBy)
		}
		df = df.Arrange(order)
		if df.Err != nil {
			return df, 0, df.Err
		}
	}
	count := df.Nrow()
	idx := []int{}
	for i := opts.Offset; i < count && i < opts.Offset+opts.Limit; i++ {
		idx = append(idx, i)
	}
	page := df.Subset(idx)
	return page, count, page.Err
}

func writeTableCSV(w http.ResponseWriter, df dataframe.DataFrame, filename string) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if pipeline.IsEmpty(df) {
		return nil
	}
	return df.WriteCSV(w)
}
