package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/charmap"
)

// Cell values read as missing.
var nanValues = []string{"", "NA", "NaN", "<nil>"}

// Ingest reads one ISO-8859-1 encoded CSV file. Every column is kept as text.
func Ingest(path string) (dataframe.DataFrame, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if bytes.IndexByte(raw, 0) >= 0 {
		return dataframe.DataFrame{}, &DecodingError{Path: path, Err: errNULByte}
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return dataframe.DataFrame{}, &DecodingError{Path: path, Err: err}
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return dataframe.DataFrame{}, &MalformedRowError{Path: path, Line: parseErr.Line, Err: parseErr.Err}
		}
		return dataframe.DataFrame{}, &MalformedRowError{Path: path, Err: err}
	}
	if len(records) == 0 {
		return dataframe.DataFrame{}, &MalformedRowError{Path: path, Err: errNoHeader}
	}

	header := records[0]
	for i, name := range header {
		if name == "" {
			header[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}

	if len(records) == 1 {
		ingestedFiles.Inc()
		types := make([]series.Type, len(header))
		for i := range types {
			types[i] = series.String
		}
		return emptyFrame(header, types), nil
	}

	df := dataframe.LoadRecords(
		records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nanValues),
	)
	if df.Err != nil {
		return df, &MalformedRowError{Path: path, Err: df.Err}
	}
	ingestedFiles.Inc()
	ingestedRows.Add(float64(df.Nrow()))
	log.Debugf("ingested %d rows from %s", df.Nrow(), path)
	return df, nil
}
