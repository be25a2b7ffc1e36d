package batch

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var forwardHeader = []string{ColID, ColCulture, ColConfidence, ColQuery, ColLatitude, ColLongitude}
var reverseHeader = []string{ColID, ColCulture, ColConfidence, ColReqLatitude, ColReqLongitude, ColFormattedAddress}

//Encode prepares a forward geocoding batch file.
//Response columns are left empty, the provider fills them on completion
func Encode(records []AddressRecord, includePreamble bool) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}
	rows := make([][]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if r.Address == "" {
			return nil, errors.Errorf("Empty address for id '%s'", r.ID)
		}
		if seen[r.ID] {
			return nil, errors.Errorf("Duplicate id '%s'", r.ID)
		}
		seen[r.ID] = true
		rows = append(rows, []string{r.ID, defaultCulture, defaultConfidence, r.Address, "", ""})
	}
	return encode(forwardHeader, rows, includePreamble)
}

//EncodePoints prepares a reverse geocoding batch file
func EncodePoints(records []PointRecord, includePreamble bool) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}
	rows := make([][]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if seen[r.ID] {
			return nil, errors.Errorf("Duplicate id '%s'", r.ID)
		}
		seen[r.ID] = true
		rows = append(rows, []string{r.ID, defaultCulture, defaultConfidence,
			formatCoord(r.Latitude), formatCoord(r.Longitude), ""})
	}
	return encode(reverseHeader, rows, includePreamble)
}

func encode(header []string, rows [][]string, includePreamble bool) ([]byte, error) {
	var b bytes.Buffer
	if includePreamble {
		// the preamble is a raw line, not a CSV record - it must not get quoted
		b.WriteString(Preamble)
		b.WriteString("\n")
	}
	w := csv.NewWriter(&b)
	if err := w.Write(header); err != nil {
		return nil, errors.Wrap(err, "Can't write header")
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, errors.Wrap(err, "Can't write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "Can't write batch")
	}
	return b.Bytes(), nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

//Decode parses a dataflow result payload into rows keyed by column name.
//The first line is a title and is discarded. The header line comes back
//with a ', ' separator while data lines use plain ',' - it is normalized
//before parsing
func Decode(raw string) ([]ResultRow, error) {
	lines := splitLines(raw)
	if len(lines) < 3 {
		return nil, ErrEmptyResult
	}
	header := strings.ReplaceAll(lines[1], ", ", ",")
	data := strings.Join(append([]string{header}, lines[2:]...), "\n")
	r := csv.NewReader(strings.NewReader(data))
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse result")
	}
	cols := recs[0]
	res := make([]ResultRow, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		row := ResultRow{}
		for i, c := range cols {
			if i < len(rec) {
				row[c] = rec[i]
			}
		}
		res = append(res, row)
	}
	return res, nil
}

//Reprepare takes a loosely formatted two column CSV with 'id' and 'address'
//headers in any casing and re-encodes it into the canonical batch format
func Reprepare(loose string) ([]byte, error) {
	r := csv.NewReader(strings.NewReader(loose))
	recs, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse csv")
	}
	if len(recs) < 2 {
		return nil, ErrEmptyBatch
	}
	idIdx, addrIdx := -1, -1
	for i, c := range recs[0] {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "id":
			idIdx = i
		case "address":
			addrIdx = i
		}
	}
	if idIdx < 0 || addrIdx < 0 {
		return nil, errors.New("No id/address columns found")
	}
	records := make([]AddressRecord, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		if idIdx >= len(rec) || addrIdx >= len(rec) {
			continue
		}
		records = append(records, AddressRecord{ID: rec[idIdx], Address: rec[addrIdx]})
	}
	return Encode(records, true)
}

func splitLines(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
