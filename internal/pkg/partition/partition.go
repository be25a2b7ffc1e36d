package partition

import (
	"encoding/csv"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/tribapps/geobatch/internal/pkg/batch"
)

// bingFields are the columns the dataflow API accepts besides Id.
// Everything else is caller private and must be stashed before submission
var bingFields = []string{
	batch.ColCulture,
	batch.ColConfidence,
	batch.ColReqLatitude,
	batch.ColReqLongitude,
	batch.ColFormattedAddress,
	batch.ColLatitude,
	batch.ColLongitude,
	batch.ColQuery,
}

var bingFieldSet = initBingFieldSet()

func initBingFieldSet() map[string]bool {
	res := make(map[string]bool, len(bingFields))
	for _, f := range bingFields {
		res[f] = true
	}
	return res
}

//Split divides a caller CSV into the provider acceptable subset and the
//private leftovers, both keyed by the Id column. A row contributes to the
//private map only if it carries at least one non-Id private field
func Split(raw string) (string, map[string]map[string]string, error) {
	r := csv.NewReader(strings.NewReader(raw))
	recs, err := r.ReadAll()
	if err != nil {
		return "", nil, errors.Wrap(err, "Can't parse csv")
	}
	if len(recs) < 2 {
		return "", nil, errors.Wrap(batch.ErrEmptyBatch, "No data rows")
	}
	header := recs[0]
	idIdx := -1
	colIdx := make(map[string]int, len(header))
	for i, c := range header {
		c = strings.TrimSpace(c)
		header[i] = c
		if idIdx < 0 && strings.EqualFold(c, "id") {
			idIdx = i
			continue
		}
		colIdx[c] = i
	}
	if idIdx < 0 {
		return "", nil, errors.New("No Id column found")
	}
	provHeader := []string{batch.ColID}
	for _, f := range bingFields {
		if _, ok := colIdx[f]; ok {
			provHeader = append(provHeader, f)
		}
	}
	private := make(map[string]map[string]string)
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(provHeader); err != nil {
		return "", nil, errors.Wrap(err, "Can't write header")
	}
	for _, rec := range recs[1:] {
		id := rec[idIdx]
		row := make([]string, 0, len(provHeader))
		row = append(row, id)
		for _, f := range provHeader[1:] {
			row = append(row, rec[colIdx[f]])
		}
		if err := w.Write(row); err != nil {
			return "", nil, errors.Wrap(err, "Can't write row")
		}
		extra := make(map[string]string)
		for i, c := range header {
			if i == idIdx || bingFieldSet[c] {
				continue
			}
			extra[c] = rec[i]
		}
		if len(extra) > 0 {
			private[id] = extra
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, errors.Wrap(err, "Can't write csv")
	}
	return b.String(), private, nil
}

//Merge overlays stashed private fields onto provider result rows by Id.
//Private fields win on collision. Rows without a private counterpart pass
//through unchanged, a nil private map is a valid empty one
func Merge(rows []batch.ResultRow, private map[string]map[string]string) []batch.ResultRow {
	res := make([]batch.ResultRow, 0, len(rows))
	for _, row := range rows {
		merged := make(batch.ResultRow, len(row))
		for k, v := range row {
			merged[k] = v
		}
		if extra, ok := private[row[batch.ColID]]; ok {
			for k, v := range extra {
				merged[k] = v
			}
		}
		res = append(res, merged)
	}
	return res
}

//EncodeRows serializes a private field map to CSV for stashing.
//Output is deterministic: columns and rows are sorted
func EncodeRows(private map[string]map[string]string) (string, error) {
	cols := make([]string, 0)
	seen := make(map[string]bool)
	for _, extra := range private {
		for c := range extra {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	sort.Strings(cols)
	ids := make([]string, 0, len(private))
	for id := range private {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(append([]string{batch.ColID}, cols...)); err != nil {
		return "", errors.Wrap(err, "Can't write header")
	}
	for _, id := range ids {
		rec := make([]string, 0, len(cols)+1)
		rec = append(rec, id)
		for _, c := range cols {
			rec = append(rec, private[id][c])
		}
		if err := w.Write(rec); err != nil {
			return "", errors.Wrap(err, "Can't write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, "Can't write csv")
	}
	return b.String(), nil
}

//DecodeRows parses a stashed private field CSV back into a map by Id
func DecodeRows(raw string) (map[string]map[string]string, error) {
	res := make(map[string]map[string]string)
	if strings.TrimSpace(raw) == "" {
		return res, nil
	}
	r := csv.NewReader(strings.NewReader(raw))
	recs, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse stashed csv")
	}
	if len(recs) < 2 {
		return res, nil
	}
	header := recs[0]
	idIdx := -1
	for i, c := range header {
		if strings.EqualFold(strings.TrimSpace(c), "id") {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, errors.New("No Id column in stashed csv")
	}
	for _, rec := range recs[1:] {
		extra := make(map[string]string)
		for i, c := range header {
			if i == idIdx || i >= len(rec) {
				continue
			}
			extra[strings.TrimSpace(c)] = rec[i]
		}
		res[rec[idIdx]] = extra
	}
	return res, nil
}

//WriteCSV writes result rows with a deterministic column order:
//Id first, known provider columns next, private columns sorted last
func WriteCSV(wr io.Writer, rows []batch.ResultRow) error {
	seen := make(map[string]bool)
	for _, row := range rows {
		for c := range row {
			seen[c] = true
		}
	}
	cols := make([]string, 0, len(seen))
	if seen[batch.ColID] {
		cols = append(cols, batch.ColID)
		delete(seen, batch.ColID)
	}
	for _, f := range bingFields {
		if seen[f] {
			cols = append(cols, f)
			delete(seen, f)
		}
	}
	rest := make([]string, 0, len(seen))
	for c := range seen {
		rest = append(rest, c)
	}
	sort.Strings(rest)
	cols = append(cols, rest...)

	w := csv.NewWriter(wr)
	if err := w.Write(cols); err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for _, row := range rows {
		rec := make([]string, len(cols))
		for i, c := range cols {
			rec[i] = row[c]
		}
		if err := w.Write(rec); err != nil {
			return errors.Wrap(err, "Can't write row")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "Can't write csv")
}
