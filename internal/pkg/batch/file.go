package batch

import (
	"bytes"
	"encoding/csv"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
)

var resultFileHeader = []string{ColID, ColQuery, ColLatitude, ColLongitude}

//ReadAddresses loads a headerless two column 'id,address' CSV file
func ReadAddresses(path string) ([]AddressRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open "+path)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read "+path)
	}
	res := make([]AddressRecord, 0, len(recs))
	for i, rec := range recs {
		if len(rec) < 2 {
			return nil, errors.Errorf("Wrong line %d in %s, expected 'id,address'", i+1, path)
		}
		res = append(res, AddressRecord{ID: rec[0], Address: rec[1]})
	}
	return res, nil
}

//WriteResults saves geocoded rows to a four column CSV file,
//overwriting the file if it exists. Unknown columns are dropped.
//The file is written in one step - no partial file is left on failure
func WriteResults(path string, rows []ResultRow) error {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	if err := w.Write(resultFileHeader); err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for _, row := range rows {
		rec := make([]string, len(resultFileHeader))
		for i, c := range resultFileHeader {
			rec[i] = row[c]
		}
		if err := w.Write(rec); err != nil {
			return errors.Wrap(err, "Can't write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "Can't prepare result file")
	}
	return errors.Wrap(ioutil.WriteFile(path, b.Bytes(), 0644), "Can't write "+path)
}
