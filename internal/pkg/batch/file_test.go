package batch

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadAddresses(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "addresses.csv")
	err := ioutil.WriteFile(fp, []byte("1,100 Main St\n2,\"200 Oak Ave, Chicago\"\n"), 0644)
	assert.Nil(t, err)

	records, err := ReadAddresses(fp)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(records))
	assert.Equal(t, AddressRecord{ID: "1", Address: "100 Main St"}, records[0])
	assert.Equal(t, AddressRecord{ID: "2", Address: "200 Oak Ave, Chicago"}, records[1])
}

func TestReadAddresses_Fails(t *testing.T) {
	_, err := ReadAddresses(filepath.Join(t.TempDir(), "none.csv"))
	assert.NotNil(t, err)
}

func TestReadAddresses_WrongLine(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "addresses.csv")
	err := ioutil.WriteFile(fp, []byte("1\n"), 0644)
	assert.Nil(t, err)

	_, err = ReadAddresses(fp)
	assert.NotNil(t, err)
}

func TestWriteResults(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "results.csv")
	rows := []ResultRow{
		{ColID: "1", ColQuery: "100 Main St", ColLatitude: "41.8781", ColLongitude: "-87.6298", "owner": "Jane"},
	}
	err := WriteResults(fp, rows)
	assert.Nil(t, err)

	data, err := ioutil.ReadFile(fp)
	assert.Nil(t, err)
	assert.Equal(t, "Id,GeocodeRequest/Query,GeocodeResponse/Point/Latitude,GeocodeResponse/Point/Longitude\n"+
		"1,100 Main St,41.8781,-87.6298\n", string(data))
}

func TestWriteResults_Overwrites(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "results.csv")
	assert.Nil(t, ioutil.WriteFile(fp, []byte("old data"), 0644))

	err := WriteResults(fp, []ResultRow{{ColID: "1"}})
	assert.Nil(t, err)
	data, _ := ioutil.ReadFile(fp)
	assert.NotContains(t, string(data), "old data")
}
