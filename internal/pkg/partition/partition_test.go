package partition

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tribapps/geobatch/internal/pkg/batch"
)

const testCSV = "Id,GeocodeRequest/Query,owner,notes\n" +
	"42,100 Main St,Jane,check this\n" +
	"43,200 Oak Ave,,\n"

func TestSplit(t *testing.T) {
	prov, private, err := Split(testCSV)
	assert.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(prov), "\n")
	assert.Equal(t, "Id,GeocodeRequest/Query", lines[0])
	assert.Equal(t, "42,100 Main St", lines[1])
	assert.Equal(t, "43,200 Oak Ave", lines[2])
	assert.NotContains(t, prov, "owner")
	assert.NotContains(t, prov, "Jane")
	assert.Equal(t, map[string]string{"owner": "Jane", "notes": "check this"}, private["42"])
}

func TestSplit_RowWithoutPrivateFields(t *testing.T) {
	_, private, err := Split("Id,GeocodeRequest/Query\n42,100 Main St\n")
	assert.Nil(t, err)
	assert.Equal(t, 0, len(private))
}

func TestSplit_IDCasing(t *testing.T) {
	prov, private, err := Split("ID,GeocodeRequest/Query,owner\n42,100 Main St,Jane\n")
	assert.Nil(t, err)
	assert.True(t, strings.HasPrefix(prov, "Id,"))
	assert.Equal(t, "Jane", private["42"]["owner"])
}

func TestSplit_Fails(t *testing.T) {
	_, _, err := Split("owner,notes\nJane,olia\n")
	assert.NotNil(t, err)
	_, _, err = Split("Id,owner\n")
	assert.NotNil(t, err)
}

func TestSplit_Deterministic(t *testing.T) {
	p1, _, err := Split(testCSV)
	assert.Nil(t, err)
	p2, _, err := Split(testCSV)
	assert.Nil(t, err)
	assert.Equal(t, p1, p2)
}

func TestMerge(t *testing.T) {
	rows := []batch.ResultRow{
		{batch.ColID: "42", batch.ColLatitude: "41.8781", batch.ColLongitude: "-87.6298"},
		{batch.ColID: "43", batch.ColLatitude: "41.9", batch.ColLongitude: "-87.7"},
	}
	private := map[string]map[string]string{"42": {"owner": "Jane"}}

	merged := Merge(rows, private)
	assert.Equal(t, 2, len(merged))
	assert.Equal(t, "Jane", merged[0]["owner"])
	assert.Equal(t, "41.8781", merged[0][batch.ColLatitude])
	_, f := merged[1]["owner"]
	assert.False(t, f)
}

func TestMerge_PrivateWinsOnCollision(t *testing.T) {
	rows := []batch.ResultRow{{batch.ColID: "42", "owner": "provider"}}
	merged := Merge(rows, map[string]map[string]string{"42": {"owner": "Jane"}})
	assert.Equal(t, "Jane", merged[0]["owner"])
}

func TestMerge_NilPrivate(t *testing.T) {
	rows := []batch.ResultRow{{batch.ColID: "42"}}
	merged := Merge(rows, nil)
	assert.Equal(t, 1, len(merged))
	assert.Equal(t, "42", merged[0][batch.ColID])
}

func TestMerge_DoesNotTouchInput(t *testing.T) {
	rows := []batch.ResultRow{{batch.ColID: "42"}}
	Merge(rows, map[string]map[string]string{"42": {"owner": "Jane"}})
	_, f := rows[0]["owner"]
	assert.False(t, f)
}

func TestSplitMergeIdentity(t *testing.T) {
	csvData := "Id,GeocodeRequest/Query,a,b\nX,100 Main St,1,2\n"
	_, private, err := Split(csvData)
	assert.Nil(t, err)

	providerRow := batch.ResultRow{batch.ColID: "X", batch.ColLatitude: "41.8", batch.ColLongitude: "-87.6"}
	merged := Merge([]batch.ResultRow{providerRow}, private)
	assert.Equal(t, "1", merged[0]["a"])
	assert.Equal(t, "2", merged[0]["b"])
	assert.Equal(t, "41.8", merged[0][batch.ColLatitude])
}

func TestEncodeDecodeRows(t *testing.T) {
	private := map[string]map[string]string{
		"42": {"owner": "Jane", "notes": "olia"},
		"43": {"owner": "John"},
	}
	raw, err := EncodeRows(private)
	assert.Nil(t, err)
	assert.Equal(t, "Id,notes,owner\n42,olia,Jane\n43,,John\n", raw)

	back, err := DecodeRows(raw)
	assert.Nil(t, err)
	assert.Equal(t, "Jane", back["42"]["owner"])
	assert.Equal(t, "olia", back["42"]["notes"])
	assert.Equal(t, "John", back["43"]["owner"])
}

func TestDecodeRows_Empty(t *testing.T) {
	res, err := DecodeRows("")
	assert.Nil(t, err)
	assert.Equal(t, 0, len(res))
	res, err = DecodeRows("Id\n")
	assert.Nil(t, err)
	assert.Equal(t, 0, len(res))
}

func TestWriteCSV(t *testing.T) {
	rows := []batch.ResultRow{
		{batch.ColID: "1", batch.ColQuery: "100 Main St", batch.ColLatitude: "41.8", "owner": "Jane"},
		{batch.ColID: "2", batch.ColQuery: "200 Oak Ave", batch.ColLatitude: "41.9"},
	}
	var b strings.Builder
	err := WriteCSV(&b, rows)
	assert.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	assert.Equal(t, "Id,GeocodeResponse/Point/Latitude,GeocodeRequest/Query,owner", lines[0])
	assert.Equal(t, "1,41.8,100 Main St,Jane", lines[1])
	assert.Equal(t, "2,41.9,200 Oak Ave,", lines[2])
}
