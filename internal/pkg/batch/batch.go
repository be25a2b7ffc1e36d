package batch

import "github.com/pkg/errors"

//Preamble is the first line of a Bing Spatial Data Services batch file
const Preamble = "Bing Spatial Data Services, 2.0"

//Column names of the dataflow batch format
const (
	ColID               = "Id"
	ColCulture          = "GeocodeRequest/Culture"
	ColConfidence       = "GeocodeRequest/ConfidenceFilter/MinimumConfidence"
	ColQuery            = "GeocodeRequest/Query"
	ColLatitude         = "GeocodeResponse/Point/Latitude"
	ColLongitude        = "GeocodeResponse/Point/Longitude"
	ColReqLatitude      = "ReverseGeocodeRequest/Location/Latitude"
	ColReqLongitude     = "ReverseGeocodeRequest/Location/Longitude"
	ColFormattedAddress = "GeocodeResponse/Address/FormattedAddress"
)

const (
	defaultCulture    = "en-US"
	defaultConfidence = "High"
)

//ErrEmptyBatch indicates an attempt to encode a batch with no records
var ErrEmptyBatch = errors.New("Empty batch")

//ErrEmptyResult indicates a result payload with not enough lines to parse.
//It means "no results yet", not a failure
var ErrEmptyResult = errors.New("Empty result")

//AddressRecord is one forward geocoding request unit
type AddressRecord struct {
	ID      string
	Address string
}

//PointRecord is one reverse geocoding request unit
type PointRecord struct {
	ID        string
	Latitude  float64
	Longitude float64
}

//ResultRow maps result column names to values for one input identifier
type ResultRow map[string]string
