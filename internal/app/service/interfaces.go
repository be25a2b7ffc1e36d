package service

import (
	"github.com/tribapps/geobatch/internal/pkg/batch"
	"github.com/tribapps/geobatch/internal/pkg/bing"
)

//Geocoder submits batches to the remote provider and retrieves
//their state and results
type Geocoder interface {
	SubmitBatch(payload []byte) (string, error)
	ListJobs(minCutoff int, onlyCompleted bool, jobID string) ([]bing.JobDescriptor, error)
	FetchResults(jobID string) ([]batch.ResultRow, error)
}
