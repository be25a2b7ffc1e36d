package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/tribapps/geobatch/internal/app/inform"
	"github.com/tribapps/geobatch/internal/pkg/batch"
	"github.com/tribapps/geobatch/internal/pkg/bing"
)

//MockGeocoder provides a mock for the remote geocoding client
type MockGeocoder struct {
	mock.Mock
}

//SubmitBatch mock
func (m *MockGeocoder) SubmitBatch(payload []byte) (string, error) {
	args := m.Called(payload)
	return args.String(0), args.Error(1)
}

//ListJobs mock
func (m *MockGeocoder) ListJobs(minCutoff int, onlyCompleted bool, jobID string) ([]bing.JobDescriptor, error) {
	args := m.Called(minCutoff, onlyCompleted, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bing.JobDescriptor), args.Error(1)
}

//FetchResults mock
func (m *MockGeocoder) FetchResults(jobID string) ([]batch.ResultRow, error) {
	args := m.Called(jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]batch.ResultRow), args.Error(1)
}

//MockSink provides a mock for the notification sink
type MockSink struct {
	mock.Mock
}

//Notify mock
func (m *MockSink) Notify(address string, event inform.Event, name string, stats inform.Stats) error {
	args := m.Called(address, event, name, stats)
	return args.Error(0)
}
