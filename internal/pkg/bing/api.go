package bing

import "time"

//Status is a remote job state as reported by the provider
type Status int

const (
	//StatusOther - any state this client does not act on (Aborted, ...)
	StatusOther Status = iota
	//StatusPending - the job was accepted and is being processed
	StatusPending
	//StatusCompleted - the job finished and results can be fetched
	StatusCompleted
)

var statusName = map[Status]string{StatusOther: "Other", StatusPending: "Pending", StatusCompleted: "Completed"}

func (s Status) String() string {
	return statusName[s]
}

func statusFrom(s string) Status {
	switch s {
	case "Pending":
		return StatusPending
	case "Completed":
		return StatusCompleted
	}
	return StatusOther
}

//ResultLink points to one downloadable result file of a job
type ResultLink struct {
	Name string
	URL  string
}

//JobDescriptor is the typed view of one remote geocoding job.
//It is parsed once at the client boundary - no raw provider JSON
//leaves this package
type JobDescriptor struct {
	ID                   string
	Status               Status
	CreatedAt            time.Time
	CompletedAt          time.Time // zero when the job has not completed
	TotalEntityCount     int
	ProcessedEntityCount int
	FailedEntityCount    int
	Links                []ResultLink
}

// provider wire format: resourceSets[].resources[]
type wireLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type wireResource struct {
	ID                   string     `json:"id"`
	Status               string     `json:"status"`
	CreatedDate          string     `json:"createdDate"`
	CompletedDate        string     `json:"completedDate"`
	TotalEntityCount     int        `json:"totalEntityCount"`
	ProcessedEntityCount int        `json:"processedEntityCount"`
	FailedEntityCount    int        `json:"failedEntityCount"`
	Links                []wireLink `json:"links"`
}

type wireResourceSet struct {
	Resources []wireResource `json:"resources"`
}

type wireResponse struct {
	ResourceSets []wireResourceSet `json:"resourceSets"`
}

const dateLayout = "Mon, 02 Jan 2006 15:04:05 MST"
