package status

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/heptiolabs/healthcheck"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/tribapps/geobatch/internal/app/service"
	"github.com/tribapps/geobatch/internal/pkg/bing"
)

type serviceMetric struct {
	jobsResponseDur prometheus.ObserverVec
	fileResponseDur prometheus.ObserverVec
}

//Provider lists remote geocoding jobs
type Provider interface {
	ListJobs(minCutoff int, onlyCompleted bool, jobID string) ([]bing.JobDescriptor, error)
}

//FileStore retrieves finished result files
type FileStore interface {
	Get(name string) ([]byte, error)
}

// ServiceData keeps data required for service work
type ServiceData struct {
	Provider Provider
	Store    FileStore
	Port     int
	Log      *logrus.Logger
	health   healthcheck.Handler

	metrics serviceMetric
}

//jobView is the JSON shape of one job in responses
type jobView struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	CreatedDate    string `json:"createdDate"`
	CompletedDate  string `json:"completedDate,omitempty"`
	TotalEntities  int    `json:"totalEntityCount"`
	ProcessedCount int    `json:"processedEntityCount"`
	FailedCount    int    `json:"failedEntityCount"`
}

//StartWebServer starts the HTTP service and listens for the requests
func StartWebServer(data *ServiceData) error {
	data.Log.Infof("Starting HTTP service at %d", data.Port)
	r := NewRouter(data)
	http.Handle("/", r)
	portStr := strconv.Itoa(data.Port)
	err := http.ListenAndServe(":"+portStr, nil)
	if err != nil {
		return errors.Wrap(err, "Can't start HTTP listener at port "+portStr)
	}
	return nil
}

//NewRouter creates the router for HTTP service
func NewRouter(data *ServiceData) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	jh := http.Handler(jobsHandler{data: data})
	jih := http.Handler(jobHandler{data: data})
	fh := http.Handler(fileHandler{data: data})
	if data.metrics.jobsResponseDur != nil {
		jh = promhttp.InstrumentHandlerDuration(data.metrics.jobsResponseDur, jh)
		jih = promhttp.InstrumentHandlerDuration(data.metrics.jobsResponseDur, jih)
	}
	if data.metrics.fileResponseDur != nil {
		fh = promhttp.InstrumentHandlerDuration(data.metrics.fileResponseDur, fh)
	}
	router.Methods("GET").Path("/jobs").Handler(jh)
	router.Methods("GET").Path("/jobs/{id}").Handler(jih)
	router.Methods("GET").Path("/finished/{name}").Handler(fh)
	router.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	if data.health != nil {
		router.Methods("GET").Path("/live").HandlerFunc(data.health.LiveEndpoint)
		router.Methods("GET").Path("/ready").HandlerFunc(data.health.ReadyEndpoint)
	}
	return router
}

type jobsHandler struct {
	data *ServiceData
}

func (h jobsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.data.Log.Infof("Jobs request from %s", r.Host)
	cutoff := 0
	if cs := r.URL.Query().Get("cutoff"); cs != "" {
		var err error
		cutoff, err = strconv.Atoi(cs)
		if err != nil || cutoff < 0 {
			http.Error(w, "Wrong cutoff: "+cs, http.StatusBadRequest)
			h.data.Log.Errorf("Wrong cutoff %s", cs)
			return
		}
	}
	completed := r.URL.Query().Get("completed") == "true"
	jobs, err := h.data.Provider.ListJobs(cutoff, completed, "")
	if err != nil {
		http.Error(w, "Cannot list jobs", http.StatusInternalServerError)
		h.data.Log.Error(err)
		return
	}
	writeJobs(w, h.data, jobs)
}

type jobHandler struct {
	data *ServiceData
}

func (h jobHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.data.Log.Infof("Job request from %s", r.Host)
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "No ID", http.StatusBadRequest)
		h.data.Log.Errorf("No ID")
		return
	}
	jobs, err := h.data.Provider.ListJobs(0, false, id)
	if err != nil {
		http.Error(w, "Cannot get job for ID: "+id, http.StatusInternalServerError)
		h.data.Log.Error(err)
		return
	}
	if len(jobs) == 0 {
		http.Error(w, "No job for ID: "+id, http.StatusNotFound)
		return
	}
	writeJobs(w, h.data, jobs)
}

func writeJobs(w http.ResponseWriter, data *ServiceData, jobs []bing.JobDescriptor) {
	views := make([]jobView, 0, len(jobs))
	for _, jd := range jobs {
		views = append(views, toView(&jd))
	}
	resultBytes, err := json.Marshal(views)
	if err != nil {
		http.Error(w, "Can not prepare result", http.StatusInternalServerError)
		data.Log.Error(err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(resultBytes)
}

func toView(jd *bing.JobDescriptor) jobView {
	res := jobView{ID: jd.ID, Status: jd.Status.String(),
		CreatedDate:    jd.CreatedAt.Format(time.RFC3339),
		TotalEntities:  jd.TotalEntityCount,
		ProcessedCount: jd.ProcessedEntityCount,
		FailedCount:    jd.FailedEntityCount}
	if !jd.CompletedAt.IsZero() {
		res.CompletedDate = jd.CompletedAt.Format(time.RFC3339)
	}
	return res
}

type fileHandler struct {
	data *ServiceData
}

func (h fileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.data.Log.Infof("File request from %s", r.Host)
	name := mux.Vars(r)["name"]
	if name == "" {
		http.Error(w, "No file name", http.StatusBadRequest)
		h.data.Log.Errorf("No file name")
		return
	}
	if strings.Contains(name, "..") {
		http.Error(w, "invalid URL path", http.StatusBadRequest)
		h.data.Log.Errorf("invalid URL path %s", name)
		return
	}
	content, err := h.data.Store.Get(service.PrefixFinished + "/" + name)
	if err != nil {
		http.Error(w, "Cannot get file: "+name, http.StatusNotFound)
		h.data.Log.Errorf("Cannot get file %s", name)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.Write(content)
}
