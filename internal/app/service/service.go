package service

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tribapps/geobatch/internal/app/inform"
	"github.com/tribapps/geobatch/internal/pkg/batch"
	"github.com/tribapps/geobatch/internal/pkg/bing"
	"github.com/tribapps/geobatch/internal/pkg/partition"
	"github.com/tribapps/geobatch/internal/pkg/storage"
)

const (
	//PrefixAwaiting holds uploaded batches not yet submitted
	PrefixAwaiting = "geocode_awaiting_submission"
	//PrefixPending maps remote job IDs to batch names while a job runs
	PrefixPending = "geocode_pending_jobs"
	//PrefixExtra stashes user columns stripped before submission
	PrefixExtra = "geocode_extra_fields"
	//PrefixFinished holds merged result files
	PrefixFinished = "geocode_finished_jobs"
	//PrefixErrored holds batches the provider rejected
	PrefixErrored = "geocode_errored_jobs"

	emailMetaKey = "email"
)

//ServiceData wires the orchestrator dependencies
type ServiceData struct {
	Store    storage.Store
	Geocoder Geocoder
	Notifier inform.Sink
	Log      *logrus.Logger
}

func validateData(data *ServiceData) error {
	if data.Store == nil {
		return errors.New("No store")
	}
	if data.Geocoder == nil {
		return errors.New("No geocoder")
	}
	if data.Notifier == nil {
		return errors.New("No notifier")
	}
	if data.Log == nil {
		return errors.New("No logger")
	}
	return nil
}

//DownloadJobs submits every awaiting batch to the provider. Each
//entry is processed on its own - one bad batch does not stop the
//rest. A batch is removed from the awaiting area whether submission
//succeeded or not, so a rerun never submits it twice
func DownloadJobs(data *ServiceData) error {
	if err := validateData(data); err != nil {
		return err
	}
	names, err := data.Store.List(PrefixAwaiting)
	if err != nil {
		return errors.Wrap(err, "Can't list awaiting batches")
	}
	data.Log.Infof("Found %d awaiting batch(es)", len(names))
	for _, name := range names {
		if err := submitOne(data, name); err != nil {
			data.Log.Error(errors.Wrapf(err, "Can't process %s", name))
		}
	}
	return nil
}

func submitOne(data *ServiceData, name string) error {
	key := PrefixAwaiting + "/" + name
	raw, err := data.Store.Get(key)
	if err != nil {
		return err
	}
	address, err := data.Store.GetMeta(key, emailMetaKey)
	if err != nil {
		return err
	}
	providerCSV, private, err := partition.Split(string(raw))
	if err != nil {
		return failOne(data, name, raw, address, err)
	}
	payload := batch.Preamble + "\n" + providerCSV
	jobID, err := data.Geocoder.SubmitBatch([]byte(payload))
	if err != nil {
		return failOne(data, name, raw, address, err)
	}
	data.Log.Infof("Submitted %s as job %s", name, jobID)
	meta := map[string]string{emailMetaKey: address}
	if err := data.Store.Put(PrefixPending+"/"+jobID, []byte(name), meta); err != nil {
		return err
	}
	if len(private) > 0 {
		stash, err := partition.EncodeRows(private)
		if err != nil {
			return err
		}
		// keyed by batch name, the pending entry only records the name
		if err := data.Store.Put(PrefixExtra+"/"+name, []byte(stash), nil); err != nil {
			return err
		}
	}
	notify(data, address, inform.EventPending, name, inform.Stats{})
	return data.Store.Delete(key)
}

//failOne moves a rejected batch aside so the user can inspect it
func failOne(data *ServiceData, name string, raw []byte, address string, cause error) error {
	data.Log.Error(errors.Wrapf(cause, "Submission failed for %s", name))
	meta := map[string]string{emailMetaKey: address}
	if err := data.Store.Put(PrefixErrored+"/"+name, raw, meta); err != nil {
		return err
	}
	notify(data, address, inform.EventError, name, inform.Stats{})
	return data.Store.Delete(PrefixAwaiting + "/" + name)
}

//CheckStatuses polls every pending job once. Completed jobs get their
//results fetched, merged with the stashed user columns and published.
//Jobs still running are left untouched for the next run
func CheckStatuses(data *ServiceData) error {
	if err := validateData(data); err != nil {
		return err
	}
	jobIDs, err := data.Store.List(PrefixPending)
	if err != nil {
		return errors.Wrap(err, "Can't list pending jobs")
	}
	data.Log.Infof("Found %d pending job(s)", len(jobIDs))
	for _, jobID := range jobIDs {
		if err := checkOne(data, jobID); err != nil {
			data.Log.Error(errors.Wrapf(err, "Can't check job %s", jobID))
		}
	}
	return nil
}

func checkOne(data *ServiceData, jobID string) error {
	jobs, err := data.Geocoder.ListJobs(0, false, jobID)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		data.Log.Warnf("Job %s not known to the provider", jobID)
		return nil
	}
	jd := jobs[0]
	if jd.Status != bing.StatusCompleted {
		data.Log.Infof("Job %s is %s, skipping", jobID, jd.Status)
		return nil
	}
	return saveResults(data, jobID, &jd)
}

func saveResults(data *ServiceData, jobID string, jd *bing.JobDescriptor) error {
	pendingKey := PrefixPending + "/" + jobID
	nameData, err := data.Store.Get(pendingKey)
	if err != nil {
		return err
	}
	name := string(nameData)
	address, err := data.Store.GetMeta(pendingKey, emailMetaKey)
	if err != nil {
		return err
	}
	rows, err := data.Geocoder.FetchResults(jobID)
	if err != nil {
		return err
	}
	private, err := loadPrivate(data, name)
	if err != nil {
		return err
	}
	merged := partition.Merge(rows, private)
	var buf bytes.Buffer
	if err := partition.WriteCSV(&buf, merged); err != nil {
		return err
	}
	finishedKey := PrefixFinished + "/" + name
	meta := map[string]string{emailMetaKey: address}
	if err := data.Store.Put(finishedKey, buf.Bytes(), meta); err != nil {
		return err
	}
	url, err := data.Store.Publish(finishedKey)
	if err != nil {
		return err
	}
	data.Log.Infof("Job %s finished, results at %s", jobID, url)
	notify(data, address, inform.EventFinished, name,
		inform.Stats{Failed: jd.FailedEntityCount, Processed: jd.ProcessedEntityCount})
	if err := data.Store.Delete(PrefixExtra + "/" + name); err != nil {
		return err
	}
	return data.Store.Delete(pendingKey)
}

//loadPrivate restores the stashed user columns. A missing stash means
//the batch had none
func loadPrivate(data *ServiceData, name string) (map[string]map[string]string, error) {
	raw, err := data.Store.Get(PrefixExtra + "/" + name)
	if errors.Cause(err) == storage.ErrNotFound {
		return map[string]map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return partition.DecodeRows(string(raw))
}

func notify(data *ServiceData, address string, event inform.Event, name string, stats inform.Stats) {
	if err := data.Notifier.Notify(address, event, name, stats); err != nil {
		data.Log.Error(errors.Wrapf(err, "Can't notify about %s", name))
	}
}
