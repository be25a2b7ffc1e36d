package bing

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/tribapps/geobatch/internal/pkg/batch"
	"github.com/tribapps/geobatch/internal/pkg/utils"
)

//ErrSubmission indicates the provider rejected or could not process a batch
var ErrSubmission = errors.New("Submission failed")

//Client communicates with the Bing Spatial Data Services dataflow API.
//Every call is a single attempt - the lifecycle service retries by
//picking the entry up again on its next scheduled run
type Client struct {
	httpclient *http.Client
	submitURL  string
	listURL    string
	key        string
	log        *logrus.Logger
	now        func() time.Time
}

//NewClient creates a dataflow API client
func NewClient(c *viper.Viper, key string, log *logrus.Logger) (*Client, error) {
	if key == "" {
		return nil, errors.New("No Bing Maps API key provided")
	}
	if log == nil {
		return nil, errors.New("No logger provided")
	}
	c.SetDefault("bing.url.submit", "http://spatial.virtualearth.net/REST/v1/Dataflows/Geocode")
	c.SetDefault("bing.url.list", "http://spatial.virtualearth.net/REST/v1/Dataflows/ListJobs")
	res := Client{key: key, log: log}
	var err error
	res.submitURL, err = utils.GetURLFromConfig(c, "bing.url.submit")
	if err != nil {
		return nil, err
	}
	res.listURL, err = utils.GetURLFromConfig(c, "bing.url.list")
	if err != nil {
		return nil, err
	}
	// no client timeout, a slow provider stalls the invocation
	res.httpclient = &http.Client{}
	res.now = time.Now
	return &res, nil
}

//SubmitBatch posts a batch payload for processing and returns the
//provider assigned job id
func (c *Client) SubmitBatch(payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", errors.Wrap(ErrSubmission, "Empty payload")
	}
	urlStr := c.submitURL + "?input=csv&key=" + url.QueryEscape(c.key)
	c.log.Infof("Uploading batch (%d bytes) to %s", len(payload), c.submitURL)
	resp, err := c.httpclient.Post(urlStr, "text/plain", bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrapf(ErrSubmission, "Can't post batch: %v", err)
	}
	defer resp.Body.Close()
	if err := utils.ValidateResponse(resp); err != nil {
		return "", errors.Wrapf(ErrSubmission, "Can't submit batch: %v", err)
	}
	var r wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", errors.Wrapf(ErrSubmission, "Can't decode response: %v", err)
	}
	for _, rs := range r.ResourceSets {
		for _, res := range rs.Resources {
			if res.ID != "" {
				c.log.Infof("Successful upload, job id is %s", res.ID)
				return res.ID, nil
			}
		}
	}
	return "", errors.Wrap(ErrSubmission, "No job id in response")
}

//ListJobs returns jobs known to the provider. If jobID is given it
//returns exactly that job (or nothing) and ignores the cutoff filter.
//Otherwise jobs created minCutoff or more minutes ago are dropped -
//the filter compares creation time, a job created exactly at the
//boundary is excluded. A cutoff of 0 disables filtering. Set
//onlyCompleted to skip jobs the provider has not completed yet
func (c *Client) ListJobs(minCutoff int, onlyCompleted bool, jobID string) ([]JobDescriptor, error) {
	resp, err := c.httpclient.Get(c.listURL + "?key=" + url.QueryEscape(c.key))
	if err != nil {
		return nil, errors.Wrap(err, "Can't list jobs")
	}
	defer resp.Body.Close()
	if err := utils.ValidateResponse(resp); err != nil {
		return nil, errors.Wrap(err, "Can't list jobs")
	}
	var r wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, errors.Wrap(err, "Can't decode response")
	}
	now := c.now().UTC()
	res := make([]JobDescriptor, 0)
	for _, rs := range r.ResourceSets {
		for _, wr := range rs.Resources {
			jd := c.parseResource(&wr)
			if jobID != "" {
				if jd.ID == jobID {
					return []JobDescriptor{jd}, nil
				}
				continue
			}
			if onlyCompleted && wr.CompletedDate == "" {
				continue
			}
			if minCutoff != 0 {
				// createdDate filter, kept as the historical behavior even
				// for completed jobs
				if jd.CreatedAt.IsZero() ||
					!jd.CreatedAt.After(now.Add(-time.Duration(minCutoff)*time.Minute)) {
					continue
				}
			}
			res = append(res, jd)
		}
	}
	if jobID != "" {
		// asked for a specific job and did not find it
		return []JobDescriptor{}, nil
	}
	return res, nil
}

//FetchResults downloads and decodes every 'succeeded' result link of a
//completed job. A job that is not completed yields no rows and no error -
//callers poll
func (c *Client) FetchResults(jobID string) ([]batch.ResultRow, error) {
	jobs, err := c.ListJobs(0, false, jobID)
	if err != nil {
		return nil, err
	}
	res := make([]batch.ResultRow, 0)
	for _, job := range jobs {
		if job.Status != StatusCompleted {
			continue
		}
		for _, l := range job.Links {
			if l.Name != "succeeded" {
				continue
			}
			body, err := c.fetchLink(l.URL)
			if err != nil {
				return nil, err
			}
			rows, err := batch.Decode(body)
			if err != nil {
				if err == batch.ErrEmptyResult {
					continue
				}
				return nil, errors.Wrap(err, "Can't decode results of "+jobID)
			}
			res = append(res, rows...)
		}
	}
	return res, nil
}

func (c *Client) fetchLink(link string) (string, error) {
	c.log.Infof("Fetching results from %s", utils.HidePass(link))
	resp, err := c.httpclient.Get(link + "?key=" + url.QueryEscape(c.key))
	if err != nil {
		return "", errors.Wrap(err, "Can't fetch results")
	}
	defer resp.Body.Close()
	if err := utils.ValidateResponse(resp); err != nil {
		return "", errors.Wrap(err, "Can't fetch results")
	}
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "Can't read response")
	}
	return string(body), nil
}

func (c *Client) parseResource(wr *wireResource) JobDescriptor {
	jd := JobDescriptor{
		ID:                   wr.ID,
		Status:               statusFrom(wr.Status),
		TotalEntityCount:     wr.TotalEntityCount,
		ProcessedEntityCount: wr.ProcessedEntityCount,
		FailedEntityCount:    wr.FailedEntityCount,
	}
	jd.CreatedAt = c.parseDate(wr.CreatedDate)
	jd.CompletedAt = c.parseDate(wr.CompletedDate)
	for _, l := range wr.Links {
		jd.Links = append(jd.Links, ResultLink{Name: l.Name, URL: l.URL})
	}
	return jd
}

func (c *Client) parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		c.log.Warnf("Can't parse date '%s': %v", s, err)
		return time.Time{}
	}
	return t.UTC()
}
