package cli

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tribapps/geobatch/internal/app/service"
	"github.com/tribapps/geobatch/internal/pkg/batch"
	"github.com/tribapps/geobatch/internal/pkg/bing"
	"github.com/tribapps/geobatch/internal/pkg/cmdapp"
)

var errNoKey = errors.New("No API key")

// three days, matches the provider's job retention window
const defaultCutoff = 4320

func initFlags() {
	statusCmd.Flags().Int("cutoff", defaultCutoff, "List jobs created in the last n minutes")
	statusCmd.Flags().Bool("completed", false, "List completed jobs only")
	statusCmd.Flags().String("job", "", "Show one job by ID")
	depositCmd.Flags().String("email", "", "Address to notify about batch progress")
	depositCmd.Flags().String("name", "", "Batch name, generated when empty")
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Submit an address file for geocoding",
	Long:  `Reads a headerless two column CSV of id,address pairs and submits it as one batch`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		records, err := batch.ReadAddresses(args[0])
		cmdapp.CheckOrPanic(err, "Can't read "+args[0])
		payload, err := batch.Encode(records, true)
		cmdapp.CheckOrPanic(err, "Can't prepare batch")
		jobID, err := newGeocoder().SubmitBatch(payload)
		cmdapp.CheckOrPanic(err, "Can't submit batch")
		fmt.Printf("Submitted %d address(es) as job %s\n", len(records), jobID)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List geocoding jobs and their state",
	Run: func(cmd *cobra.Command, args []string) {
		cutoff, _ := cmd.Flags().GetInt("cutoff")
		completed, _ := cmd.Flags().GetBool("completed")
		jobID, _ := cmd.Flags().GetString("job")
		jobs, err := newGeocoder().ListJobs(cutoff, completed, jobID)
		cmdapp.CheckOrPanic(err, "Can't list jobs")
		if len(jobs) == 0 {
			fmt.Println("No jobs found")
			return
		}
		for _, jd := range jobs {
			printJob(&jd)
		}
	},
}

func printJob(jd *bing.JobDescriptor) {
	fmt.Printf("%s  %s  created %s", jd.ID, jd.Status, jd.CreatedAt.Format(time.RFC3339))
	if jd.Status == bing.StatusCompleted {
		fmt.Printf("  processed %d, failed %d", jd.ProcessedEntityCount, jd.FailedEntityCount)
	}
	fmt.Println()
}

var downloadCmd = &cobra.Command{
	Use:   "download <jobID> <file>",
	Short: "Save results of a completed job",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		rows, err := newGeocoder().FetchResults(args[0])
		cmdapp.CheckOrPanic(err, "Can't fetch results")
		if len(rows) == 0 {
			fmt.Println("No results yet")
			return
		}
		err = batch.WriteResults(args[1], rows)
		cmdapp.CheckOrPanic(err, "Can't write "+args[1])
		fmt.Printf("Saved %d result(s) to %s\n", len(rows), args[1])
	},
}

var prepareCmd = &cobra.Command{
	Use:   "prepare <in> <out>",
	Short: "Rewrite a loose CSV into a submittable batch file",
	Long:  `Accepts any CSV with id and address columns and writes a provider ready batch file`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := ioutil.ReadFile(args[0])
		cmdapp.CheckOrPanic(err, "Can't read "+args[0])
		prepared, err := batch.Reprepare(string(raw))
		cmdapp.CheckOrPanic(err, "Can't prepare "+args[0])
		err = ioutil.WriteFile(args[1], prepared, 0644)
		cmdapp.CheckOrPanic(err, "Can't write "+args[1])
		fmt.Printf("Wrote %s\n", args[1])
	},
}

var depositCmd = &cobra.Command{
	Use:   "deposit <file>",
	Short: "Place a batch into the awaiting area for the next service run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content, err := ioutil.ReadFile(args[0])
		cmdapp.CheckOrPanic(err, "Can't read "+args[0])
		address, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		data := newServiceData()
		name, err = service.Deposit(data.Store, data.Log, name, content, address)
		cmdapp.CheckOrPanic(err, "Can't deposit batch")
		fmt.Printf("Deposited %s\n", name)
	},
}

var serviceCmd = &cobra.Command{
	Use:   "service <download|statuses>",
	Short: "Run one orchestration pass, meant to be invoked from cron",
	Long: `download submits awaiting batches to the provider,
statuses polls pending jobs and publishes finished results`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data := newServiceData()
		switch args[0] {
		case "download":
			cmdapp.CheckOrPanic(service.DownloadJobs(data), "Can't submit batches")
		case "statuses":
			cmdapp.CheckOrPanic(service.CheckStatuses(data), "Can't check statuses")
		default:
			cmdapp.CheckOrPanic(errors.New("Unknown operation "+args[0]), "Use download or statuses")
		}
	},
}
