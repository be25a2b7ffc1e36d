package status

import (
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tribapps/geobatch/internal/pkg/bing"
	"github.com/tribapps/geobatch/internal/pkg/cmdapp"
	"github.com/tribapps/geobatch/internal/pkg/metrics"
	"github.com/tribapps/geobatch/internal/pkg/storage"
)

var appName = "GeoBatch Status Provider Service"

var rootCmd = &cobra.Command{
	Use:   "statusProviderService",
	Short: appName,
	Long:  `HTTP server to provide geocoding job statuses and finished results`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	rootCmd.PersistentFlags().Int32P("port", "", 8000, "Default service port")
	cmdapp.Config.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	cmdapp.Config.SetDefault("port", 8080)
}

// Execute starts the server
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting " + appName)
	data := &ServiceData{Log: cmdapp.Log}
	err := initMetrics(data)
	cmdapp.CheckOrPanic(err, "Can't init metrics")

	data.health = healthcheck.NewHandler()

	data.Provider, err = bing.NewClient(cmdapp.Config, cmdapp.Config.GetString("bing.key"), cmdapp.Log)
	cmdapp.CheckOrPanic(err, "Can't init geocoding client")

	data.Store, err = storage.NewStore(cmdapp.Config, cmdapp.Log)
	cmdapp.CheckOrPanic(err, "Can't init storage")
	data.Port = cmdapp.Config.GetInt("port")

	err = StartWebServer(data)
	cmdapp.CheckOrPanic(err, "Can't start web server")
}

func initMetrics(data *ServiceData) error {
	namespace := "status_service"
	data.metrics.jobsResponseDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "jobs_request_durations_seconds",
			Help:      "Jobs request latency distributions.",
		}, nil)
	if err := metrics.Register(data.metrics.jobsResponseDur); err != nil {
		return err
	}
	data.metrics.fileResponseDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_request_durations_seconds",
			Help:      "Result file request latency distributions.",
		}, nil)
	return metrics.Register(data.metrics.fileResponseDur)
}
