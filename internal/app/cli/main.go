package cli

import (
	"github.com/spf13/cobra"

	"github.com/tribapps/geobatch/internal/app/inform"
	"github.com/tribapps/geobatch/internal/app/service"
	"github.com/tribapps/geobatch/internal/pkg/bing"
	"github.com/tribapps/geobatch/internal/pkg/cmdapp"
	"github.com/tribapps/geobatch/internal/pkg/storage"
)

var appName = "GeoBatch Tool"

var rootCmd = &cobra.Command{
	Use:   "geobatch",
	Short: appName,
	Long:  `Command line tool to manage bulk geocoding batches`,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	rootCmd.PersistentFlags().String("api-key", "", "Geocoding provider API key")
	cmdapp.Config.BindPFlag("bing.key", rootCmd.PersistentFlags().Lookup("api-key"))
	cmdapp.Config.BindEnv("bing.key", "BING_MAPS_API_KEY")
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(depositCmd)
	rootCmd.AddCommand(serviceCmd)
	initFlags()
}

//Execute runs the tool
func Execute() {
	cmdapp.Execute(rootCmd)
}

func newGeocoder() *bing.Client {
	key := cmdapp.Config.GetString("bing.key")
	if key == "" {
		cmdapp.CheckOrPanic(errNoKey, "No API key. Use --api-key or BING_MAPS_API_KEY")
	}
	client, err := bing.NewClient(cmdapp.Config, key, cmdapp.Log)
	cmdapp.CheckOrPanic(err, "Can't init geocoding client")
	return client
}

func newServiceData() *service.ServiceData {
	store, err := storage.NewStore(cmdapp.Config, cmdapp.Log)
	cmdapp.CheckOrPanic(err, "Can't init storage")
	sink, err := inform.NewSink(cmdapp.Config, cmdapp.Log)
	cmdapp.CheckOrPanic(err, "Can't init notifications")
	return &service.ServiceData{Store: store, Geocoder: newGeocoder(),
		Notifier: sink, Log: cmdapp.Log}
}
