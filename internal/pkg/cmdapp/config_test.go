package cmdapp

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "test",
		Long:  `test`,
		Run:   run}
}

func run(cmd *cobra.Command, args []string) {
	Log.Info("Starting test app")
}

func TestReadEnvironmentVariable(t *testing.T) {
	os.Setenv("SMTP_HOST", "smtp.local")
	InitApplication(newRootCmd())

	assert.Equal(t, "smtp.local", Config.GetString("smtp.host"))
}

func TestReadConfig(t *testing.T) {
	initAppFromTempFile(t, "storage:\n     local:\n          path: /data/geo\n")

	assert.Equal(t, "/data/geo", Config.GetString("storage.local.path"))
}

func TestEnvBeatsConfig(t *testing.T) {
	os.Setenv("SMTP_HOST", "smtp.other")
	initAppFromTempFile(t, "smtp:\n     host: smtp.local\n")

	assert.Equal(t, "smtp.other", Config.GetString("smtp.host"))
}

func TestDefaultLogger(t *testing.T) {
	initDefaultLevel()
	initAppFromTempFile(t, "")

	assert.Equal(t, "info", Log.GetLevel().String())
}

func TestLoggerInitFromConfig(t *testing.T) {
	initDefaultLevel()
	initAppFromTempFile(t, "logger:\n    level: trace\n")

	assert.Equal(t, "trace", Log.GetLevel().String())
}

func initAppFromTempFile(t *testing.T, data string) {
	f, err := ioutil.TempFile("", "test.*.yml")
	assert.Nil(t, err)
	f.WriteString(data)
	f.Sync()

	defer os.Remove(f.Name())

	rootCmd := newRootCmd()
	InitApplication(rootCmd)
	configFile = f.Name()
	rootCmd.Execute()
}

func initDefaultLevel() {
	Log.SetLevel(logrus.ErrorLevel)
}
