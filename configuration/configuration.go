package configuration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/bartossh/Mercantis/dedup"
	"github.com/bartossh/Mercantis/emulator"
	"github.com/bartossh/Mercantis/fileoperations"
	"github.com/bartossh/Mercantis/ledgerclient"
	"github.com/bartossh/Mercantis/monitor"
	"github.com/bartossh/Mercantis/natsclient"
	"github.com/bartossh/Mercantis/repository"
	"github.com/bartossh/Mercantis/server"
	"github.com/bartossh/Mercantis/telemetry"
)

// Configuration is the main configuration of the application that corresponds to the *.yaml file
// that holds the configuration.
type Configuration struct {
	Server       server.Config         `yaml:"server"`
	Database     repository.DBConfig   `yaml:"database"`
	Monitor      monitor.Config        `yaml:"monitor"`
	Dedup        dedup.Config          `yaml:"dedup"`
	Ledger       ledgerclient.Config   `yaml:"ledger"`
	Emulator     emulator.Config       `yaml:"emulator"`
	Nats         natsclient.Config     `yaml:"nats"`
	FileOperator fileoperations.Config `yaml:"file_operator"`
	Telemetry    telemetry.Config      `yaml:"telemetry"`
}

// Read reads the configuration from the file and returns the Configuration with set fields according to the yaml setup.
func Read(path string) (Configuration, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, err
	}

	var main Configuration
	err = yaml.Unmarshal(buf, &main)
	if err != nil {
		return Configuration{}, fmt.Errorf("in file %q: %w", path, err)
	}

	return main, err
}
