/*
Copyright 2025 Legendtrack Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	legendtrack "github.com/hordestats/legendtrack"
	"github.com/hordestats/legendtrack/config"
	"github.com/hordestats/legendtrack/database"
	"github.com/hordestats/legendtrack/gateway"
	"github.com/hordestats/legendtrack/internal/notification"
)

// Legendtrack represents the CLI application, encapsulating the root Cobra command.
type Legendtrack struct {
	cmd *cobra.Command
}

// appInstance holds the service instance and its configuration for use by the
// subcommands.
type appInstance struct {
	service *legendtrack.Legendtrack
	cnf     *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun sets up the configuration and initializes the service before running
// any command.
func preRun(app *appInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		service, err := setupService(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.service = service
		app.cnf = cnf

		return nil
	}
}

// setupService creates the service from the configured datasource and gateway.
func setupService(cfg *config.Configuration) (*legendtrack.Legendtrack, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	gw := gateway.NewClashClient(cfg)

	service, err := legendtrack.NewLegendtrack(db, gw)
	if err != nil {
		return nil, fmt.Errorf("error creating legendtrack: %v", err)
	}
	return service, nil
}

// NewCLI creates the command-line interface for the legendtrack application.
func NewCLI() *Legendtrack {
	var configFile string
	a := &appInstance{}

	var rootCmd = &cobra.Command{
		Use:   "legendtrack",
		Short: "Legend league season tracker",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./legendtrack.json", "Configuration file for legendtrack")
	rootCmd.PersistentPreRunE = preRun(a, &configFile)

	rootCmd.AddCommand(workerCommands(a))
	rootCmd.AddCommand(harvestCommands(a))
	rootCmd.AddCommand(migrateCommands(a))

	return &Legendtrack{cmd: rootCmd}
}

// executeCLI runs the root command and exits on error.
func (w Legendtrack) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()
	cli := NewCLI()
	cli.executeCLI()
}
