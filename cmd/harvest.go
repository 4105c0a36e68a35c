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
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// harvestCommands groups the administrative harvest operations: running a
// harvest synchronously and (re)scheduling one through the queue.
func harvestCommands(a *appInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "manage season harvests",
	}

	cmd.AddCommand(harvestRunCommand(a))
	cmd.AddCommand(harvestScheduleCommand(a))

	return cmd
}

// harvestRunCommand runs the harvest pipeline inline, bypassing the queue.
// Safe against double execution: an already processed configuration is a
// no-op.
func harvestRunCommand(a *appInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "run <season-config-id>",
		Short: "run a season harvest synchronously",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result, err := a.service.RunHarvest(context.Background(), args[0])
			if err != nil {
				log.Fatalf("harvest failed: %v", err)
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				log.Fatal(err)
			}
			fmt.Println(string(out))
		},
	}
}

// harvestScheduleCommand enqueues the harvest for a configuration. Repeating
// the command is harmless; an existing queued task wins.
func harvestScheduleCommand(a *appInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <season-config-id>",
		Short: "schedule a season harvest through the queue",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := a.service.ScheduleHarvest(context.Background(), args[0]); err != nil {
				log.Fatalf("scheduling failed: %v", err)
			}

			task, err := a.service.Queue().GetQueuedHarvest(args[0])
			if err != nil {
				log.Fatal(err)
			}
			if task == nil {
				fmt.Println("no harvest queued (config missing, processed, or past its boundary)")
				return
			}
			fmt.Printf("harvest queued for %s, next run at %s\n", args[0], task.NextProcessAt)
		},
	}
}
