package cmd

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/sarchlab/netsim/monitoring"
	"github.com/sarchlab/netsim/simulation"
	"github.com/spf13/cobra"
)

var floodCmd = &cobra.Command{
	Use:   "flood",
	Short: "Flood one recipient from many concurrent senders.",
	Run: func(cmd *cobra.Command, _ []string) {
		runFlood(cmd)
	},
}

func init() {
	floodCmd.Flags().Int("senders", 10, "number of concurrent senders")
	floodCmd.Flags().Int("messages", 1000, "messages per sender")
	floodCmd.Flags().Int("payload-bytes", 64, "payload size of each message")
	floodCmd.Flags().Bool("monitor", false, "start the monitoring server")
	floodCmd.Flags().Int("monitor-port", 0,
		"monitoring server port (default NETSIM_MONITOR_PORT or random)")
	floodCmd.Flags().String("output", "", "output database name")
	rootCmd.AddCommand(floodCmd)
}

func runFlood(cmd *cobra.Command) {
	senders, _ := cmd.Flags().GetInt("senders")
	messages, _ := cmd.Flags().GetInt("messages")
	payloadBytes, _ := cmd.Flags().GetInt("payload-bytes")
	monitorOn, _ := cmd.Flags().GetBool("monitor")
	monitorPort, _ := cmd.Flags().GetInt("monitor-port")
	output, _ := cmd.Flags().GetString("output")

	if monitorPort == 0 {
		if fromEnv := os.Getenv("NETSIM_MONITOR_PORT"); fromEnv != "" {
			port, err := strconv.Atoi(fromEnv)
			dieOnErr(err)
			monitorPort = port
		}
	}

	builder := simulation.MakeBuilder().WithOutputFileName(output)
	if monitorOn {
		if monitorPort > 0 {
			builder = builder.WithMonitorPort(monitorPort)
		}
	} else {
		builder = builder.WithoutMonitoring()
	}

	s := builder.Build()
	defer s.Terminate()

	ctx := s.Context()

	recipient, err := ctx.Open()
	dieOnErr(err)

	total := uint64(senders * messages)

	var bar *monitoring.ProgressBar
	if monitor := s.GetMonitor(); monitor != nil {
		bar = monitor.CreateProgressBar("flood", total)
	}

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			socket, err := ctx.Open()
			dieOnErr(err)
			defer socket.Release()

			payload := make([]byte, payloadBytes)
			// Count the message before handing it to the fabric, so the
			// receiver can never move it to finished first.
			for j := 0; j < messages; j++ {
				if bar != nil {
					bar.IncrementInProgress(1)
				}
				dieOnErr(socket.SendTo(recipient.ID(), payload))
			}
		}()
	}

	received := uint64(0)
	for received < total {
		_, _, err := recipient.Recv()
		dieOnErr(err)
		received++

		if bar != nil {
			bar.MoveInProgressToFinished(1)
		}
	}

	wg.Wait()
	dieOnErr(recipient.Release())

	fmt.Printf("received %d messages from %d senders, %d dropped\n",
		received, senders, s.DropCount())
}
