package cmd

import (
	"fmt"
	"os"

	"github.com/sarchlab/netsim/simulation"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Open two sockets and exchange one round trip.",
	Run: func(cmd *cobra.Command, _ []string) {
		runPing(cmd)
	},
}

func init() {
	pingCmd.Flags().String("output", "", "output database name")
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command) {
	output, _ := cmd.Flags().GetString("output")

	s := simulation.MakeBuilder().
		WithoutMonitoring().
		WithOutputFileName(output).
		Build()
	defer s.Terminate()

	ctx := s.Context()

	a, err := ctx.Open()
	dieOnErr(err)
	b, err := ctx.Open()
	dieOnErr(err)

	err = a.SendTo(b.ID(), []byte("Hello!"))
	dieOnErr(err)

	from, payload, err := b.Recv()
	dieOnErr(err)

	fmt.Printf("socket %d received %q from socket %d\n",
		b.ID(), payload, from)

	err = b.SendTo(from, []byte("Hi!"))
	dieOnErr(err)

	from, payload, err = a.Recv()
	dieOnErr(err)

	fmt.Printf("socket %d received %q from socket %d\n",
		a.ID(), payload, from)

	dieOnErr(a.Release())
	dieOnErr(b.Release())
}

func dieOnErr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
