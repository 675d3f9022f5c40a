// nodo-ping runs a minimal source→sink graph: a ping message every period,
// printed by the sink, until ctrl-c.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"firestige.xyz/nodo/codelets"
	"firestige.xyz/nodo/internal/config"
	"firestige.xyz/nodo/pkg/channel"
	"firestige.xyz/nodo/pkg/codelet"
	"firestige.xyz/nodo/pkg/inspector"
	"firestige.xyz/nodo/pkg/log"
	"firestige.xyz/nodo/pkg/runtime"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:          "nodo-ping",
	Short:        "Run a demo ping pipeline on the nodo dataflow runtime",
	RunE:         runPing,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (default: ./nodo.yml if present)")
}

func runPing(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log.Init(cfg.Log)

	rt := runtime.NewRuntime()

	if cfg.Inspector.Enabled {
		server, err := inspector.NewServer(cfg.Inspector.Address)
		if err != nil {
			return err
		}
		defer server.Close()
		rt.SetReportPublisher(server)
	}

	count := 0
	source := codelets.NewSource(func() string {
		count++
		return fmt.Sprintf("ping %d", count)
	})
	sink := codelets.NewSink(func(msg string) error {
		fmt.Println(msg)
		return nil
	})

	if err := channel.Connect(source.Out, sink.In); err != nil {
		return err
	}

	builder := codelet.NewScheduleBuilder().
		WithName("ping").
		WithPeriod(cfg.Schedule.Period).
		WithMaxStepCount(cfg.Schedule.MaxStepCount).
		With(codelet.New("source", source), codelet.New("sink", sink))

	rt.AddSchedule(runtime.NewScheduleExecutor(builder))
	rt.EnableTerminateOnCtrlC()
	rt.Spin()

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
