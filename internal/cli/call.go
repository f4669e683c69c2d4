package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thrightguy/CloudToLocalLLM/internal/bridge"
	"github.com/thrightguy/CloudToLocalLLM/internal/config"
)

var callTimeout time.Duration

var callCmd = &cobra.Command{
	Use:   "call <method> [args-json]",
	Short: "Invoke a method on the running daemon",
	Long: `Invoke a method on the running tray daemon and print the reply.

Examples:
  trayctl call ping
  trayctl call setTitle '{"title":"Ready"}'
  trayctl call updateTunnelStatus '{"isConnected":true,"url":"https://app.cloudtolocalllm.online"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCall,
}

func init() {
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 5*time.Second, "how long to wait for the reply")
}

func runCall(cmd *cobra.Command, args []string) error {
	method := args[0]
	var callArgs json.RawMessage
	if len(args) == 2 {
		if !json.Valid([]byte(args[1])) {
			return fmt.Errorf("args must be valid JSON")
		}
		callArgs = json.RawMessage(args[1])
	}

	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running || info == nil {
		return fmt.Errorf("tray daemon is not running")
	}

	// The CLI only issues calls; inbound requests get NOT_IMPLEMENTED.
	log := logrus.New()
	log.SetOutput(io.Discard)
	client, err := bridge.Dial(info.Port, nil, log)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon on port %d: %w", info.Port, err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	result, err := client.Call(ctx, method, callArgs)
	if err != nil {
		return err
	}
	if len(result) == 0 {
		fmt.Println("ok")
		return nil
	}
	var pretty interface{}
	if err := json.Unmarshal(result, &pretty); err == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
		return nil
	}
	fmt.Println(string(result))
	return nil
}
