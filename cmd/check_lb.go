package cmd

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.infratographer.com/x/viperx"

	"github.com/shiftwave/lbsync/internal/lbapi"
)

// checkLBCmd checks the connection to the load balancer control API
var checkLBCmd = &cobra.Command{
	Use:   "check_lb",
	Short: "checks the connection to the load balancer control API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkLB(cmd.Context(), viper.GetViper())
	},
}

const (
	defaultRetryLimit    = 3
	defaultRetryInterval = 1 * time.Second
)

func init() {
	rootCmd.AddCommand(checkLBCmd)

	checkLBCmd.PersistentFlags().String("lb-api-address", "127.0.0.1", "load balancer control API address")
	viperx.MustBindFlag(viper.GetViper(), "lbapi.address", checkLBCmd.PersistentFlags().Lookup("lb-api-address"))

	checkLBCmd.PersistentFlags().Int("lb-api-port", 8888, "load balancer control API port")
	viperx.MustBindFlag(viper.GetViper(), "lbapi.port", checkLBCmd.PersistentFlags().Lookup("lb-api-port"))

	checkLBCmd.PersistentFlags().Duration("lb-api-timeout", time.Second, "timeout for load balancer control API requests")
	viperx.MustBindFlag(viper.GetViper(), "lbapi.timeout", checkLBCmd.PersistentFlags().Lookup("lb-api-timeout"))

	checkLBCmd.PersistentFlags().Int("retries", defaultRetryLimit, "Number of attempts to verify connection to the control API")
	viperx.MustBindFlag(viper.GetViper(), "retries", checkLBCmd.PersistentFlags().Lookup("retries"))

	checkLBCmd.PersistentFlags().Duration("retry-interval", defaultRetryInterval, "Interval between checks")
	viperx.MustBindFlag(viper.GetViper(), "retry-interval", checkLBCmd.PersistentFlags().Lookup("retry-interval"))
}

func checkLB(ctx context.Context, viper *viper.Viper) error {
	lbURL := "http://" + net.JoinHostPort(viper.GetString("lbapi.address"), strconv.Itoa(viper.GetInt("lbapi.port")))

	client := lbapi.NewClient(lbURL,
		lbapi.WithLogger(logger),
		lbapi.WithTimeout(viper.GetDuration("lbapi.timeout")),
	)

	if err := client.WaitForReady(
		ctx,
		viper.GetInt("retries"),
		viper.GetDuration("retry-interval"),
	); err != nil {
		logger.Fatalw("load balancer api is not ready", "error", err)
	}

	return nil
}
