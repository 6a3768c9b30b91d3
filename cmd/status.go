package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.infratographer.com/x/viperx"

	"github.com/shiftwave/lbsync/internal/lbapi"
)

// statusCmd prints the load balancer process status and its current server pool
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "prints the load balancer status and its current server pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		return status(cmd.Context(), viper.GetViper())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.PersistentFlags().String("lb-api-address", "127.0.0.1", "load balancer control API address")
	viperx.MustBindFlag(viper.GetViper(), "lbapi.address", statusCmd.PersistentFlags().Lookup("lb-api-address"))

	statusCmd.PersistentFlags().Int("lb-api-port", 8888, "load balancer control API port")
	viperx.MustBindFlag(viper.GetViper(), "lbapi.port", statusCmd.PersistentFlags().Lookup("lb-api-port"))

	statusCmd.PersistentFlags().Duration("lb-api-timeout", time.Second, "timeout for load balancer control API requests")
	viperx.MustBindFlag(viper.GetViper(), "lbapi.timeout", statusCmd.PersistentFlags().Lookup("lb-api-timeout"))
}

func status(ctx context.Context, viper *viper.Viper) error {
	lbURL := "http://" + net.JoinHostPort(viper.GetString("lbapi.address"), strconv.Itoa(viper.GetInt("lbapi.port")))

	client := lbapi.NewClient(lbURL,
		lbapi.WithLogger(logger),
		lbapi.WithTimeout(viper.GetDuration("lbapi.timeout")),
	)

	st, err := client.Status(ctx)
	if err != nil {
		logger.Fatalw("failed to query the load balancer status", "error", err)
	}

	fmt.Printf("pid %d, version %s, started %s, up %s\n", st.Pid, st.Version, st.StartTime, st.Uptime)

	servers, err := client.ListServers(ctx)
	if err != nil {
		logger.Fatalw("failed to list the load balancer servers", "error", err)
	}

	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}

	sort.Strings(names)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"SERVER", "BIND", "PROTOCOL", "BALANCE", "DISCOVERY PATTERN", "HEALTHCHECK"})

	for _, name := range names {
		srv := servers[name]
		t.AppendRow(table.Row{name, srv.Bind, srv.Protocol, srv.Balance, srv.Discovery.SrvLookupPattern, srv.Healthcheck.Kind})
	}

	t.Render()

	return nil
}
