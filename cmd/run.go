package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.infratographer.com/x/viperx"
	"go.uber.org/zap"

	"github.com/shiftwave/lbsync/internal/dnsprobe"
	"github.com/shiftwave/lbsync/internal/lbapi"
	"github.com/shiftwave/lbsync/internal/manager"
	"github.com/shiftwave/lbsync/internal/orchestrator"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCmd starts the lbsync reconciliation daemon
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "starts the lbsync reconciliation daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), viper.GetViper())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.PersistentFlags().String("orchestrator-address", "tcp://127.0.0.1:1214", "orchestrator control channel address (tcp:// or unix://)")
	viperx.MustBindFlag(viper.GetViper(), "orchestrator.address", runCmd.PersistentFlags().Lookup("orchestrator-address"))

	runCmd.PersistentFlags().Duration("orchestrator-request-timeout", time.Second, "timeout for a single orchestrator request/reply exchange")
	viperx.MustBindFlag(viper.GetViper(), "orchestrator.request.timeout", runCmd.PersistentFlags().Lookup("orchestrator-request-timeout"))

	runCmd.PersistentFlags().Duration("orchestrator-receive-timeout", time.Second, "deadline of one receive attempt on the orchestrator event stream")
	viperx.MustBindFlag(viper.GetViper(), "orchestrator.receive.timeout", runCmd.PersistentFlags().Lookup("orchestrator-receive-timeout"))

	runCmd.PersistentFlags().String("lb-api-address", "127.0.0.1", "load balancer control API address")
	viperx.MustBindFlag(viper.GetViper(), "lbapi.address", runCmd.PersistentFlags().Lookup("lb-api-address"))

	runCmd.PersistentFlags().Int("lb-api-port", 8888, "load balancer control API port")
	viperx.MustBindFlag(viper.GetViper(), "lbapi.port", runCmd.PersistentFlags().Lookup("lb-api-port"))

	runCmd.PersistentFlags().Duration("lb-api-timeout", time.Second, "timeout for load balancer control API requests")
	viperx.MustBindFlag(viper.GetViper(), "lbapi.timeout", runCmd.PersistentFlags().Lookup("lb-api-timeout"))

	runCmd.PersistentFlags().String("base-template", "", "yaml file overlaying the built-in server entry defaults")
	viperx.MustBindFlag(viper.GetViper(), "base.template", runCmd.PersistentFlags().Lookup("base-template"))

	runCmd.PersistentFlags().String("metrics-listen", "", "address to serve prometheus metrics on (empty disables the endpoint)")
	viperx.MustBindFlag(viper.GetViper(), "metrics.listen", runCmd.PersistentFlags().Lookup("metrics-listen"))

	runCmd.PersistentFlags().String("hostname", "", "hostname matched against service target_lb lists (default: OS hostname)")
	viperx.MustBindFlag(viper.GetViper(), "hostname", runCmd.PersistentFlags().Lookup("hostname"))
}

func run(cmdCtx context.Context, v *viper.Viper) error {
	if err := validateMandatoryFlags(); err != nil {
		return err
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	ctx, cancel := context.WithCancel(cmdCtx)

	go func() {
		<-c
		cancel()
	}()

	source, err := orchestrator.NewClient(
		viper.GetString("orchestrator.address"),
		orchestrator.WithLogger(logger),
		orchestrator.WithRequestTimeout(viper.GetDuration("orchestrator.request.timeout")),
		orchestrator.WithReceiveTimeout(viper.GetDuration("orchestrator.receive.timeout")),
	)
	if err != nil {
		logger.Fatalw("failed to create the orchestrator client", "error", err)
	}

	template, err := manager.LoadTemplate(viper.GetString("base.template"))
	if err != nil {
		logger.Fatalw("failed to load the base template", "error", err)
	}

	hostname := viper.GetString("hostname")
	if hostname == "" {
		hostname, err = os.Hostname()
		if err != nil {
			logger.Fatalw("failed to determine the local hostname", "error", err)
		}
	}

	lbURL := "http://" + net.JoinHostPort(viper.GetString("lbapi.address"), strconv.Itoa(viper.GetInt("lbapi.port")))

	mgr := &manager.Manager{
		Context:      ctx,
		Logger:       logger,
		SourceClient: source,
		LBClient: lbapi.NewClient(lbURL,
			lbapi.WithLogger(logger),
			lbapi.WithTimeout(viper.GetDuration("lbapi.timeout")),
		),
		DNSProber:    dnsprobe.New(dnsprobe.WithLogger(logger)),
		BaseTemplate: template,
		Hostname:     hostname,
	}

	if listen := viper.GetString("metrics.listen"); listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		srv := &http.Server{
			Addr:    listen,
			Handler: mux,
		}

		go func() {
			logger.Infow("serving metrics", "address", listen)

			if err := srv.ListenAndServe(); err != nil {
				logger.Errorw("metrics server failed", zap.Error(err))
			}
		}()
	}

	logger.Infow("Initializing...",
		zap.String("orchestrator", viper.GetString("orchestrator.address")),
		zap.String("lbapi", lbURL),
		zap.String("hostname", hostname),
	)

	if err := mgr.Run(); err != nil {
		logger.Fatalw("failed starting manager", "error", err)
	}

	return nil
}

// validateMandatoryFlags collects the mandatory flag validation
func validateMandatoryFlags() error {
	errs := []error{}

	if viper.GetString("orchestrator.address") == "" {
		errs = append(errs, ErrOrchestratorAddressRequired)
	}

	if viper.GetString("lbapi.address") == "" {
		errs = append(errs, ErrLBAPIAddressRequired)
	}

	if len(errs) == 0 {
		return nil
	}

	return errors.Join(errs...) //nolint:goerr113
}
