package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/market-helper/internal/config"
	httpapi "github.com/fairyhunter13/market-helper/internal/http"
	"github.com/fairyhunter13/market-helper/internal/model"
	"github.com/fairyhunter13/market-helper/internal/obs"
	"github.com/fairyhunter13/market-helper/internal/queue"
	"github.com/fairyhunter13/market-helper/internal/store"
)

var seedPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Serves the catalog API. Configuration comes from the environment (HTTP_ADDR, WORKER_MIN, LOG_LEVEL, ...).",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&seedPath, "seed", "", "optional catalog snapshot JSON to start from")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	obs.InitLogger(cfg.LogLevel)
	obs.Logger.Info("service_starting")

	st := store.New()
	if seedPath != "" {
		var c model.Catalog
		if err := readJSONFile(seedPath, cmd.InOrStdin(), &c); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		st = store.NewWithCatalog(c)
		products, stores, prices, purchases := st.Counts()
		obs.Logger.Info("catalog_seeded", "products", products, "stores", stores, "prices", prices, "purchases", purchases)
	}

	mgr := queue.NewManager(cfg, queue.New(cfg.QueueBuffer), st)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)

	app := httpapi.NewApp(cfg, st, mgr)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sigc:
		obs.Logger.Info("shutdown_signal", "signal", s.String())
	case err := <-errc:
		obs.Logger.Error("http_server_error", "error", err)
		mgr.Stop()
		return err
	}

	app.StartShutdown()
	stats := mgr.Stats()
	obs.Logger.Info("shutdown_drain_begin", "backlog_size", stats.Backlog, "worker_count", mgr.WorkerCount())

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := mgr.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout")
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	mgr.Stop()
	obs.Logger.Info("service_stopped")
	return nil
}
