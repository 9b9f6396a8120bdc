package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/chris-regnier/jinspect/internal/cache"
)

var (
	flagCacheClearDir string
	flagServeDir      string
	flagServeAddr     string
	flagServeToken    string
)

func init() {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached result",
		RunE:  runCacheClear,
	}
	clearCmd.Flags().StringVar(&flagCacheClearDir, "cache", "", "Cache directory (default from config, then .jinspect/cache)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a cache directory to remote clients",
		RunE:  runCacheServe,
	}
	serveCmd.Flags().StringVar(&flagServeDir, "cache", "", "Cache directory (default from config, then .jinspect/cache)")
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", ":8420", "Listen address")
	serveCmd.Flags().StringVar(&flagServeToken, "token", "", "Bearer token clients must send (default $JINSPECT_CACHE_TOKEN)")

	cacheCmd.AddCommand(clearCmd, serveCmd)
	rootCmd.AddCommand(cacheCmd)
}

// cacheDir returns explicit, else the configured cache directory, else the
// project default.
func cacheDir(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	cfg, err := loadConfig("")
	if err != nil {
		return "", err
	}
	if cfg.Engine.CacheDir != "" {
		return cfg.Engine.CacheDir, nil
	}
	return filepath.Join(".jinspect", "cache"), nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	dir, err := cacheDir(flagCacheClearDir)
	if err != nil {
		return err
	}
	if err := cache.NewDisk(dir).DropAll(); err != nil {
		return fmt.Errorf("clearing cache %s: %w", dir, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", dir)
	return nil
}

func runCacheServe(cmd *cobra.Command, args []string) error {
	dir, err := cacheDir(flagServeDir)
	if err != nil {
		return err
	}
	token := flagServeToken
	if token == "" {
		token = os.Getenv("JINSPECT_CACHE_TOKEN")
	}

	logger := slog.Default()
	srv := &http.Server{
		Addr:              flagServeAddr,
		Handler:           cache.NewServer(cache.NewDisk(dir), token, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	logger.Info("serving cache", "addr", flagServeAddr, "dir", dir, "auth", token != "")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("cache server: %w", err)
	}
	return nil
}
