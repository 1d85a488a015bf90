package main

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/dgarridoc/arcanum-client/internal/config"
	"github.com/dgarridoc/arcanum-client/internal/devserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	handler := devserver.Router(log.Named("devserver"))

	log.Info("listening", zap.String("addr", cfg.ListenAddr))
	if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
