package app

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/internal/chain"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("mode", a.cfg.ExecutionMode),
		zap.String("topology", a.cfg.Topology),
		zap.String("log-level", a.cfg.LogLevel))

	a.startComponents()

	// Mark as ready
	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.String("node-rpc", a.cfg.NodeRPCURL))

	return a.waitForShutdown()
}

func (a *App) startComponents() {
	a.wg.Add(1)
	go a.runHTTPServer()

	if a.headWatcher != nil {
		a.wg.Add(1)
		go a.runHeadWatcher()
	}
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) runHeadWatcher() {
	defer a.wg.Done()

	err := a.headWatcher.Watch(a.ctx, func(h chain.Header) {
		a.logger.Debug("new-head",
			zap.String("number", h.Number.String()),
			zap.String("hash", h.Hash))
	})
	if err != nil && !errors.Is(err, a.ctx.Err()) {
		a.logger.Error("head-watcher-error", zap.Error(err))
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
