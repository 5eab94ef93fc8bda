// Package app wires configuration, chain access, the orchestrator and
// the HTTP surface into one runnable service.
package app

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/internal/chain"
	"github.com/Ishita-02/The-DeFi-App/internal/leverage"
	"github.com/Ishita-02/The-DeFi-App/internal/storage"
	"github.com/Ishita-02/The-DeFi-App/pkg/cache"
	"github.com/Ishita-02/The-DeFi-App/pkg/config"
	"github.com/Ishita-02/The-DeFi-App/pkg/healthprobe"
	"github.com/Ishita-02/The-DeFi-App/pkg/httpserver"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	ethClient     *ethclient.Client
	tokenCache    cache.Cache
	orchestrator  *leverage.Orchestrator
	sink          storage.Storage
	headWatcher   *chain.HeadWatcher
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Orchestrator exposes the settlement pipeline for one-shot CLI use.
func (a *App) Orchestrator() *leverage.Orchestrator {
	return a.orchestrator
}
