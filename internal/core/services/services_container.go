package services

import (
	"log/slog"

	portsrepo "github.com/bankaroo/banking_app/internal/core/ports/repositories"
	portssvc "github.com/bankaroo/banking_app/internal/core/ports/services"
	"github.com/bankaroo/banking_app/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, logger *slog.Logger, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Currency service first since account and transfer services convert
	// through it
	currencySvc := NewCurrencyService(repos.CurrencyRepo)
	container.Currency = currencySvc

	container.Account = NewAccountService(repos.AccountRepo, currencySvc)
	container.Transfer = NewTransferService(repos.TransactionRepo, repos.AccountRepo, currencySvc)
	container.User = NewUserService(repos.UserRepo)
	container.Reconciler = NewReconciliationService(repos.TransactionRepo, logger, cfg.ReconcileInterval, cfg.ReconcileStaleAfter)

	return container
}

// Compile-time interface checks
var (
	_ portssvc.CurrencySvcFacade = (*CurrencyService)(nil)
	_ portssvc.AccountSvcFacade  = (*AccountService)(nil)
	_ portssvc.TransferSvc       = (*TransferService)(nil)
	_ portssvc.UserSvcFacade     = (*UserService)(nil)
	_ portssvc.ReconcilerSvc     = (*ReconciliationService)(nil)
)
