package domain

import (
	"github.com/hutmuts/hutmuts-api/config"
	"github.com/hutmuts/hutmuts-api/domain/monitoring"
	"github.com/hutmuts/hutmuts-api/domain/waitlist"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) {
	appConfig.RouterService.MountController(monitoring.NewMonitoringController(appConfig.DB, appConfig.Logger, appConfig.Cache))
	appConfig.RouterService.MountController(waitlist.NewWaitlistController(appConfig.DB, appConfig.Logger, appConfig.Cache))
}
