package repository

import (
	"github.com/gudcity/loyalty/internal/domain/account"
	"github.com/gudcity/loyalty/internal/domain/enrollment"
	"github.com/gudcity/loyalty/internal/domain/ledger"
	"github.com/gudcity/loyalty/internal/domain/program"
	"github.com/gudcity/loyalty/internal/domain/promocode"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/postgres"
	"github.com/gudcity/loyalty/internal/repository/gormstore"
)

func NewAccountRepository(client postgres.IClient, log *logger.Logger) account.Repository {
	return gormstore.NewAccountRepository(client, log)
}

func NewProgramRepository(client postgres.IClient, log *logger.Logger) program.Repository {
	return gormstore.NewProgramRepository(client, log)
}

func NewEnrollmentRepository(client postgres.IClient, log *logger.Logger) enrollment.Repository {
	return gormstore.NewEnrollmentRepository(client, log)
}

func NewLedgerRepository(client postgres.IClient, log *logger.Logger) ledger.Repository {
	return gormstore.NewLedgerRepository(client, log)
}

func NewPromoCodeRepository(client postgres.IClient, log *logger.Logger) promocode.Repository {
	return gormstore.NewPromoCodeRepository(client, log)
}
