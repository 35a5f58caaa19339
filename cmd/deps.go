package main

import (
	"context"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/harborview-living/directory-cli/internal/assessment"
	"github.com/harborview-living/directory-cli/internal/db"
	"github.com/harborview-living/directory-cli/internal/geo"
	"github.com/harborview-living/directory-cli/internal/store"
	sfpkg "github.com/harborview-living/directory-cli/pkg/salesforce"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.SQLitePath
		if dsn == "" {
			dsn = "directory.db"
		}
		st, err := store.NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "postgres":
		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store.NewPostgres(pool), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initSalesforce() (sfpkg.Client, error) {
	if err := cfg.Validate("sync"); err != nil {
		return nil, err
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf, sfpkg.WithRateLimit(cfg.Salesforce.RateLimit)), nil
}

// initGazetteer builds the resolution cascade: the SQLite ZCTA dataset when
// its file exists, then the launch-market seed table.
func initGazetteer() (geo.Gazetteer, func(), error) {
	seed := geo.NewSeedGazetteer()

	path := cfg.Gazetteer.SQLitePath
	if path == "" {
		return seed, func() {}, nil
	}
	if _, err := os.Stat(path); err != nil {
		zap.L().Debug("gazetteer database not found, using seed table", zap.String("path", path))
		return seed, func() {}, nil
	}

	sq, err := geo.OpenSQLite(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "open gazetteer")
	}
	closer := func() { _ = sq.Close() }
	return geo.NewCascade(sq, seed), closer, nil
}

func initBank() (*assessment.Bank, error) {
	if cfg.Assessment.BankPath != "" {
		return assessment.LoadBankFile(cfg.Assessment.BankPath)
	}
	return assessment.DefaultBank()
}
