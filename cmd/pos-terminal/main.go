// Command pos-terminal is a line-oriented point-of-sale terminal. It keeps the
// cart of the selected table in sync with the POS backend.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/cafe-pos/internal/apiclient"
	"github.com/MikeMC777/cafe-pos/internal/catalog"
	"github.com/MikeMC777/cafe-pos/internal/config"
	"github.com/MikeMC777/cafe-pos/internal/draft"
	"github.com/MikeMC777/cafe-pos/internal/events"
	"github.com/MikeMC777/cafe-pos/internal/logging"
	"github.com/MikeMC777/cafe-pos/internal/payqr"
	"github.com/MikeMC777/cafe-pos/internal/pos"
)

const menuTTL = 5 * time.Minute

// tableEvents returns the handler feeding table.updated deliveries to s.
func tableEvents(s *pos.Session) events.Handler {
	return func(_ context.Context, d events.Delivery) error {
		if d.Key != events.KeyTableUpdated {
			return nil
		}
		var ch events.TableChange
		if err := json.Unmarshal(d.Body, &ch); err != nil {
			return err
		}
		s.ApplyTableEvent(ch)
		return nil
	}
}

func main() {
	cfg := config.Load()
	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	cfg.Log(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	drafts, err := draft.Open(cfg.DraftsPath)
	if err != nil {
		logger.Fatal("open drafts", zap.Error(err))
	}
	defer drafts.Close()

	api := apiclient.New(cfg.APIBase, cfg.APIToken, cfg.APITimeout, logger)
	out := &console{w: os.Stdout}
	menu := catalog.NewCachedSource(api, menuTTL)
	session := pos.NewSession(pos.Config{
		Orders:   api,
		Tables:   api,
		Catalog:  menu,
		Debounce: cfg.SyncDebounce,
		Payee: payqr.Account{
			BankCode: cfg.BankCode,
			Number:   cfg.AccountNumber,
			Name:     cfg.AccountName,
		},
		ManageTableAvailability: cfg.ManageTables,
		Notifier:                out,
		Logger:                  logger,
	})
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := session.Close(closeCtx); err != nil {
			logger.Warn("close session", zap.Error(err))
		}
	}()

	if cfg.RabbitMQURL != "" {
		mq, err := events.Dial(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("realtime table updates disabled", zap.Error(err))
		} else {
			defer mq.Close()
			go func() {
				err := mq.Consume(ctx, "table.*", tableEvents(session))
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("table feed stopped", zap.Error(err))
				}
			}()
		}
	}

	_ = session.LoadCatalog(ctx)
	_ = session.RefreshTables(ctx)
	out.printf("café POS, debounce %s. Type help for commands.\n", session.Debounce())

	t := &terminal{s: session, drafts: drafts, menu: menu, out: out}
	if err := t.run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("terminal", zap.Error(err))
	}
}
