package main

// Command: export_waitlist.go
//
// Description:
// Dumps every waitlist entry as CSV on stdout, in storage-native order. This
// is the admin-side consumer of the waitlist listing; pipe it into a file or
// a spreadsheet import.
//
// Usage:
//   cli export > waitlist.csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/hutmuts/hutmuts-api/config"
	"github.com/hutmuts/hutmuts-api/domain/waitlist"
	"github.com/hutmuts/hutmuts-api/internal/log"
	"github.com/hutmuts/hutmuts-api/pkg/constants"
)

func ExportWaitlist(logger *log.Logger, out io.Writer) error {
	db, err := config.NewDatabase(logger, &config.DBConfig{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer config.CloseDatabase(db, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repository := waitlist.NewWaitlistRepository(db)
	entries, err := repository.GetAllEntries(ctx)
	if err != nil {
		return fmt.Errorf("fetch waitlist entries: %w", err)
	}

	w := csv.NewWriter(out)

	if err := w.Write([]string{"id", "name", "email", "user_type", "created_at"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, entry := range entries {
		record := []string{
			entry.ID,
			entry.Name,
			entry.Email,
			entry.UserType,
			entry.CreatedAt.Format(constants.RFC3339DateTimeFormat),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	logger.Info("Waitlist exported", "entries", len(entries))
	return nil
}
