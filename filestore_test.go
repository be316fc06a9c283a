package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rashan/models"

	"github.com/shopspring/decimal"
)

func TestFileStoreAppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donations.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)

	d1 := models.NewDonation("704100096110", decimal.RequireFromString("10.00"), "JazzCash Donor", at)
	d2 := models.NewDonation("JC123456", decimal.NewFromInt(500), "Muhammad Ali", at.Add(time.Minute))
	if err := s.Append(ctx, d1); err != nil {
		t.Fatalf("append d1: %v", err)
	}
	if err := s.Append(ctx, d2); err != nil {
		t.Fatalf("append d2: %v", err)
	}

	// Reopen from disk: every append must have been persisted.
	s2, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	all, err := s2.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 donations after reload got %d", len(all))
	}
	if all[0].TransactionID != "704100096110" || all[1].TransactionID != "JC123456" {
		t.Fatalf("insertion order not preserved: %v, %v", all[0].TransactionID, all[1].TransactionID)
	}
	if !all[0].Amount.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("amount not preserved, got %s", all[0].Amount)
	}
}

func TestFileStoreDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donations.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()
	d := models.NewDonation("TX1", decimal.NewFromInt(100), "Anonymous", time.Now())
	if err := s.Append(ctx, d); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := s.Append(ctx, d); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate got %v", err)
	}
	all, _ := s.All(ctx)
	if len(all) != 1 {
		t.Fatalf("duplicate must not grow the ledger, got %d entries", len(all))
	}
}

func TestFileStoreConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donations.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	var sharedWins atomic.Int32
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := models.NewDonation(fmt.Sprintf("TXN%03d", i), decimal.NewFromInt(100), "Donor", time.Now())
			if err := s.Append(ctx, d); err != nil {
				t.Errorf("append %s: %v", d.TransactionID, err)
			}
			// every writer also races on one shared transaction id
			shared := models.NewDonation("SHARED", decimal.NewFromInt(50), "Donor", time.Now())
			switch err := s.Append(ctx, shared); {
			case err == nil:
				sharedWins.Add(1)
			case errors.Is(err, ErrDuplicate):
			default:
				t.Errorf("shared append: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if n := sharedWins.Load(); n != 1 {
		t.Fatalf("contested transaction id must be recorded exactly once, got %d", n)
	}
	all, _ := s.All(ctx)
	if len(all) != writers+1 {
		t.Fatalf("expected %d entries, got %d (lost update)", writers+1, len(all))
	}

	// Reopen from disk: no append may have clobbered another's save.
	s2, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	persisted, _ := s2.All(ctx)
	if len(persisted) != writers+1 {
		t.Fatalf("expected %d persisted entries, got %d", writers+1, len(persisted))
	}
}

func TestFileStoreMissingFileStartsEmpty(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	all, err := s.All(context.Background())
	if err != nil || len(all) != 0 {
		t.Fatalf("expected empty ledger, got %d entries err=%v", len(all), err)
	}
}
