package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"rashan/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const raastSMS = "Rs 10.00 received in your JazzCash Mobile Account:03095877041 via Raast. TID: 704100096110"

func newTestIngestor(t *testing.T) (*Ingestor, *FileStore) {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "donations.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return NewIngestor(s, zerolog.Nop()), s
}

func TestIngestRecordsDonation(t *testing.T) {
	in, s := newTestIngestor(t)
	ctx := context.Background()

	res, err := in.Ingest(ctx, raastSMS, time.Now())
	if err != nil || res != IngestRecorded {
		t.Fatalf("expected recorded got %v err=%v", res, err)
	}
	all, _ := s.All(ctx)
	if len(all) != 1 {
		t.Fatalf("expected 1 ledger entry got %d", len(all))
	}
	if all[0].TransactionID != "704100096110" {
		t.Fatalf("unexpected tid %q", all[0].TransactionID)
	}
	if !all[0].Amount.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("unexpected amount %s", all[0].Amount)
	}
}

func TestIngestSameTextTwiceIsDuplicate(t *testing.T) {
	in, s := newTestIngestor(t)
	ctx := context.Background()

	if res, _ := in.Ingest(ctx, raastSMS, time.Now()); res != IngestRecorded {
		t.Fatalf("first ingest should record, got %v", res)
	}
	res, err := in.Ingest(ctx, raastSMS, time.Now())
	if err != nil || res != IngestDuplicate {
		t.Fatalf("expected duplicate got %v err=%v", res, err)
	}
	all, _ := s.All(ctx)
	if len(all) != 1 {
		t.Fatalf("duplicate must not grow the ledger, got %d", len(all))
	}
}

type brokenStore struct{ err error }

func (b *brokenStore) Append(ctx context.Context, d models.Donation) error { return b.err }
func (b *brokenStore) All(ctx context.Context) ([]models.Donation, error)  { return nil, b.err }

func TestIngestStorageFailureReturnsNoResult(t *testing.T) {
	in := NewIngestor(&brokenStore{err: errors.New("disk full")}, zerolog.Nop())

	res, err := in.Ingest(context.Background(), raastSMS, time.Now())
	if err == nil {
		t.Fatalf("expected the storage error to surface")
	}
	// "ignored" means the text did not match; a write failure is neither
	// ignored nor recorded.
	if res != "" {
		t.Fatalf("expected zero result on storage failure, got %q", res)
	}
}

func TestIngestUnrecognizedTextIsIgnored(t *testing.T) {
	in, s := newTestIngestor(t)
	ctx := context.Background()

	res, err := in.Ingest(ctx, "Hello, your OTP is 123456", time.Now())
	if err != nil || res != IngestIgnored {
		t.Fatalf("expected ignored got %v err=%v", res, err)
	}
	all, _ := s.All(ctx)
	if len(all) != 0 {
		t.Fatalf("ignored text must not mutate the ledger, got %d entries", len(all))
	}
}
