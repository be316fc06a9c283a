package main

import (
	"context"
	"errors"
	"time"

	"rashan/models"
	"rashan/pkg/sms"

	"github.com/rs/zerolog"
)

// IngestResult classifies the outcome of one raw notification text.
type IngestResult string

const (
	IngestRecorded  IngestResult = "success"
	IngestDuplicate IngestResult = "duplicate"
	IngestIgnored   IngestResult = "ignored"
)

// Ingestor runs raw text through the extractor and appends recognized
// donations to the ledger.
type Ingestor struct {
	store DonationStore
	log   zerolog.Logger
}

func NewIngestor(store DonationStore, log zerolog.Logger) *Ingestor {
	return &Ingestor{store: store, log: log}
}

// Ingest records the donation described by rawText, if any. The append is the
// last step, so a storage failure leaves no partial state behind; it returns
// the zero result with the error, since the text was neither classified nor
// recorded.
func (in *Ingestor) Ingest(ctx context.Context, rawText string, now time.Time) (IngestResult, error) {
	cand, err := sms.Extract(rawText)
	if err != nil {
		in.log.Debug().Str("text", sms.Snippet(rawText, 80)).Msg("not a donation text")
		return IngestIgnored, nil
	}

	d := models.NewDonation(cand.TransactionID, cand.Amount, cand.Name, now)
	if err := in.store.Append(ctx, d); err != nil {
		if errors.Is(err, ErrDuplicate) {
			in.log.Info().Str("transaction_id", cand.TransactionID).Msg("duplicate transaction, skipping")
			return IngestDuplicate, nil
		}
		return "", err
	}
	in.log.Info().
		Str("transaction_id", cand.TransactionID).
		Str("amount", cand.Amount.String()).
		Str("name", cand.Name).
		Msg("donation recorded")
	return IngestRecorded, nil
}
