package main

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Fetcher pulls pending raw notification texts from an external source and
// hands each one to deliver. A message may be consumed at the source (marked
// read) only after deliver returns nil for it, so a failure partway through a
// batch leaves the unprocessed remainder to be fetched again.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, deliver func(text string) error) error
}

const maxBackoff = 10 * time.Minute

// Poller drives one Fetcher on a fixed interval. Cycles never overlap: the
// next one is scheduled only after the previous finishes. Consecutive
// failures double the wait up to maxBackoff; a success resets it.
type Poller struct {
	fetcher  Fetcher
	ingestor *Ingestor
	interval time.Duration
	log      zerolog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewPoller(f Fetcher, in *Ingestor, interval time.Duration, log zerolog.Logger) *Poller {
	return &Poller{
		fetcher:  f,
		ingestor: in,
		interval: interval,
		log:      log.With().Str("source", f.Name()).Logger(),
	}
}

// Start launches the polling goroutine.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.run(ctx)
	p.log.Info().Dur("interval", p.interval).Msg("poller started")
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()
	failures := 0
	for {
		if err := p.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			p.log.Error().Err(err).Int("consecutive_failures", failures).Msg("fetch cycle failed")
		} else {
			failures = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoffWait(p.interval, failures)):
		}
	}
}

// backoffWait widens the base interval after consecutive failures, doubling
// per failure up to maxBackoff. Zero failures gives the base interval back.
func backoffWait(base time.Duration, failures int) time.Duration {
	wait := base
	for i := 0; i < failures && wait < maxBackoff; i++ {
		wait *= 2
	}
	if wait > maxBackoff {
		wait = maxBackoff
	}
	return wait
}

// cycle feeds every text the source hands over straight into the ledger, so
// a mid-batch source failure cannot drop texts that were already fetched.
func (p *Poller) cycle(ctx context.Context) error {
	return p.fetcher.Fetch(ctx, func(text string) error {
		_, err := p.ingestor.Ingest(ctx, text, time.Now())
		return err
	})
}

// Stop cancels the loop and waits for an in-flight cycle to finish.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}
