package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// IMAPSource pulls unseen SMS-forwarder emails from a plain IMAP mailbox.
// Each cycle dials a fresh connection; providers drop idle sessions faster
// than the poll interval anyway.
type IMAPSource struct {
	addr     string
	username string
	password string
	sender   string
}

func NewIMAPSource(addr, username, password, sender string) *IMAPSource {
	return &IMAPSource{addr: addr, username: username, password: password, sender: sender}
}

func (s *IMAPSource) Name() string { return "imap" }

// Fetch searches INBOX for unseen mail from the configured sender and
// delivers each plain text body. Only messages whose body was delivered (or
// carried no usable text) get flagged \Seen; anything after a delivery
// failure stays unseen for the next cycle.
func (s *IMAPSource) Fetch(ctx context.Context, deliver func(text string) error) error {
	c, err := client.DialTLS(s.addr, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.addr, err)
	}
	defer c.Logout()
	c.Timeout = 30 * time.Second

	if err := c.Login(s.username, s.password); err != nil {
		return fmt.Errorf("imap login: %w", err)
	}
	if _, err := c.Select("INBOX", false); err != nil {
		return fmt.Errorf("select inbox: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	if s.sender != "" {
		criteria.Header.Add("From", s.sender)
	}
	ids, err := c.Search(criteria)
	if err != nil {
		return fmt.Errorf("imap search: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)
	section := &imap.BodySectionName{}
	messages := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{section.FetchItem()}, messages)
	}()

	type fetched struct {
		seq  uint32
		text string
	}
	var pending []fetched
	handled := new(imap.SeqSet)
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		text, err := plainTextFromMail(body)
		if err != nil || text == "" {
			// nothing to deliver; flag it so it is not refetched forever
			handled.AddNum(msg.SeqNum)
			continue
		}
		pending = append(pending, fetched{seq: msg.SeqNum, text: text})
	}
	fetchErr := <-done

	var deliverErr error
	for _, m := range pending {
		if deliverErr = deliver(m.text); deliverErr != nil {
			break
		}
		handled.AddNum(m.seq)
	}
	if !handled.Empty() {
		item := imap.FormatFlagsOp(imap.AddFlags, true)
		if err := c.Store(handled, item, []interface{}{imap.SeenFlag}, nil); err != nil {
			return fmt.Errorf("mark seen: %w", err)
		}
	}
	if deliverErr != nil {
		return fmt.Errorf("deliver: %w", deliverErr)
	}
	if fetchErr != nil {
		return fmt.Errorf("imap fetch: %w", fetchErr)
	}
	return nil
}

// plainTextFromMail extracts the first inline text part of a message body.
func plainTextFromMail(r io.Reader) (string, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", err
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		if _, ok := part.Header.(*mail.InlineHeader); ok {
			b, err := io.ReadAll(part.Body)
			if err != nil {
				return "", err
			}
			return string(b), nil
		}
	}
}
