package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSource pulls unread SMS-forwarder emails over the Gmail API and marks
// them read once handled.
type GmailSource struct {
	svc    *gmail.Service
	sender string
}

// NewGmailSource builds the service from an OAuth client secret file plus a
// previously cached user token. Obtaining the first token is an interactive
// step done outside this service (any Gmail quickstart flow produces one).
func NewGmailSource(ctx context.Context, credentialsPath, tokenPath, sender string) (*GmailSource, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}
	conf, err := google.ConfigFromJSON(b, gmail.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}
	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("read gmail token: %w", err)
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(conf.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}
	return &GmailSource{svc: svc, sender: sender}, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	return tok, json.NewDecoder(f).Decode(tok)
}

func (g *GmailSource) Name() string { return "gmail" }

// Fetch lists unread messages from the configured sender and delivers each
// plain text body. The UNREAD label comes off only after deliver accepts the
// body, so a failure leaves the message unread for the next cycle; a message
// re-marked after a failed Modify just dedupes on its transaction id.
func (g *GmailSource) Fetch(ctx context.Context, deliver func(text string) error) error {
	query := fmt.Sprintf("from:%s is:unread", g.sender)
	list, err := g.svc.Users.Messages.List("me").Q(query).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}

	for _, m := range list.Messages {
		msg, err := g.svc.Users.Messages.Get("me", m.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("get message %s: %w", m.Id, err)
		}
		if body := plainTextBody(msg.Payload); body != "" {
			if err := deliver(body); err != nil {
				return fmt.Errorf("deliver message %s: %w", m.Id, err)
			}
		}
		mod := &gmail.ModifyMessageRequest{RemoveLabelIds: []string{"UNREAD"}}
		if _, err := g.svc.Users.Messages.Modify("me", m.Id, mod).Context(ctx).Do(); err != nil {
			return fmt.Errorf("mark read %s: %w", m.Id, err)
		}
	}
	return nil
}

// plainTextBody walks the MIME tree for the first text/plain part, falling
// back to the top-level body for single-part messages.
func plainTextBody(p *gmail.MessagePart) string {
	if p == nil {
		return ""
	}
	if p.MimeType == "text/plain" && p.Body != nil {
		return decodeBody(p.Body.Data)
	}
	for _, part := range p.Parts {
		if body := plainTextBody(part); body != "" {
			return body
		}
	}
	if p.Body != nil {
		return decodeBody(p.Body.Data)
	}
	return ""
}

// decodeBody handles Gmail's unpadded URL-safe base64.
func decodeBody(data string) string {
	if data == "" {
		return ""
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return string(b)
}
