// Package mailbox connects to an IMAP mail store, searches it, and decodes
// fetched messages into the normalized entity.Message shape the pipeline
// consumes.
package mailbox

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/avigneron/winesync/internal/common"
	"github.com/avigneron/winesync/internal/entity"
)

const (
	minFetch = 1
	maxFetch = 500
)

// Client wraps a logged-in IMAP session.
type Client struct {
	c      *client.Client
	logger *slog.Logger
}

// Connect dials addr over TLS and logs in. Dial failures map to
// common.ErrTransport, login rejections to common.ErrAuth.
func Connect(addr, username, password string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if username == "" || password == "" {
		return nil, common.NewAppError("MAIL_CONFIG", "username and password are required", common.ErrInvalidInput)
	}

	c, err := client.DialTLS(addr, nil)
	if err != nil {
		logger.Error("mailbox.connect.dial_error", "addr", addr, "error", err)
		return nil, fmt.Errorf("%w: dial %s: %v", common.ErrTransport, addr, err)
	}
	if err := c.Login(username, password); err != nil {
		logger.Error("mailbox.connect.auth_error", "addr", addr, "username", username, "error", err)
		_ = c.Logout()
		return nil, fmt.Errorf("%w: login %s: %v", common.ErrAuth, username, err)
	}
	logger.Info("mailbox.connect.ok", "addr", addr, "username", username)
	return &Client{c: c, logger: logger}, nil
}

// FetchMessages lists messages matching query (only the literal "ALL" is
// used by this program), newest first by mailbox insertion order, and fetches
// up to maxResults of them as RFC822. maxResults is clamped into [1, 500].
// A fetch or parse failure on one message logs and skips that message.
func (m *Client) FetchMessages(query string, maxResults int) []entity.Message {
	if maxResults < minFetch {
		maxResults = minFetch
	}
	if maxResults > maxFetch {
		maxResults = maxFetch
	}

	start := time.Now()

	if _, err := m.c.Select("INBOX", true); err != nil {
		m.logger.Error("mailbox.select.error", "error", err)
		return nil
	}

	// Date filtering happens client-side after fetch; the server-side
	// search stays unconditional.
	criteria := imap.NewSearchCriteria()
	if query != "" && query != "ALL" {
		m.logger.Warn("mailbox.search.unsupported_query", "query", query, "using", "ALL")
	}
	ids, err := m.c.Search(criteria)
	if err != nil {
		m.logger.Error("mailbox.search.error", "error", err)
		return nil
	}
	if len(ids) == 0 {
		m.logger.Info("mailbox.fetch.ok", "fetched", 0, "elapsed_ms", time.Since(start).Milliseconds())
		return nil
	}

	// Newest first: reverse mailbox insertion order, not parsed date.
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	if len(ids) > maxResults {
		ids = ids[:maxResults]
	}

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{section.FetchItem()}

	msgs := make([]entity.Message, 0, len(ids))
	for _, id := range ids {
		seq := new(imap.SeqSet)
		seq.AddNum(id)

		ch := make(chan *imap.Message, 1)
		errc := make(chan error, 1)
		go func() {
			errc <- m.c.Fetch(seq, items, ch)
		}()

		var raw *imap.Message
		for fetched := range ch {
			if raw == nil {
				raw = fetched
			}
		}
		if err := <-errc; err != nil {
			m.logger.Error("mailbox.fetch.message_error", "id", id, "error", err)
			continue
		}
		if raw == nil {
			m.logger.Warn("mailbox.fetch.empty_response", "id", id)
			continue
		}
		body := raw.GetBody(section)
		if body == nil {
			m.logger.Warn("mailbox.fetch.no_body", "id", id)
			continue
		}

		msg, err := decodeMessage(strconv.FormatUint(uint64(id), 10), body)
		if err != nil {
			m.logger.Error("mailbox.decode.error", "id", id, "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}

	m.logger.Info("mailbox.fetch.ok",
		"requested", maxResults,
		"fetched", len(msgs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return msgs
}

// Close logs out of the session. Errors are logged only.
func (m *Client) Close() {
	if err := m.c.Logout(); err != nil {
		m.logger.Warn("mailbox.logout.error", "error", err)
	}
}
