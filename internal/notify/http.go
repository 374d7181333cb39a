package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/duitapp/ledger/pkg/logger"
)

type deliverRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// HTTPSink posts digests to the bot-delivery gateway. A non-2xx answer or
// a blown deadline is a failed delivery; there is no retry here.
type HTTPSink struct {
	url     string
	timeout time.Duration
	client  *fasthttp.Client
}

func NewHTTPSink(url string, timeout time.Duration) *HTTPSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSink{
		url:     url,
		timeout: timeout,
		client: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 60 * time.Second,
		},
	}
}

func (s *HTTPSink) Deliver(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(deliverRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(s.timeout)
	}

	if err := s.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode != fasthttp.StatusOK && statusCode != fasthttp.StatusAccepted {
		logger.Warn("gateway rejected delivery", "chat_id", chatID, "status", statusCode)
		return fmt.Errorf("gateway returned status %d", statusCode)
	}

	return nil
}
