package loki

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"produto-api/internal/logging"
)

const pushPath = "/loki/api/v1/push"

// Sender serializes batches into the Loki push format and POSTs them.
// One batch produces one POST; there is no retry, a failed send is reported
// to the caller and the batch is gone.
type Sender struct {
	pushURL    string
	httpClient *http.Client
}

type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

type Payload struct {
	Streams []Stream `json:"streams"`
}

// NewSender builds a sender for the given Loki base URL. The timeout bounds
// every push so a stalled backend cannot wedge the flush worker.
func NewSender(baseURL string, timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Sender{
		pushURL: strings.TrimRight(baseURL, "/") + pushPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (ls *Sender) SendBatch(entries []logging.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	body, err := json.Marshal(ls.createPayload(entries))
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return ls.sendRequest(body)
}

// createPayload groups entries by label set into streams, keeping the entry
// order inside each stream and the first-seen order of the streams.
func (ls *Sender) createPayload(entries []logging.LogEntry) Payload {
	index := make(map[string]int)
	streams := make([]Stream, 0, 1)

	for _, entry := range entries {
		key := streamKey(entry.Labels)
		i, ok := index[key]
		if !ok {
			i = len(streams)
			index[key] = i
			streams = append(streams, Stream{
				Stream: entry.Labels,
				Values: [][2]string{},
			})
		}

		timestamp := fmt.Sprintf("%d", entry.Timestamp.UnixNano())
		streams[i].Values = append(streams[i].Values, [2]string{timestamp, entry.Message})
	}

	return Payload{Streams: streams}
}

func streamKey(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(';')
	}
	return b.String()
}

func (ls *Sender) sendRequest(body []byte) error {
	req, err := http.NewRequest(http.MethodPost, ls.pushURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := ls.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("loki returned status %d: %s", resp.StatusCode, string(responseBody))
	}

	return nil
}
