package radio

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/airship/internal/domain"
	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/pkg/log"
)

const (
	joinEndpoint       = "/v1/join"
	uplinkEndpoint     = "/v1/uplink"
	deviceTimeEndpoint = "/v1/device-time"
)

// Retry defaults for the HTTP bridge.
const (
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 500 * time.Millisecond
	DefaultMaxBackoff     = 5 * time.Second
)

// HTTPConfig configures the network server bridge.
type HTTPConfig struct {
	// ServiceURL is the base URL of the network server bridge.
	ServiceURL string

	// AuthKey is sent as a bearer token.
	AuthKey string

	Identity domain.DeviceIdentity

	// Hostname identifies the gateway host in request headers.
	Hostname string

	// RunID correlates requests of one station run. Generated when empty.
	RunID string

	// MaxAttempts bounds tries per request. Zero means DefaultMaxAttempts.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// HTTP is a ports.Radio that exchanges JSON with a network server bridge.
// Transport errors and 5xx replies are retried with jittered exponential
// backoff; 4xx replies are not.
type HTTP struct {
	client ports.HTTPClient
	cfg    HTTPConfig
	logger log.Logger
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.code, e.body)
}

type joinRequest struct {
	DevEUI  string `json:"dev_eui"`
	JoinEUI string `json:"join_eui"`
}

type joinResponse struct {
	Accepted bool `json:"accepted"`
}

type uplinkRequest struct {
	DevEUI  string `json:"dev_eui"`
	Port    uint8  `json:"port"`
	Payload string `json:"payload"`
}

type downlinkMessage struct {
	Port    uint8  `json:"port"`
	Payload string `json:"payload"`
}

type uplinkResponse struct {
	Downlink *downlinkMessage `json:"downlink,omitempty"`
}

type deviceTimeResponse struct {
	GPSEpoch uint32 `json:"gps_epoch"`
}

// NewHTTP creates an HTTP bridge radio.
func NewHTTP(client ports.HTTPClient, cfg HTTPConfig, logger log.Logger) *HTTP {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	cfg.ServiceURL = strings.TrimRight(cfg.ServiceURL, "/")
	return &HTTP{client: client, cfg: cfg, logger: logger}
}

// RunID returns the run identifier sent with every request.
func (h *HTTP) RunID() string {
	return h.cfg.RunID
}

// Join implements ports.Radio.
func (h *HTTP) Join(ctx context.Context) error {
	req := joinRequest{
		DevEUI:  hex.EncodeToString(h.cfg.Identity.DevEUI[:]),
		JoinEUI: hex.EncodeToString(h.cfg.Identity.JoinEUI[:]),
	}
	var resp joinResponse
	if err := h.post(ctx, joinEndpoint, req, &resp); err != nil {
		return err
	}
	if !resp.Accepted {
		return domain.ErrNotJoined
	}
	return nil
}

// Send implements ports.Radio.
func (h *HTTP) Send(ctx context.Context, port uint8, payload []byte) (ports.Downlink, error) {
	req := uplinkRequest{
		DevEUI:  hex.EncodeToString(h.cfg.Identity.DevEUI[:]),
		Port:    port,
		Payload: hex.EncodeToString(payload),
	}
	var resp uplinkResponse
	if err := h.post(ctx, uplinkEndpoint, req, &resp); err != nil {
		return ports.Downlink{}, err
	}
	if resp.Downlink == nil {
		return ports.Downlink{}, nil
	}

	data, err := hex.DecodeString(resp.Downlink.Payload)
	if err != nil {
		return ports.Downlink{}, fmt.Errorf("decode downlink payload: %w", err)
	}
	return ports.Downlink{Port: resp.Downlink.Port, Data: data}, nil
}

// RequestNetworkTime implements ports.Radio.
func (h *HTTP) RequestNetworkTime(ctx context.Context) (uint32, error) {
	req := uplinkRequest{
		DevEUI: hex.EncodeToString(h.cfg.Identity.DevEUI[:]),
		Port:   ports.PortTimeRequest,
	}
	var resp deviceTimeResponse
	if err := h.post(ctx, deviceTimeEndpoint, req, &resp); err != nil {
		return 0, err
	}
	if resp.GPSEpoch == 0 {
		return 0, domain.ErrNoTimeReply
	}
	return resp.GPSEpoch, nil
}

func (h *HTTP) post(ctx context.Context, endpoint string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	b := newBackoff(h.cfg.InitialBackoff, h.cfg.MaxBackoff)
	for attempt := 1; ; attempt++ {
		err = h.do(ctx, endpoint, body, out)
		if err == nil || !retryable(err) || attempt >= h.cfg.MaxAttempts || ctx.Err() != nil {
			return err
		}
		h.logger.Warn("bridge request failed, retrying",
			log.String("endpoint", endpoint),
			log.Int("attempt", attempt),
			log.Err(err),
		)
		if werr := b.wait(ctx); werr != nil {
			return werr
		}
	}
}

func (h *HTTP) do(ctx context.Context, endpoint string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.ServiceURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+h.cfg.AuthKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Agent-Hostname", h.cfg.Hostname)
	req.Header.Set("X-Agent-OSArch", runtime.GOOS+"/"+runtime.GOARCH)
	req.Header.Set("X-Airship-Dev-Eui", h.cfg.Identity.String())
	req.Header.Set("X-Airship-Run-Id", h.cfg.RunID)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(resp.Body)
		return &statusError{code: resp.StatusCode, body: string(respBody)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

var _ ports.Radio = (*HTTP)(nil)
