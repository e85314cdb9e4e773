// Package vietnamchain implements the anchoring ledger client for the
// REST-fronted national logistics ledger. Every request is authenticated with
// an HMAC-SHA256 signature over the canonical request representation.
package vietnamchain

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
)

// Gateway endpoints, kept without a leading slash because the signed message
// carries them in exactly this form.
const (
	shipmentsEndpoint    = "api/v1/logistics/shipments"
	eventsEndpoint       = "api/v1/logistics/events"
	documentsEndpoint    = "api/v1/documents"
	transactionsEndpoint = "api/v1/transactions"

	requestTimeout = 30 * time.Second
)

// ledger is the REST-ledger implementation of types.Ledger.
type ledger struct {
	config     *types.LedgerConfig
	logger     *logrus.Logger
	baseURL    string
	httpClient *http.Client
}

// NewLedger creates a REST-ledger client. The gateway performs its own
// connection management, so no monitor loop is needed here.
//
// Parameters:
// - ctx: the context for managing construction.
// - config: the ledger configuration.
// - logger: the logger for logging purposes.
//
// Returns:
// - types.Ledger: a new REST-ledger instance.
// - error: an error if the credentials are missing.
func NewLedger(ctx context.Context, config *types.LedgerConfig, logger *logrus.Logger) (types.Ledger, error) {
	if config.APIKey == "" || config.APISecret == "" {
		return nil, errors.Wrap(commonerrors.ErrNotConfigured, "API credentials not configured")
	}

	l := &ledger{
		config:     config,
		logger:     logger,
		baseURL:    strings.TrimRight(config.NodeURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}

	logger.WithFields(logrus.Fields{
		"ledger":       config.Name,
		"gateway":      l.baseURL,
		"organization": config.OrganizationID,
	}).Info("REST-ledger client initialized")

	return l, nil
}

// Close is a no-op; the HTTP client holds no persistent connection state
// worth tearing down.
func (l *ledger) Close() {}

// doRequest signs and executes one gateway request. The body must be a flat
// string map so its canonical JSON form is deterministic. A 404 response is
// mapped to ErrNotFound; other non-2xx responses to ErrLedgerRejected.
func (l *ledger) doRequest(ctx context.Context, method, endpoint string, body map[string]string, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, l.baseURL+"/"+endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}

	l.signRequest(req, method, endpoint, body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(commonerrors.ErrConnectivity, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(commonerrors.ErrConnectivity, err.Error())
	}

	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrapf(commonerrors.ErrNotFound, "%s %s", method, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrapf(commonerrors.ErrLedgerRejected, "gateway returned %d: %s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.Wrap(err, "failed to decode gateway response")
		}
	}
	return nil
}
