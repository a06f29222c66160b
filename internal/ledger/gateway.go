package ledger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"server/internal/domain"
)

// GatewayOptions configures the HTTP contract-gateway client.
type GatewayOptions struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Gateway talks to a REST contract gateway fronting the deployed donation
// contract. The gateway signs and submits the transactions; this client only
// shapes requests and classifies failures.
type Gateway struct {
	rc     *resty.Client
	logger zerolog.Logger
}

// NewGateway builds a ledger client for the given gateway endpoint.
func NewGateway(opts GatewayOptions) (*Gateway, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("ledger: gateway base url is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if opts.APIKey != "" {
		rc.SetHeader("Authorization", "Bearer "+opts.APIKey)
	}

	return &Gateway{rc: rc, logger: opts.Logger}, nil
}

type txReceipt struct {
	TxRef string `json:"txRef"`
}

type gatewayError struct {
	Message string `json:"message"`
}

type submitBody struct {
	DonationID int               `json:"donationId"`
	DonorRef   string            `json:"donorRef"`
	DonorID    int               `json:"donorId"`
	BloodGroup domain.BloodGroup `json:"bloodGroup"`
	Units      int               `json:"units"`
	Timestamp  int64             `json:"timestamp"`
	Hospital   string            `json:"hospital"`
}

// Submit records a donation on the ledger and returns the transaction
// reference. A fresh idempotency key is attached per attempt so the gateway
// can deduplicate replays of the same HTTP request.
func (g *Gateway) Submit(ctx context.Context, in SubmitInput) (string, error) {
	var receipt txReceipt
	var gwErr gatewayError

	resp, err := g.rc.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetBody(submitBody{
			DonationID: in.DonationID,
			DonorRef:   in.DonorRef,
			DonorID:    in.DonorID,
			BloodGroup: in.BloodGroup,
			Units:      in.Units,
			Timestamp:  in.Timestamp.Unix(),
			Hospital:   in.Hospital,
		}).
		SetResult(&receipt).
		SetError(&gwErr).
		Post("/donations")
	if err := g.classify(resp, err, false); err != nil {
		return "", fmt.Errorf("ledger: submit donation %d: %w", in.DonationID, err)
	}
	if receipt.TxRef == "" {
		return "", fmt.Errorf("ledger: submit donation %d: %w: empty receipt", in.DonationID, ErrRejected)
	}
	g.logger.Info().Int("donation_id", in.DonationID).Str("tx_ref", receipt.TxRef).Msg("ledger submit accepted")
	return receipt.TxRef, nil
}

// MarkVerified flips the verified flag on the ledger record. The acting
// identity's wallet reference becomes the transaction sender.
func (g *Gateway) MarkVerified(ctx context.Context, donationID int, actingRef string) (string, error) {
	var receipt txReceipt
	var gwErr gatewayError

	resp, err := g.rc.R().
		SetContext(ctx).
		SetBody(map[string]string{"from": actingRef}).
		SetResult(&receipt).
		SetError(&gwErr).
		Post(fmt.Sprintf("/donations/%d/verify", donationID))
	if err := g.classify(resp, err, true); err != nil {
		return "", fmt.Errorf("ledger: mark verified donation %d: %w", donationID, err)
	}
	g.logger.Info().Int("donation_id", donationID).Str("tx_ref", receipt.TxRef).Msg("ledger record marked verified")
	return receipt.TxRef, nil
}

// Fetch reads the ledger record for a donation.
func (g *Gateway) Fetch(ctx context.Context, donationID int) (*Record, error) {
	var rec Record
	var gwErr gatewayError

	resp, err := g.rc.R().
		SetContext(ctx).
		SetResult(&rec).
		SetError(&gwErr).
		Get(fmt.Sprintf("/donations/%d", donationID))
	if err := g.classify(resp, err, true); err != nil {
		return nil, fmt.Errorf("ledger: fetch donation %d: %w", donationID, err)
	}
	return &rec, nil
}

// Stats returns the ledger-side aggregate counters.
func (g *Gateway) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	var gwErr gatewayError

	resp, err := g.rc.R().
		SetContext(ctx).
		SetResult(&stats).
		SetError(&gwErr).
		Get("/stats")
	if err := g.classify(resp, err, true); err != nil {
		return nil, fmt.Errorf("ledger: stats: %w", err)
	}
	return &stats, nil
}

// classify maps transport and HTTP outcomes onto the ledger error taxonomy.
// Transport errors (including timeouts) are always ErrUnavailable: the
// request may have reached the chain even though no response arrived.
func (g *Gateway) classify(resp *resty.Response, err error, notFoundIs404 bool) error {
	if err != nil {
		g.logger.Warn().Err(err).Msg("ledger gateway unreachable")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsSuccess() {
		return nil
	}
	code := resp.StatusCode()
	msg := http.StatusText(code)
	if gwErr, ok := resp.Error().(*gatewayError); ok && gwErr.Message != "" {
		msg = gwErr.Message
	}
	switch {
	case code == http.StatusNotFound && notFoundIs404:
		return ErrNotFound
	case code >= 500:
		return fmt.Errorf("%w: gateway %d: %s", ErrUnavailable, code, msg)
	default:
		return fmt.Errorf("%w: gateway %d: %s", ErrRejected, code, msg)
	}
}

var _ Client = (*Gateway)(nil)
