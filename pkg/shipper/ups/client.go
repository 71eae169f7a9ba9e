// Package ups provides integration with the UPS REST API.
package ups

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
	"github.com/vendidero/shiptastic-ups/pkg/tokenstore"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const carrierName = "ups"

// Config holds UPS configuration.
type Config struct {
	ClientID      string
	ClientSecret  string
	AccountNumber string
	Sandbox       bool
	BaseURL       string // overrides the sandbox/production host
	UseMock       bool   // When true, uses mock API client
	LabelRotation int    // degrees, multiple of 90
	UserAgent     string

	// Policy controls optional customer data. Nil means DefaultPolicy.
	Policy Policy

	// HTTPClient is used for API and token requests when set.
	HTTPClient *http.Client
}

// Host returns the API host for the configured environment.
func (c Config) Host() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.Sandbox {
		return SandboxURL
	}
	return ProductionURL
}

// Client is the UPS shipper client.
// It implements the shipper.Shipper interface and delegates
// API calls to the underlying APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	assembler *Assembler
	policy    Policy
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new UPS client. Tokens are shared by all clients using the
// same credentials; nil creates an in-memory store for this client alone.
// If cfg.UseMock is true, it uses a mock API client for testing.
func New(cfg Config, tokens TokenSource, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		auth := NewAuthenticator(cfg, cfg.HTTPClient)
		if tokens == nil {
			tokens = tokenstore.New(
				tokenstore.Key(carrierName, cfg.ClientID, cfg.Sandbox),
				tokenstore.NewMemoryCache(nil),
				nil,
				auth,
				tokenstore.WithLogger(logger),
			)
		}
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:       cfg.Host(),
			Tokens:        tokens,
			Authenticator: auth,
			HTTPClient:    cfg.HTTPClient,
			UserAgent:     cfg.UserAgent,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new UPS client with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(carrierName)
	}
	policy := cfg.Policy
	if policy == nil {
		policy = DefaultPolicy{}
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		assembler: NewAssembler(cfg.LabelRotation),
		policy:    policy,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// GetLabel books a label and assembles its PDF. When only the PDF assembly
// fails, the artifact is returned together with an artifact error so the
// booking is not lost.
func (c *Client) GetLabel(ctx context.Context, label *shipper.Label) (*shipper.LabelArtifact, error) {
	ctx, span := c.tracer.Start(ctx, "ups.GetLabel")
	defer span.End()

	if label == nil || label.Shipment == nil {
		return nil, c.fail(span, shipper.NewShipperError(carrierName, "invalid_label", "The label is not attached to a shipment.").
			WithCause(ErrMissingShipment))
	}

	c.logger.Ctx(ctx).Info("Creating UPS label",
		zap.String("shipment", label.Shipment.Number),
		zap.String("product", label.ProductID),
		zap.String("type", string(label.Type)),
		zap.String("destination", label.Shipment.Receiver.CountryCode),
	)

	req, err := BuildRequest(label, c.config, c.policy)
	if err != nil {
		code := "invalid_label"
		msg := "The label could not be prepared for UPS."
		if errors.Is(err, ErrMissingCustomsData) {
			code = "missing_customs_data"
			msg = "Customs data is required for international UPS shipments."
		}
		return nil, c.fail(span, shipper.NewShipperError(carrierName, code, msg).WithCause(err))
	}

	resp, err := c.apiClient.CreateShipment(ctx, req)
	if err != nil {
		c.logger.Ctx(ctx).Error("UPS API error", zap.Error(err))
		return nil, c.fail(span, err)
	}

	booking, err := ParseShipmentResponse(resp)
	if err != nil {
		c.logger.Ctx(ctx).Error("UPS rejected shipment", zap.Error(err))
		return nil, c.fail(span, err)
	}

	label.TrackingNumber = booking.TrackingNumber
	span.SetAttributes(attribute.String("ups.tracking_number", booking.TrackingNumber))

	artifact, err := c.assembler.Assemble(booking)
	if err != nil {
		c.logger.Ctx(ctx).Warn("UPS label booked but PDF assembly failed",
			zap.String("tracking_number", booking.TrackingNumber),
			zap.Error(err),
		)
		return artifact, c.fail(span, err)
	}

	c.logger.Ctx(ctx).Info("UPS label created",
		zap.String("tracking_number", booking.TrackingNumber),
		zap.String("charges", booking.Charges.Amount.String()),
		zap.Int("supplementary_files", len(artifact.SupplementaryFiles)),
	)

	return artifact, nil
}

// AssembleArtifact rebuilds the PDF of an earlier booking without booking
// again.
func (c *Client) AssembleArtifact(booking *shipper.Booking) (*shipper.LabelArtifact, error) {
	return c.assembler.Assemble(booking)
}

// CancelLabel voids a booked label.
func (c *Client) CancelLabel(ctx context.Context, label *shipper.Label) error {
	ctx, span := c.tracer.Start(ctx, "ups.CancelLabel")
	defer span.End()

	if label == nil || label.TrackingNumber == "" {
		return c.fail(span, cancelError())
	}

	c.logger.Ctx(ctx).Info("Cancelling UPS label",
		zap.String("tracking_number", label.TrackingNumber),
	)
	span.SetAttributes(attribute.String("ups.tracking_number", label.TrackingNumber))

	resp, err := c.apiClient.VoidShipment(ctx, label.TrackingNumber)
	if err != nil {
		c.logger.Ctx(ctx).Error("UPS API error", zap.Error(err))
		return c.fail(span, err)
	}

	if err := ParseVoidResponse(resp); err != nil {
		return c.fail(span, err)
	}
	return nil
}

// TestConnection reports whether the credentials are accepted.
func (c *Client) TestConnection(ctx context.Context) bool {
	ctx, span := c.tracer.Start(ctx, "ups.TestConnection")
	defer span.End()

	if err := c.apiClient.TestConnection(ctx); err != nil {
		c.logger.Ctx(ctx).Warn("UPS connection test failed", zap.Error(err))
		_ = c.fail(span, err)
		return false
	}
	return true
}

// FindPickupPoints returns Access Points near address, closest first.
func (c *Client) FindPickupPoints(ctx context.Context, address shipper.Address, limit int) ([]shipper.PickupPoint, error) {
	ctx, span := c.tracer.Start(ctx, "ups.FindPickupPoints")
	defer span.End()

	c.logger.Ctx(ctx).Info("Searching UPS access points",
		zap.String("postal_code", address.PostalCode),
		zap.String("country", address.CountryCode),
		zap.Int("limit", limit),
	)

	resp, err := c.apiClient.LocateAccessPoints(ctx, BuildLocatorRequest(address, limit, ""))
	if err != nil {
		c.logger.Ctx(ctx).Error("UPS API error", zap.Error(err))
		return nil, c.fail(span, err)
	}

	points := ParsePickupPoints(resp)
	if limit > 0 && len(points) > limit {
		points = points[:limit]
	}
	span.SetAttributes(attribute.Int("ups.pickup_points", len(points)))
	return points, nil
}

// FindPickupPointByID looks up one Access Point. It returns nil without error
// when UPS does not know the id.
func (c *Client) FindPickupPointByID(ctx context.Context, id string, address shipper.Address) (*shipper.PickupPoint, error) {
	ctx, span := c.tracer.Start(ctx, "ups.FindPickupPointByID")
	defer span.End()

	if id == "" {
		return nil, nil
	}

	resp, err := c.apiClient.LocateAccessPoints(ctx, BuildLocatorRequest(address, 1, id))
	if err != nil {
		if shipperErr, ok := locatorRejection(err); ok {
			// UPS answers an unknown id with a "no locations found" error.
			c.logger.Ctx(ctx).Debug("UPS access point not found",
				zap.String("id", id),
				zap.String("code", shipperErr.Code),
			)
			return nil, nil
		}
		return nil, c.fail(span, err)
	}

	for _, p := range ParsePickupPoints(resp) {
		if strings.EqualFold(p.ID, id) {
			return &p, nil
		}
	}
	return nil, nil
}

// locatorRejection reports whether err is the locator rejecting the query
// itself. Server errors and throttling are outages, not unknown ids.
func locatorRejection(err error) (*shipper.ShipperError, bool) {
	var shipperErr *shipper.ShipperError
	if !errors.As(err, &shipperErr) || shipperErr.Kind != shipper.KindCarrier {
		return nil, false
	}
	if shipperErr.Retryable || shipperErr.StatusCode >= http.StatusInternalServerError {
		return nil, false
	}
	return shipperErr, true
}

func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var shipperErr *shipper.ShipperError
	if errors.As(err, &shipperErr) {
		span.SetAttributes(
			attribute.String("ups.error_kind", string(shipperErr.Kind)),
			attribute.String("ups.error_code", shipperErr.Code),
			attribute.Int("http.status_code", shipperErr.StatusCode),
		)
	}
	return err
}

// Ensure Client implements shipper.Shipper interface
var _ shipper.Shipper = (*Client)(nil)
