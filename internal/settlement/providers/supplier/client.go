package supplier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"go-settlement/internal/common/supplierprotocol"
	"go-settlement/pkg/logging"
)

var ErrTransactionNotFound = errors.New("no transaction found")

const apiKeyHeader = "X-Api-Key"

type Config struct {
	ServerAddress string
	APIKey        string
	Timeout       time.Duration
}

type Client struct {
	client *resty.Client
	logger *logging.ZapLogger
}

func NewClient(cfg Config, logger *logging.ZapLogger) *Client {
	client := resty.New().
		SetBaseURL(cfg.ServerAddress).
		SetHeader(apiKeyHeader, cfg.APIKey)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Client{
		client: client,
		logger: logger,
	}
}

func (c *Client) GetTransaction(ctx context.Context, refID string) (supplierprotocol.Transaction, error) {
	resp, err := c.client.
		R().
		SetContext(ctx).
		SetPathParam("ref", refID).
		Get("/api/transactions/{ref}")
	if err != nil {
		return supplierprotocol.Transaction{}, fmt.Errorf("get request failed: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusNotFound:
		c.logger.DebugCtx(ctx, "No transaction found", zap.String("refID", refID))
		return supplierprotocol.Transaction{}, ErrTransactionNotFound
	case http.StatusOK:
		var envelope supplierprotocol.Envelope
		if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
			c.logger.ErrorCtx(ctx, "Error unmarshalling transaction response", zap.Error(err))
			return supplierprotocol.Transaction{}, fmt.Errorf("error unmarshalling transaction response: %w", err)
		}
		c.logger.DebugCtx(ctx, "Transaction found", zap.Any("transaction", envelope.Data))
		return envelope.Data, nil
	default:
		return supplierprotocol.Transaction{}, fmt.Errorf("unexpected status code %v", resp.StatusCode())
	}
}
