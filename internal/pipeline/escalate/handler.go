// internal/pipeline/escalate/handler.go
package escalate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"order-insights/internal/common/logger"
	"order-insights/internal/common/metrics"
	"order-insights/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

const (
	TaskType = "dispatch-escalation"
)

var (
	ErrEscalationDispatchFailed = errors.New("ESCALATION_DISPATCH_FAILED")
	ErrDashboardUpdateFailed    = errors.New("DASHBOARD_UPDATE_FAILED")
)

// Define interfaces for mocking
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type DashboardIndexer interface {
	Index(ctx context.Context, index string, document []byte) error
}

type Dispatcher struct {
	config    *Config
	snsClient SNSService
	dashboard DashboardIndexer
	logger    logger.Logger
}

func NewDispatcher(config *Config, snsClient SNSService, dashboard DashboardIndexer, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		config:    config,
		snsClient: snsClient,
		dashboard: dashboard,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Dispatch sends every action to its sink. Actions are independent: one
// failure does not stop the rest, and the last error is returned for the
// caller to log. Dispatch never feeds back into the ingestion response.
func (d *Dispatcher) Dispatch(ctx context.Context, order *models.EnrichedOrder, actions []models.EscalationAction) error {
	var lastErr error
	for _, action := range actions {
		var err error
		switch action.Type {
		case models.ActionNotifyTeam, models.ActionManualReview:
			err = d.publishNotification(ctx, action)
		case models.ActionUpdateDashboard:
			err = d.indexDashboardDoc(ctx, order, action)
		default:
			err = fmt.Errorf("%w: unknown action type %q", ErrEscalationDispatchFailed, action.Type)
		}

		if err != nil {
			metrics.EscalationsDispatched.WithLabelValues(action.Type, "error").Inc()
			d.logger.Error("escalation action failed", map[string]interface{}{
				"action":      action.Type,
				"orderNumber": action.OrderNumber,
				"error":       err.Error(),
			})
			lastErr = err
			continue
		}

		metrics.EscalationsDispatched.WithLabelValues(action.Type, "success").Inc()
		d.logger.Info("escalation action dispatched", map[string]interface{}{
			"action":      action.Type,
			"orderNumber": action.OrderNumber,
			"riskScore":   action.RiskScore,
		})
	}
	return lastErr
}

func (d *Dispatcher) publishNotification(ctx context.Context, action models.EscalationAction) error {
	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("%w: marshal action: %v", ErrEscalationDispatchFailed, err)
	}

	_, err = d.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(d.config.SNSTopicARN),
		Message:  aws.String(string(payload)),
		Subject:  aws.String(fmt.Sprintf("Order escalation: %s", action.OrderNumber)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"action": {
				DataType:    aws.String("String"),
				StringValue: aws.String(action.Type),
			},
			"priority": {
				DataType:    aws.String("String"),
				StringValue: aws.String(action.Priority),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEscalationDispatchFailed, err)
	}
	return nil
}

func (d *Dispatcher) indexDashboardDoc(ctx context.Context, order *models.EnrichedOrder, action models.EscalationAction) error {
	doc, err := json.Marshal(map[string]interface{}{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"riskScore":   order.RiskScore,
		"priority":    order.Priority,
		"sentiment":   order.Sentiment,
		"summary":     order.Summary,
		"fraudFlags":  order.FraudFlags,
		"escalatedAt": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("%w: marshal document: %v", ErrDashboardUpdateFailed, err)
	}

	if err := d.dashboard.Index(ctx, d.config.DashboardIndex, doc); err != nil {
		return fmt.Errorf("%w: %v", ErrDashboardUpdateFailed, err)
	}
	return nil
}

// ESIndexer is the production DashboardIndexer backed by Elasticsearch.
type ESIndexer struct {
	client *elasticsearch.Client
}

func NewESIndexer(client *elasticsearch.Client) *ESIndexer {
	return &ESIndexer{client: client}
}

func (e *ESIndexer) Index(ctx context.Context, index string, document []byte) error {
	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: uuid.New().String(),
		Body:       bytes.NewReader(document),
	}

	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index response: %s", res.Status())
	}
	return nil
}
