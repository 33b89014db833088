package rds

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/rdsdataservice"
	"github.com/aws/aws-sdk-go/service/rdsdataservice/rdsdataserviceiface"

	"tenantops/lib/tenant"
)

// Config identifies the Aurora cluster the Data API proxies to.
type Config struct {
	ResourceArn string
	SecretArn   string
	Database    string
}

// Client executes parameterized statements against the cluster through
// the Data API, optionally inside an explicit transaction.
type Client struct {
	api rdsdataserviceiface.RDSDataServiceAPI
	cfg Config
}

func New(api rdsdataserviceiface.RDSDataServiceAPI, cfg Config) *Client {
	return &Client{api: api, cfg: cfg}
}

// Begin opens a transaction and returns its id.
func (c *Client) Begin(ctx context.Context) (string, error) {
	out, err := c.api.BeginTransactionWithContext(ctx, &rdsdataservice.BeginTransactionInput{
		ResourceArn: aws.String(c.cfg.ResourceArn),
		SecretArn:   aws.String(c.cfg.SecretArn),
		Database:    aws.String(c.cfg.Database),
	})
	if err != nil {
		return "", fmt.Errorf("%w: begin transaction: %s", tenant.ErrExternalService, err.Error())
	}
	return aws.StringValue(out.TransactionId), nil
}

func (c *Client) Commit(ctx context.Context, txID string) error {
	_, err := c.api.CommitTransactionWithContext(ctx, &rdsdataservice.CommitTransactionInput{
		ResourceArn:   aws.String(c.cfg.ResourceArn),
		SecretArn:     aws.String(c.cfg.SecretArn),
		TransactionId: aws.String(txID),
	})
	if err != nil {
		return fmt.Errorf("%w: commit transaction: %s", tenant.ErrExternalService, err.Error())
	}
	return nil
}

func (c *Client) Rollback(ctx context.Context, txID string) error {
	_, err := c.api.RollbackTransactionWithContext(ctx, &rdsdataservice.RollbackTransactionInput{
		ResourceArn:   aws.String(c.cfg.ResourceArn),
		SecretArn:     aws.String(c.cfg.SecretArn),
		TransactionId: aws.String(txID),
	})
	if err != nil {
		return fmt.Errorf("%w: rollback transaction: %s", tenant.ErrExternalService, err.Error())
	}
	return nil
}

// Result wraps one statement's outcome. Rows are only present when the
// statement produced records.
type Result struct {
	formatted string
	updated   int64
}

// NewResult builds a Result from raw values, for tests.
func NewResult(formattedRecords string, recordsUpdated int64) *Result {
	return &Result{formatted: formattedRecords, updated: recordsUpdated}
}

// RecordsUpdated reports the number of rows a mutating statement
// touched.
func (r *Result) RecordsUpdated() int64 {
	return r.updated
}

// Decode unmarshals the JSON-formatted records into dest. A statement
// that returned no record set fails fast.
func (r *Result) Decode(dest interface{}) error {
	if r.formatted == "" {
		return fmt.Errorf("%w: statement returned no formatted records", tenant.ErrExternalService)
	}
	if err := json.Unmarshal([]byte(r.formatted), dest); err != nil {
		return fmt.Errorf("decoding formatted records: %w", err)
	}
	return nil
}

// Execute runs one statement. txID and schema may be empty; params are
// mapped by Go type onto Data API fields.
func (c *Client) Execute(ctx context.Context, txID, schema, sql string, params map[string]interface{}) (*Result, error) {
	input := &rdsdataservice.ExecuteStatementInput{
		ResourceArn:     aws.String(c.cfg.ResourceArn),
		SecretArn:       aws.String(c.cfg.SecretArn),
		Database:        aws.String(c.cfg.Database),
		Sql:             aws.String(sql),
		FormatRecordsAs: aws.String("JSON"),
		Parameters:      sqlParameters(params),
	}
	if txID != "" {
		input.TransactionId = aws.String(txID)
	}
	if schema != "" {
		input.Schema = aws.String(schema)
	}

	out, err := c.api.ExecuteStatementWithContext(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: execute statement: %s", tenant.ErrExternalService, err.Error())
	}
	return &Result{
		formatted: aws.StringValue(out.FormattedRecords),
		updated:   aws.Int64Value(out.NumberOfRecordsUpdated),
	}, nil
}

func sqlParameters(params map[string]interface{}) []*rdsdataservice.SqlParameter {
	out := make([]*rdsdataservice.SqlParameter, 0, len(params))
	for name, value := range params {
		p := &rdsdataservice.SqlParameter{Name: aws.String(name)}
		switch v := value.(type) {
		case nil:
			p.Value = &rdsdataservice.Field{IsNull: aws.Bool(true)}
		case string:
			p.Value = &rdsdataservice.Field{StringValue: aws.String(v)}
		case int:
			p.Value = &rdsdataservice.Field{LongValue: aws.Int64(int64(v))}
		case int64:
			p.Value = &rdsdataservice.Field{LongValue: aws.Int64(v)}
		case float64:
			p.Value = &rdsdataservice.Field{DoubleValue: aws.Float64(v)}
		case bool:
			p.Value = &rdsdataservice.Field{BooleanValue: aws.Bool(v)}
		default:
			p.Value = &rdsdataservice.Field{StringValue: aws.String(fmt.Sprint(v))}
		}
		out = append(out, p)
	}
	return out
}
