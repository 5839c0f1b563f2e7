// Package bigquery persists extracted transactions in the expenses dataset.
package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/yaldosari/sms-expense-tracker/internal/domain"
)

const amountPrecision = 2

// Store reads and writes the expenses.transactions table.
type Store struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	table     string
}

// NewStore creates the BigQuery client using ambient credentials.
func NewStore(ctx context.Context, projectID, datasetID, table string) (*Store, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: bigquery client: %w", err)
	}
	return NewStoreWithClient(client, projectID, datasetID, table), nil
}

// NewStoreWithClient wraps an existing client, used by tests and by callers
// sharing one client across stores.
func NewStoreWithClient(client *bigquery.Client, projectID, datasetID, table string) *Store {
	return &Store{client: client, projectID: projectID, datasetID: datasetID, table: table}
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

type transactionRow struct {
	TransactionID      string     `bigquery:"transaction_id"`
	Amount             *big.Rat   `bigquery:"amount"`
	Currency           string     `bigquery:"currency"`
	MerchantRaw        string     `bigquery:"merchant_raw"`
	MerchantNormalized string     `bigquery:"merchant_normalized"`
	Category           string     `bigquery:"category"`
	CategorySource     string     `bigquery:"category_source"`
	Sender             string     `bigquery:"sender"`
	TransactionDate    civil.Date `bigquery:"transaction_date"`
	OccurredTS         time.Time  `bigquery:"occurred_ts"`
	TransactionType    string     `bigquery:"transaction_type"`
	SourceMessageRef   string     `bigquery:"source_message_ref"`
	CreatedTS          time.Time  `bigquery:"created_ts"`
}

func toRow(tx domain.Transaction) *transactionRow {
	return &transactionRow{
		TransactionID:      tx.ID,
		Amount:             tx.Amount.Rat(),
		Currency:           tx.Currency,
		MerchantRaw:        tx.MerchantRaw,
		MerchantNormalized: tx.MerchantNormalized,
		Category:           tx.Category,
		CategorySource:     string(tx.CategorySource),
		Sender:             tx.Sender,
		TransactionDate:    civil.DateOf(tx.OccurredAt),
		OccurredTS:         tx.OccurredAt,
		TransactionType:    string(tx.Type),
		SourceMessageRef:   tx.SourceMessageRef,
		CreatedTS:          time.Now().UTC(),
	}
}

func fromRow(r *transactionRow) domain.Transaction {
	return domain.Transaction{
		ID:                 r.TransactionID,
		Amount:             decimal.NewFromBigRat(r.Amount, amountPrecision),
		Currency:           r.Currency,
		MerchantRaw:        r.MerchantRaw,
		MerchantNormalized: r.MerchantNormalized,
		Category:           r.Category,
		CategorySource:     domain.Provenance(r.CategorySource),
		Sender:             r.Sender,
		OccurredAt:         r.OccurredTS,
		Type:               domain.TransactionType(r.TransactionType),
		SourceMessageRef:   r.SourceMessageRef,
	}
}

// Insert writes a batch of transactions. Transactions without an ID are
// assigned one.
func (s *Store) Insert(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	rows := make([]*transactionRow, 0, len(txs))
	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		rows = append(rows, toRow(tx))
	}

	table := s.client.DatasetInProject(s.projectID, s.datasetID).Table(s.table)
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("store: inserting %d rows: %w", len(rows), err)
	}
	return nil
}

// ListByCategory returns every transaction currently assigned to category,
// oldest first.
func (s *Store) ListByCategory(ctx context.Context, category string) ([]domain.Transaction, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			amount,
			currency,
			merchant_raw,
			merchant_normalized,
			category,
			category_source,
			sender,
			transaction_date,
			occurred_ts,
			transaction_type,
			source_message_ref,
			created_ts
		FROM %s.%s.%s
		WHERE category = @category
		ORDER BY occurred_ts, created_ts
	`, s.projectID, s.datasetID, s.table))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "category", Value: category},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: query by category: %w", err)
	}

	var txs []domain.Transaction
	for {
		var r transactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store: iter next: %w", err)
		}
		txs = append(txs, fromRow(&r))
	}
	return txs, nil
}

// UpdateCategory rewrites one transaction's category and provenance.
func (s *Store) UpdateCategory(ctx context.Context, id, category string, prov domain.Provenance) error {
	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s.%s.%s
		SET category = @category, category_source = @category_source
		WHERE transaction_id = @transaction_id
	`, s.projectID, s.datasetID, s.table))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "category", Value: category},
		{Name: "category_source", Value: string(prov)},
		{Name: "transaction_id", Value: id},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("store: update category: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("store: update category wait: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("store: update category job: %w", err)
	}
	return nil
}

// ListDistinctMerchants returns every distinct normalized merchant key in the
// table, used to prefill the merchant cache from historical data.
func (s *Store) ListDistinctMerchants(ctx context.Context) ([]string, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT DISTINCT merchant_normalized
		FROM %s.%s.%s
		WHERE merchant_normalized != ''
		ORDER BY merchant_normalized
	`, s.projectID, s.datasetID, s.table))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: query distinct merchants: %w", err)
	}

	var keys []string
	for {
		var row struct {
			MerchantNormalized string `bigquery:"merchant_normalized"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store: iter next: %w", err)
		}
		keys = append(keys, row.MerchantNormalized)
	}
	return keys, nil
}
