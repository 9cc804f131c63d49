// Package sink persists generated datasets and derived statements to
// PostgreSQL for downstream querying.
package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/misa-sim/misa-sim/internal/dataset"
	"github.com/misa-sim/misa-sim/internal/ledger"
	"github.com/misa-sim/misa-sim/internal/platform/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS misa_documents (
	run_id         uuid NOT NULL,
	doc_no         text NOT NULL,
	kind           text NOT NULL,
	doc_date       date NOT NULL,
	partner_code   text NOT NULL,
	partner_name   text NOT NULL,
	warehouse_code text NOT NULL,
	net_amount     bigint NOT NULL,
	vat_amount     bigint NOT NULL,
	gross_amount   bigint NOT NULL,
	PRIMARY KEY (run_id, doc_no)
);
CREATE TABLE IF NOT EXISTS misa_document_lines (
	run_id     uuid NOT NULL,
	doc_no     text NOT NULL,
	line_no    int NOT NULL,
	item_code  text NOT NULL,
	quantity   bigint NOT NULL,
	unit_price bigint NOT NULL,
	vat_code   text NOT NULL,
	line_net   bigint NOT NULL,
	line_vat   bigint NOT NULL,
	PRIMARY KEY (run_id, doc_no, line_no)
);
CREATE TABLE IF NOT EXISTS misa_settlements (
	run_id       uuid NOT NULL,
	ref_no       text NOT NULL,
	ref_date     date NOT NULL,
	doc_no       text NOT NULL,
	partner_code text NOT NULL,
	amount       bigint NOT NULL,
	account      text NOT NULL,
	PRIMARY KEY (run_id, ref_no)
);
CREATE TABLE IF NOT EXISTS misa_journal (
	run_id       uuid NOT NULL,
	seq          int NOT NULL,
	entry_date   date NOT NULL,
	doc_no       text NOT NULL,
	account_code text NOT NULL,
	side         text NOT NULL,
	amount       bigint NOT NULL,
	description  text NOT NULL,
	partner_code text NOT NULL,
	item_code    text NOT NULL,
	cost_center  text NOT NULL,
	PRIMARY KEY (run_id, seq)
);
CREATE TABLE IF NOT EXISTS misa_trial_balance (
	run_id       uuid NOT NULL,
	period       text NOT NULL,
	account_code text NOT NULL,
	debit        bigint NOT NULL,
	credit       bigint NOT NULL,
	PRIMARY KEY (run_id, period, account_code)
);
`

// Postgres bulk-loads a generated run into the misa_* tables.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres wires a sink against the given pool.
func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) *Postgres {
	return &Postgres{pool: pool, logger: logger}
}

// Migrate creates the sink tables when missing.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("sink: migrate: %w", err)
	}
	return nil
}

// Export writes one complete run. Rows for the same run are replaced so
// re-running a seed stays idempotent.
func (s *Postgres) Export(ctx context.Context, ds *dataset.Dataset, journal ledger.Journal, tb []ledger.TrialBalanceRow) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		for _, table := range []string{"misa_documents", "misa_document_lines", "misa_settlements", "misa_journal", "misa_trial_balance"} {
			if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE run_id = $1", table), ds.RunID); err != nil {
				return fmt.Errorf("sink: clear %s: %w", table, err)
			}
		}
		if err := s.copyDocuments(ctx, tx, ds); err != nil {
			return err
		}
		if err := s.copySettlements(ctx, tx, ds); err != nil {
			return err
		}
		if err := s.copyJournal(ctx, tx, ds, journal); err != nil {
			return err
		}
		if err := s.copyTrialBalance(ctx, tx, ds, tb); err != nil {
			return err
		}
		s.logger.Info("exported run",
			slog.String("run_id", ds.RunID.String()),
			slog.Int("documents", len(ds.Documents)),
			slog.Int("journal_entries", len(journal.Entries)),
		)
		return nil
	})
}

func (s *Postgres) copyDocuments(ctx context.Context, tx pgx.Tx, ds *dataset.Dataset) error {
	docRows := make([][]any, 0, len(ds.Documents))
	var lineRows [][]any
	for _, doc := range ds.Documents {
		docRows = append(docRows, []any{
			ds.RunID, doc.DocNo, string(doc.Kind), doc.DocDate, doc.PartnerCode,
			doc.PartnerName, doc.WarehouseCode, doc.NetAmount, doc.VATAmount, doc.GrossAmount,
		})
		for _, ln := range doc.Lines {
			lineRows = append(lineRows, []any{
				ds.RunID, ln.DocNo, ln.LineNo, ln.ItemCode, ln.Quantity,
				ln.UnitPrice, ln.VATCode, ln.LineNet, ln.LineVAT,
			})
		}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"misa_documents"},
		[]string{"run_id", "doc_no", "kind", "doc_date", "partner_code", "partner_name", "warehouse_code", "net_amount", "vat_amount", "gross_amount"},
		pgx.CopyFromRows(docRows),
	); err != nil {
		return fmt.Errorf("sink: copy documents: %w", err)
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"misa_document_lines"},
		[]string{"run_id", "doc_no", "line_no", "item_code", "quantity", "unit_price", "vat_code", "line_net", "line_vat"},
		pgx.CopyFromRows(lineRows),
	); err != nil {
		return fmt.Errorf("sink: copy document lines: %w", err)
	}
	return nil
}

func (s *Postgres) copySettlements(ctx context.Context, tx pgx.Tx, ds *dataset.Dataset) error {
	rows := make([][]any, 0, len(ds.Settlements))
	for _, st := range ds.Settlements {
		rows = append(rows, []any{
			ds.RunID, st.RefNo, st.RefDate, st.RefDocumentNo, st.PartnerCode,
			st.Amount, st.SettlementAccount,
		})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"misa_settlements"},
		[]string{"run_id", "ref_no", "ref_date", "doc_no", "partner_code", "amount", "account"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("sink: copy settlements: %w", err)
	}
	return nil
}

func (s *Postgres) copyJournal(ctx context.Context, tx pgx.Tx, ds *dataset.Dataset, journal ledger.Journal) error {
	rows := make([][]any, 0, len(journal.Entries))
	for i, e := range journal.Entries {
		rows = append(rows, []any{
			ds.RunID, i + 1, e.EntryDate, e.DocumentNo, e.AccountCode,
			string(e.Side), e.Amount, e.Description, e.PartnerCode, e.ItemCode, e.CostCenter,
		})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"misa_journal"},
		[]string{"run_id", "seq", "entry_date", "doc_no", "account_code", "side", "amount", "description", "partner_code", "item_code", "cost_center"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("sink: copy journal: %w", err)
	}
	return nil
}

func (s *Postgres) copyTrialBalance(ctx context.Context, tx pgx.Tx, ds *dataset.Dataset, tb []ledger.TrialBalanceRow) error {
	rows := make([][]any, 0, len(tb))
	for _, row := range tb {
		rows = append(rows, []any{
			ds.RunID, row.Month.String(), row.AccountCode, row.Debit, row.Credit,
		})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"misa_trial_balance"},
		[]string{"run_id", "period", "account_code", "debit", "credit"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("sink: copy trial balance: %w", err)
	}
	return nil
}
