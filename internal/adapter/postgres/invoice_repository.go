package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"sponsorhub/internal/core/apperr"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

const invoiceColumns = `id, sponsor_id, total, status, due_date, created_at, paid_at`

func scanInvoice(row pgx.CollectableRow) (domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(&inv.ID, &inv.SponsorID, &inv.Total, &inv.Status, &inv.DueDate, &inv.CreatedAt, &inv.PaidAt)
	return inv, err
}

// CreateInvoice relies on invoice_campaigns_open_uniq to reject campaigns
// already carried by an open invoice.
func (s *Store) CreateInvoice(ctx context.Context, inv domain.Invoice) error {
	err := s.inTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO invoices (`+invoiceColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			inv.ID, inv.SponsorID, inv.Total, inv.Status, inv.DueDate, inv.CreatedAt, inv.PaidAt)
		if err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for i, l := range inv.Lines {
			batch.Queue(`INSERT INTO invoice_campaigns
    (invoice_id, campaign_id, position, pricing_model, rate, quantity, amount, billed_from, billed_until, open)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				inv.ID, l.CampaignID, i, l.PricingModel, l.Rate, l.Quantity, l.Amount, l.BilledFrom, l.BilledUntil,
				inv.Status.Open())
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	return translate("create invoice", err)
}

func (s *Store) TransitionInvoice(ctx context.Context, id string, from []domain.InvoiceStatus, to domain.InvoiceStatus, at time.Time) (domain.Invoice, error) {
	var stale bool
	err := s.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var paidAt *time.Time
		if to == domain.InvoicePaid {
			paidAt = &at
		}
		tag, err := tx.Exec(ctx, `UPDATE invoices SET status=$3, paid_at=COALESCE($4, paid_at)
WHERE id=$1 AND status = ANY($2)`, id, strs(from), to, paidAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			stale = true
			return nil
		}
		if !to.Open() {
			_, err = tx.Exec(ctx, `UPDATE invoice_campaigns SET open = FALSE WHERE invoice_id=$1`, id)
		}
		return err
	})
	if err != nil {
		return domain.Invoice{}, translate("transition invoice", err)
	}
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if stale {
		return inv, port.ErrStale
	}
	return inv, nil
}

func (s *Store) MarkOverdue(ctx context.Context, now time.Time) ([]domain.Invoice, error) {
	rows, _ := s.pool.Query(ctx, `WITH changed AS (
    UPDATE invoices SET status = 'overdue'
    WHERE status IN ('draft', 'sent') AND due_date < $1
    RETURNING `+invoiceColumns+`
)
SELECT `+invoiceColumns+` FROM changed ORDER BY created_at, id`, now)
	changed, err := pgx.CollectRows(rows, scanInvoice)
	if err != nil {
		return nil, translate("mark overdue", err)
	}
	if err := s.attachLines(ctx, changed); err != nil {
		return nil, err
	}
	return changed, nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	rows, _ := s.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id)
	inv, err := pgx.CollectExactlyOneRow(rows, scanInvoice)
	if err != nil {
		return domain.Invoice{}, notFound("get invoice", "invoice", id, err)
	}
	list := []domain.Invoice{inv}
	if err := s.attachLines(ctx, list); err != nil {
		return domain.Invoice{}, err
	}
	return list[0], nil
}

func (s *Store) ListInvoices(ctx context.Context, f port.InvoiceFilter) ([]domain.Invoice, error) {
	var w filter
	if f.SponsorID != "" {
		w.add("i.sponsor_id = $%[1]d", f.SponsorID)
	}
	if len(f.Statuses) > 0 {
		w.add("i.status = ANY($%[1]d)", strs(f.Statuses))
	}
	if f.CampaignID != "" {
		w.add("EXISTS (SELECT 1 FROM invoice_campaigns x WHERE x.invoice_id = i.id AND x.campaign_id = $%[1]d)", f.CampaignID)
	}
	rows, _ := s.pool.Query(ctx, `SELECT i.id, i.sponsor_id, i.total, i.status, i.due_date, i.created_at, i.paid_at
FROM invoices i`+w.where()+` ORDER BY i.created_at, i.id`, w.args...)
	list, err := pgx.CollectRows(rows, scanInvoice)
	if err != nil {
		return nil, translate("list invoices", err)
	}
	if err := s.attachLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachLines loads the frozen lines for every invoice in one query.
func (s *Store) attachLines(ctx context.Context, list []domain.Invoice) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	index := make(map[string]int, len(list))
	for i, inv := range list {
		ids[i] = inv.ID
		index[inv.ID] = i
	}
	rows, _ := s.pool.Query(ctx, `SELECT invoice_id, campaign_id, pricing_model, rate, quantity, amount, billed_from, billed_until
FROM invoice_campaigns WHERE invoice_id = ANY($1) ORDER BY invoice_id, position`, ids)
	var invoiceID string
	var l domain.InvoiceLine
	scans := []any{&invoiceID, &l.CampaignID, &l.PricingModel, &l.Rate, &l.Quantity, &l.Amount, &l.BilledFrom, &l.BilledUntil}
	_, err := pgx.ForEachRow(rows, scans, func() error {
		i, ok := index[invoiceID]
		if !ok {
			return errors.New("line for unknown invoice " + invoiceID)
		}
		list[i].Lines = append(list[i].Lines, l)
		// l is reused for every row; the next scan must not write through
		// the pointer just stored.
		l.BilledFrom = nil
		return nil
	})
	if err != nil {
		return apperr.Storage("load invoice lines", err)
	}
	return nil
}
