package payroll

import (
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The ledger functions never modify their input slice; each returns a new one.

// AddRow appends an empty row with a fresh id.
func AddRow(rows []payroll.LineItemRow) []payroll.LineItemRow {
	out := make([]payroll.LineItemRow, len(rows), len(rows)+1)
	copy(out, rows)
	return append(out, payroll.LineItemRow{ID: uuid.NewString()})
}

// UpdateRow sets one field of the row with the given id. Amounts are
// sanitized to digits, dots and a leading minus so they stay parseable while
// being typed.
func UpdateRow(rows []payroll.LineItemRow, id string, field payroll.LineItemField, value string) []payroll.LineItemRow {
	out := make([]payroll.LineItemRow, len(rows))
	copy(out, rows)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		switch field {
		case payroll.FieldLabel:
			out[i].Label = value
		case payroll.FieldAmount:
			out[i].Amount = sanitizeAmount(value)
		}
	}
	return out
}

// RemoveRow drops the row with the given id; a missing id is not an error.
func RemoveRow(rows []payroll.LineItemRow, id string) []payroll.LineItemRow {
	out := make([]payroll.LineItemRow, 0, len(rows))
	for _, r := range rows {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// Total sums the positive, parseable amounts of labelled rows. Other rows stay
// in the list but do not count. Unlabelled rows are left out on purpose so the
// displayed total agrees with ToClean, which never submits them.
func Total(rows []payroll.LineItemRow) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		if strings.TrimSpace(r.Label) == "" {
			continue
		}
		amount, ok := money.ParseAmount(r.Amount)
		if !ok || !amount.IsPositive() {
			continue
		}
		sum = sum.Add(amount)
	}
	return money.RoundMoney(sum)
}

// ToClean builds the submission payload: rows with a non-blank label and a
// parseable amount, including zero and negative amounts. Unlike Total it does
// not drop non-positive rows.
func ToClean(rows []payroll.LineItemRow) []payroll.LineItem {
	out := make([]payroll.LineItem, 0, len(rows))
	for _, r := range rows {
		label := strings.TrimSpace(r.Label)
		if label == "" {
			continue
		}
		amount, ok := money.ParseAmount(r.Amount)
		if !ok {
			continue
		}
		out = append(out, payroll.LineItem{Label: label, Amount: money.RoundMoney(amount)})
	}
	return out
}

// SeedRows re-hydrates editable rows from saved items with fresh ids.
func SeedRows(items []payroll.LineItem) []payroll.LineItemRow {
	out := make([]payroll.LineItemRow, 0, len(items))
	for _, item := range items {
		out = append(out, payroll.LineItemRow{
			ID:     uuid.NewString(),
			Label:  item.Label,
			Amount: item.Amount.String(),
		})
	}
	return out
}

func sanitizeAmount(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
