// Package numbering defines human-readable document numbers: a kind prefix,
// the business date and a daily sequence, e.g. GRN-20260118-0003.
package numbering

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DocumentKind identifies a numbered document family
type DocumentKind string

const (
	KindIntend          DocumentKind = "IND"
	KindPurchaseOrder   DocumentKind = "PO"
	KindGoodsReceipt    DocumentKind = "GRN"
	KindPayment         DocumentKind = "PAY"
	KindStockAdjustment DocumentKind = "ADJ"
)

// IsValid returns true if the kind is known
func (k DocumentKind) IsValid() bool {
	switch k {
	case KindIntend, KindPurchaseOrder, KindGoodsReceipt, KindPayment, KindStockAdjustment:
		return true
	}
	return false
}

// String returns the string representation of DocumentKind
func (k DocumentKind) String() string {
	return string(k)
}

// DateLayout is the date component of every document number
const DateLayout = "20060102"

// Sequencer hands out the next daily sequence value for a document kind.
// Values are unique per (kind, day) but may have gaps.
type Sequencer interface {
	Next(ctx context.Context, kind DocumentKind, date time.Time) (int64, error)
}

// SequencerFunc adapts a function to Sequencer
type SequencerFunc func(ctx context.Context, kind DocumentKind, date time.Time) (int64, error)

// Next calls f(ctx, kind, date)
func (f SequencerFunc) Next(ctx context.Context, kind DocumentKind, date time.Time) (int64, error) {
	return f(ctx, kind, date)
}

// Format renders a sequential document number
func Format(kind DocumentKind, date time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", kind, date.Format(DateLayout), seq)
}

// FormatFallback renders a number that does not depend on the daily counter,
// built from the current timestamp and a random suffix.
func FormatFallback(kind DocumentKind, date time.Time, now time.Time, suffix string) string {
	return fmt.Sprintf("%s-%s-%d-%s", kind, date.Format(DateLayout), now.UnixMilli(), strings.ToUpper(suffix))
}

// SequenceDate truncates a business date to the day used as the sequence key
func SequenceDate(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
