package app

import (
	"context"
	"fmt"

	"contractor-card-service/internal/domain"
)

// CardAllocator proposes the next sequential card number for a prefix.
//
// The proposal is not a reservation: two callers reading the same state get
// the same number, and the store's unique index on card_no decides who wins.
type CardAllocator struct {
	source CardNumberSource
}

func NewCardAllocator(source CardNumberSource) *CardAllocator {
	return &CardAllocator{source: source}
}

// Next returns prefix followed by one more than the highest issued counter.
// A failed lookup is returned as an error rather than guessing a number.
func (a *CardAllocator) Next(ctx context.Context, prefix string) (string, error) {
	existing, err := a.source.CardNumbersWithPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("lookup card numbers for %q: %w", prefix, err)
	}
	return NextCardNumber(prefix, existing), nil
}

// NextCardNumber picks the numeric maximum among existing card numbers under
// prefix and formats its successor. Entries whose remainder is not purely
// numeric are ignored, so "ABxyz" or "ABC001" never affect prefix "AB".
//
// Ordering is numeric on the parsed counter: "AB1000" outranks "AB2" even
// though it sorts lower as a string.
func NextCardNumber(prefix string, existing []string) string {
	highest := 0
	for _, cardNo := range existing {
		if n, ok := domain.CardSuffix(cardNo, prefix); ok && n > highest {
			highest = n
		}
	}
	return domain.FormatCardNo(prefix, highest+1)
}
