package entries

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Default prices applied to bulk-uploaded entries when the upload request
// does not override them.
var (
	DefaultPriceFull  = decimal.NewFromFloat(15.00)
	DefaultPriceShort = decimal.NewFromFloat(12.00)
)

const (
	fullFormatFields  = 17
	shortFormatFields = 8
)

// ParseBulkData splits a bulk-upload payload into entries, one per line.
// Lines are pipe-separated: 17+ fields is the full layout, 8+ the short
// layout. Lines that match neither are skipped. defaultPrice overrides the
// per-format default when positive.
func ParseBulkData(data string, defaultPrice decimal.Decimal) []*Entry {
	var parsed []*Entry

	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, err := ParseBulkLine(line, defaultPrice)
		if err != nil {
			continue
		}

		parsed = append(parsed, entry)
	}

	return parsed
}

// ParseBulkLine parses a single pipe-separated upload line.
func ParseBulkLine(line string, defaultPrice decimal.Decimal) (*Entry, error) {
	parts := strings.Split(line, "|")

	for i := range parts {
		parts[i] = cleanField(parts[i])
	}

	if len(parts) >= fullFormatFields {
		return parseFullLine(parts, defaultPrice)
	}

	return parseShortLine(parts, defaultPrice)
}

func parseFullLine(parts []string, defaultPrice decimal.Decimal) (*Entry, error) {
	card := Card{
		Number:         field(parts, 0),
		ExpiryMonth:    field(parts, 1),
		ExpiryYear:     field(parts, 2),
		CVV:            field(parts, 3),
		CardholderName: field(parts, 4),
		BankName:       field(parts, 5),
		Brand:          field(parts, 6),
		Level:          field(parts, 7),
		Type:           field(parts, 8),
		AddressLine1:   field(parts, 9),
		AddressLine2:   field(parts, 10),
		City:           field(parts, 11),
		State:          field(parts, 12),
		Country:        field(parts, 13),
		ZipCode:        field(parts, 14),
		Phone:          field(parts, 15),
		Email:          field(parts, 16),
		AdditionalInfo: field(parts, 17),
	}

	return NewEntry(card, DataFormatFull, priceOrDefault(defaultPrice, DefaultPriceFull))
}

func parseShortLine(parts []string, defaultPrice decimal.Decimal) (*Entry, error) {
	if len(parts) < shortFormatFields {
		return nil, ErrEntryCardNumberEmpty
	}

	brand := field(parts, 8)
	if brand == "" {
		brand = "Unknown"
	}

	card := Card{
		Number:         field(parts, 0),
		ExpiryMonth:    field(parts, 1),
		ExpiryYear:     field(parts, 2),
		CVV:            field(parts, 3),
		AddressLine1:   field(parts, 4),
		City:           field(parts, 5),
		State:          field(parts, 6),
		ZipCode:        field(parts, 7),
		Brand:          brand,
		CardholderName: "Unknown",
		BankName:       "Unknown Bank",
		Country:        "UNITED STATES",
	}

	return NewEntry(card, DataFormatShort, priceOrDefault(defaultPrice, DefaultPriceShort))
}

func priceOrDefault(price, fallback decimal.Decimal) decimal.Decimal {
	if price.IsPositive() {
		return price
	}

	return fallback
}

func field(parts []string, i int) string {
	if i >= len(parts) {
		return ""
	}

	return parts[i]
}

// Source data marks absent fields as "None".
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if s == "None" {
		return ""
	}

	return s
}
