package entries

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	entry, err := NewEntry(Card{Number: "4111111111111111"}, DataFormatFull, decimal.NewFromFloat(19.99))
	require.NoError(t, err)

	assert.Equal(t, StatusAvailable, entry.Status())
	assert.Equal(t, DataFormatFull, entry.DataFormat())
	assert.True(t, entry.Price().Equal(decimal.NewFromFloat(19.99)))
}

func TestNewEntry_Validation(t *testing.T) {
	_, err := NewEntry(Card{}, DataFormatFull, decimal.NewFromFloat(10))
	assert.ErrorIs(t, err, ErrEntryCardNumberEmpty)

	_, err = NewEntry(Card{Number: "4111111111111111"}, DataFormatFull, decimal.NewFromFloat(-1))
	assert.ErrorIs(t, err, ErrEntryPriceNegative)
}

func TestValidateStatus(t *testing.T) {
	for _, status := range []Status{StatusAvailable, StatusReserved, StatusSold} {
		assert.NoError(t, ValidateStatus(status))
	}

	assert.ErrorIs(t, ValidateStatus("archived"), ErrEntryStatusInvalid)
}

const fullLine = "4111111111111111|12|2027|123|John Doe|Chase Bank|Visa|Platinum|Credit|" +
	"1 Main St|Apt 2|Springfield|IL|UNITED STATES|62704|555-0100|john@example.com|notes"

const shortLine = "5500005555555559|06|2026|456|9 Oak Ave|Portland|OR|97201"

func TestParseBulkLine_FullFormat(t *testing.T) {
	entry, err := ParseBulkLine(fullLine, decimal.Zero)
	require.NoError(t, err)

	card := entry.Card()
	assert.Equal(t, "4111111111111111", card.Number)
	assert.Equal(t, "John Doe", card.CardholderName)
	assert.Equal(t, "Chase Bank", card.BankName)
	assert.Equal(t, "Visa", card.Brand)
	assert.Equal(t, "Platinum", card.Level)
	assert.Equal(t, "Credit", card.Type)
	assert.Equal(t, "UNITED STATES", card.Country)
	assert.Equal(t, "62704", card.ZipCode)
	assert.Equal(t, DataFormatFull, entry.DataFormat())
	assert.True(t, entry.Price().Equal(DefaultPriceFull))
}

func TestParseBulkLine_ShortFormat(t *testing.T) {
	entry, err := ParseBulkLine(shortLine, decimal.Zero)
	require.NoError(t, err)

	card := entry.Card()
	assert.Equal(t, "5500005555555559", card.Number)
	assert.Equal(t, "Unknown", card.CardholderName)
	assert.Equal(t, "Unknown Bank", card.BankName)
	assert.Equal(t, "Unknown", card.Brand)
	assert.Equal(t, "UNITED STATES", card.Country)
	assert.Equal(t, DataFormatShort, entry.DataFormat())
	assert.True(t, entry.Price().Equal(DefaultPriceShort))
}

func TestParseBulkLine_NoneFieldsCleared(t *testing.T) {
	line := strings.ReplaceAll(fullLine, "Apt 2", "None")

	entry, err := ParseBulkLine(line, decimal.Zero)
	require.NoError(t, err)
	assert.Empty(t, entry.Card().AddressLine2)
}

func TestParseBulkLine_PriceOverride(t *testing.T) {
	entry, err := ParseBulkLine(fullLine, decimal.NewFromFloat(30))
	require.NoError(t, err)
	assert.True(t, entry.Price().Equal(decimal.NewFromFloat(30)))
}

func TestParseBulkData(t *testing.T) {
	data := fullLine + "\n\n" + shortLine + "\nnot|enough|fields\n"

	parsed := ParseBulkData(data, decimal.Zero)
	require.Len(t, parsed, 2)
	assert.Equal(t, DataFormatFull, parsed[0].DataFormat())
	assert.Equal(t, DataFormatShort, parsed[1].DataFormat())
}

func TestParseBulkData_Empty(t *testing.T) {
	assert.Empty(t, ParseBulkData("", decimal.Zero))
	assert.Empty(t, ParseBulkData("\n \n", decimal.Zero))
}
