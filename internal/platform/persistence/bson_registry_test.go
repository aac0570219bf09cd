package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/tradeworks-payout-ledger/internal/domain/audit"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

func TestBSONRegistry_TransitionRecordAmountRoundTrip(t *testing.T) {
	registry := BSONRegistry()

	record := audit.NewTransitionRecord(
		audit.EntityKindEligibility,
		uuid.New(),
		uuid.New(),
		string(shared.EligibilityStatusReady),
		string(shared.EligibilityStatusPaid),
		decimal.RequireFromString("600.00"),
		"finance.ops",
		"",
		"corr1",
	)

	raw, err := bson.MarshalWithRegistry(registry, record)
	require.NoError(t, err)

	amount := bson.Raw(raw).Lookup("amount")
	assert.Equal(t, bsontype.Decimal128, amount.Type, "amount should be stored as Decimal128, not an empty document")

	var back audit.TransitionRecord
	require.NoError(t, bson.UnmarshalWithRegistry(registry, raw, &back))

	assert.True(t, back.Amount.Equal(record.Amount),
		"amount %s decoded as %s", record.Amount.String(), back.Amount.String())
	assert.Equal(t, record.EventID, back.EventID)
	assert.Equal(t, record.ContractorID, back.ContractorID)
	assert.Equal(t, record.FromStatus, back.FromStatus)
	assert.Equal(t, record.ToStatus, back.ToStatus)
}

func TestBSONRegistry_DecimalDecodeFromString(t *testing.T) {
	registry := BSONRegistry()

	doc, err := bson.Marshal(bson.M{"amount": "123.45"})
	require.NoError(t, err)

	var out struct {
		Amount decimal.Decimal `bson:"amount"`
	}
	require.NoError(t, bson.UnmarshalWithRegistry(registry, doc, &out))
	assert.True(t, out.Amount.Equal(decimal.RequireFromString("123.45")))
}

func TestBSONRegistry_FractionalAmountsStayExact(t *testing.T) {
	registry := BSONRegistry()

	for _, amount := range []string{"0.01", "99999999.99", "250"} {
		in := struct {
			Amount decimal.Decimal `bson:"amount"`
		}{Amount: decimal.RequireFromString(amount)}

		raw, err := bson.MarshalWithRegistry(registry, in)
		require.NoError(t, err)

		var out struct {
			Amount decimal.Decimal `bson:"amount"`
		}
		require.NoError(t, bson.UnmarshalWithRegistry(registry, raw, &out))
		assert.True(t, out.Amount.Equal(in.Amount), "amount %s decoded as %s", amount, out.Amount.String())
	}
}
