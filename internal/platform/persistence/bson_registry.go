package persistence

import (
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// BSONRegistry is the codec registry for the MongoDB client. It extends the
// driver's default registry with a decimal.Decimal codec; the default codecs
// would flatten a decimal's unexported fields into an empty document and the
// amount would read back as zero.
func BSONRegistry() *bsoncodec.Registry {
	registry := bson.NewRegistry()
	registry.RegisterTypeEncoder(decimalType, bsoncodec.ValueEncoderFunc(encodeDecimal))
	registry.RegisterTypeDecoder(decimalType, bsoncodec.ValueDecoderFunc(decodeDecimal))
	return registry
}

// encodeDecimal stores decimal.Decimal values as Decimal128 so amounts stay
// exact and remain queryable as numbers.
func encodeDecimal(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != decimalType {
		return bsoncodec.ValueEncoderError{
			Name:     "encodeDecimal",
			Types:    []reflect.Type{decimalType},
			Received: val,
		}
	}

	dec := val.Interface().(decimal.Decimal)
	d128, err := primitive.ParseDecimal128(dec.String())
	if err != nil {
		return fmt.Errorf("cannot represent %s as Decimal128: %w", dec.String(), err)
	}
	return vw.WriteDecimal128(d128)
}

// decodeDecimal accepts both Decimal128 and string representations, so
// documents written before a format change still decode.
func decodeDecimal(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != decimalType {
		return bsoncodec.ValueDecoderError{
			Name:     "decodeDecimal",
			Types:    []reflect.Type{decimalType},
			Received: val,
		}
	}

	var raw string
	switch vr.Type() {
	case bsontype.Decimal128:
		d128, err := vr.ReadDecimal128()
		if err != nil {
			return err
		}
		raw = d128.String()
	case bsontype.String:
		s, err := vr.ReadString()
		if err != nil {
			return err
		}
		raw = s
	default:
		return fmt.Errorf("cannot decode BSON %v into decimal.Decimal", vr.Type())
	}

	dec, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid decimal value %q: %w", raw, err)
	}

	val.Set(reflect.ValueOf(dec))
	return nil
}
