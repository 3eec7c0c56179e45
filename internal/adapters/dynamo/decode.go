package dynamo

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

// decodeItem keeps numbers exact: snowflake ids do not fit a float64.
func decodeItem(raw map[string]types.AttributeValue) (ports.Item, error) {
	var out map[string]any
	err := attributevalue.UnmarshalMapWithOptions(raw, &out, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	item := make(ports.Item, len(out))
	for k, v := range out {
		item[k] = normalize(v)
	}
	return item, nil
}

func normalize(v any) any {
	switch tv := v.(type) {
	case attributevalue.Number:
		if i, err := strconv.ParseInt(string(tv), 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(string(tv), 64); err == nil {
			return f
		}
		return string(tv)
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, inner := range tv {
			out[k] = normalize(inner)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, inner := range tv {
			out[i] = normalize(inner)
		}
		return out
	default:
		return v
	}
}
