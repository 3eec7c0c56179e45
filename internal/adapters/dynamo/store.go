package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store implements ports.Store on DynamoDB tables that already exist.
type Store struct {
	api     API
	schemas map[string]ports.TableSchema
}

func NewStore(api API, schemas ...ports.TableSchema) *Store {
	s := &Store{api: api, schemas: make(map[string]ports.TableSchema, len(schemas))}
	for _, schema := range schemas {
		s.schemas[schema.Name] = schema
	}
	return s
}

func (s *Store) Get(ctx context.Context, table string, key ports.Key) (ports.Item, error) {
	av, err := attributevalue.MarshalMap(map[string]any(key))
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{TableName: aws.String(table), Key: av})
	if err != nil {
		return nil, fmt.Errorf("dynamodb get %s: %w", table, err)
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrNotFound
	}
	return decodeItem(out.Item)
}

func (s *Store) Put(ctx context.Context, table string, item ports.Item) error {
	av, err := attributevalue.MarshalMap(map[string]any(item))
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	if _, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(table), Item: av}); err != nil {
		return fmt.Errorf("dynamodb put %s: %w", table, err)
	}
	return nil
}

func (s *Store) PutIfAbsent(ctx context.Context, table string, item ports.Item) error {
	schema, err := s.schema(table)
	if err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(map[string]any(item))
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(schema.KeyAttributes[0]))).
		Build()
	if err != nil {
		return fmt.Errorf("build put condition: %w", err)
	}
	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(table),
		Item:                     av,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	return mapWriteError(table, err)
}

func (s *Store) Update(ctx context.Context, table string, key ports.Key, attrs ports.Item, cond ports.Filter) error {
	schema, err := s.schema(table)
	if err != nil {
		return err
	}
	if len(attrs) == 0 {
		return fmt.Errorf("update %s: no attributes", table)
	}
	keyAV, err := attributevalue.MarshalMap(map[string]any(key))
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}

	var update expression.UpdateBuilder
	for _, name := range sortedNames(attrs) {
		update = update.Set(expression.Name(name), expression.Value(attrs[name]))
	}
	builder := expression.NewBuilder().WithUpdate(update)
	if cond != nil {
		condition := expression.AttributeExists(expression.Name(schema.KeyAttributes[0]))
		if eq, ok := equalityCondition(cond); ok {
			condition = condition.And(eq)
		}
		builder = builder.WithCondition(condition)
	}
	expr, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build update expression: %w", err)
	}

	_, err = s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       keyAV,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	return mapWriteError(table, err)
}

func (s *Store) Delete(ctx context.Context, table string, key ports.Key) error {
	av, err := attributevalue.MarshalMap(map[string]any(key))
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	if _, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: aws.String(table), Key: av}); err != nil {
		return fmt.Errorf("dynamodb delete %s: %w", table, err)
	}
	return nil
}

// Scan follows LastEvaluatedKey until the whole table has been read.
func (s *Store) Scan(ctx context.Context, table string, filter ports.Filter) ([]ports.Item, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(table)}
	if eq, ok := equalityCondition(filter); ok {
		expr, err := expression.NewBuilder().WithFilter(eq).Build()
		if err != nil {
			return nil, fmt.Errorf("build scan filter: %w", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	out := make([]ports.Item, 0)
	paginator := dynamodb.NewScanPaginator(s.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb scan %s: %w", table, err)
		}
		for _, raw := range page.Items {
			item, err := decodeItem(raw)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *Store) schema(table string) (ports.TableSchema, error) {
	schema, ok := s.schemas[table]
	if !ok || len(schema.KeyAttributes) == 0 {
		return ports.TableSchema{}, fmt.Errorf("unknown table %q", table)
	}
	return schema, nil
}

func mapWriteError(table string, err error) error {
	if err == nil {
		return nil
	}
	var failed *types.ConditionalCheckFailedException
	if errors.As(err, &failed) {
		return ports.ErrConditionFailed
	}
	return fmt.Errorf("dynamodb write %s: %w", table, err)
}

// equalityCondition ANDs one equality per filter attribute.
func equalityCondition(filter ports.Filter) (expression.ConditionBuilder, bool) {
	names := sortedNames(filter)
	if len(names) == 0 {
		return expression.ConditionBuilder{}, false
	}
	cond := expression.Name(names[0]).Equal(expression.Value(filter[names[0]]))
	for _, name := range names[1:] {
		cond = cond.And(expression.Name(name).Equal(expression.Value(filter[name])))
	}
	return cond, true
}

func sortedNames[M ~map[string]any](m M) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
