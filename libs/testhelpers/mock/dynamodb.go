package mock

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// DynamoDB mocks the item and query calls of the DynamoDB client. Only the
// input struct is recorded; the context and request options are ignored.
// Calling any other method of the API panics.
type DynamoDB struct {
	dynamodbiface.DynamoDBAPI
	*Expector
}

var _ dynamodbiface.DynamoDBAPI = &DynamoDB{}

// NewDynamoDB returns a DynamoDB mock bound to t.
func NewDynamoDB(t testing.TB) *DynamoDB {
	return &DynamoDB{Expector: &Expector{T: t}}
}

func (d *DynamoDB) PutItemWithContext(ctx aws.Context, in *dynamodb.PutItemInput, opts ...request.Option) (*dynamodb.PutItemOutput, error) {
	rets := d.Record(in)
	if len(rets) == 0 {
		return &dynamodb.PutItemOutput{}, nil
	}
	out, _ := rets[0].(*dynamodb.PutItemOutput)
	return out, SafeError(rets[1])
}

func (d *DynamoDB) GetItemWithContext(ctx aws.Context, in *dynamodb.GetItemInput, opts ...request.Option) (*dynamodb.GetItemOutput, error) {
	rets := d.Record(in)
	if len(rets) == 0 {
		return &dynamodb.GetItemOutput{}, nil
	}
	out, _ := rets[0].(*dynamodb.GetItemOutput)
	return out, SafeError(rets[1])
}

// QueryPagesWithContext hands each staged *dynamodb.QueryOutput to fn in
// order, stopping early when fn returns false. Returns are ([]*dynamodb.QueryOutput, error).
func (d *DynamoDB) QueryPagesWithContext(ctx aws.Context, in *dynamodb.QueryInput, fn func(*dynamodb.QueryOutput, bool) bool, opts ...request.Option) error {
	rets := d.Record(in)
	if len(rets) == 0 {
		return nil
	}
	if err := SafeError(rets[1]); err != nil {
		return err
	}
	pages, _ := rets[0].([]*dynamodb.QueryOutput)
	for i, p := range pages {
		if !fn(p, i == len(pages)-1) {
			break
		}
	}
	return nil
}
