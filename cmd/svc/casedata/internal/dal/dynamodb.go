package dal

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/caseerr"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/models"
	"github.com/sprucehealth/casedata/libs/errors"
	"github.com/sprucehealth/casedata/libs/golog"
	"github.com/sprucehealth/casedata/libs/ptr"
)

// AN represents "Attribute Name"
const (
	patientIDAN      = "patientId"
	caseIDAN         = "caseId"
	expirationDateAN = "expirationDate"
	dataAsJSONAN     = "dataAsJson"
)

var (
	// KCE represents a KeyConditionExpression
	patientIDEqualsKCE = ptr.String(patientIDAN + " = :" + patientIDAN)
	// PE represents a ProjectionExpression
	dataAsJSONPE = ptr.String(dataAsJSONAN)
)

type dynamoDAL struct {
	db        dynamodbiface.DynamoDBAPI
	tableName *string
}

// New returns a DAL backed by the DynamoDB table. The table is keyed by
// patientId (hash) and caseId (range).
func New(db dynamodbiface.DynamoDBAPI, tableName string) DAL {
	return &dynamoDAL{
		db:        db,
		tableName: ptr.String(tableName),
	}
}

func (d *dynamoDAL) Write(ctx context.Context, r *models.CaseRecord) error {
	if r == nil {
		return errors.Trace(caseerr.New(caseerr.ValidationError, "record: is required"))
	}
	_, err := d.db.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: d.tableName,
		Item: map[string]*dynamodb.AttributeValue{
			patientIDAN:      {S: ptr.String(r.PatientID)},
			caseIDAN:         {S: ptr.String(r.CaseID)},
			expirationDateAN: {N: ptr.String(strconv.FormatInt(r.ExpirationDate, 10))},
			dataAsJSONAN:     {S: ptr.String(r.DataAsJSON)},
		},
	})
	if err != nil {
		return errors.Trace(caseerr.Wrap(caseerr.StoreError, err, "failed to write case data"))
	}
	return nil
}

func (d *dynamoDAL) ReadOne(ctx context.Context, patientKey, caseID string) (*models.CaseRecord, error) {
	res, err := d.db.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      d.tableName,
		ConsistentRead: ptr.Bool(true),
		Key: map[string]*dynamodb.AttributeValue{
			patientIDAN: {S: ptr.String(patientKey)},
			caseIDAN:    {S: ptr.String(caseID)},
		},
	})
	if err != nil {
		return nil, errors.Trace(caseerr.Wrap(caseerr.StoreError, err, "failed to read case data"))
	}
	if res == nil || len(res.Item) == 0 {
		return nil, errors.Trace(caseerr.New(caseerr.DataNotFound, models.CaseKey(patientKey, caseID)))
	}
	r, err := recordFromItem(res.Item)
	if err != nil {
		return nil, errors.Annotatef(err, "key=%s", models.CaseKey(patientKey, caseID))
	}
	return r, nil
}

func (d *dynamoDAL) ReadMany(ctx context.Context, patientKey string) ([]string, error) {
	var values []string
	err := d.db.QueryPagesWithContext(ctx, &dynamodb.QueryInput{
		TableName:              d.tableName,
		ConsistentRead:         ptr.Bool(true),
		KeyConditionExpression: patientIDEqualsKCE,
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":" + patientIDAN: {S: ptr.String(patientKey)},
		},
		ProjectionExpression: dataAsJSONPE,
	}, func(page *dynamodb.QueryOutput, lastPage bool) bool {
		for _, item := range page.Items {
			values = append(values, stringAttr(item, dataAsJSONAN))
		}
		return true
	})
	if err != nil {
		return nil, errors.Trace(caseerr.Wrap(caseerr.StoreError, err, "failed to query case data"))
	}
	if len(values) == 0 {
		return nil, errors.Trace(caseerr.New(caseerr.DataNotFound, patientKey))
	}
	golog.Debugf("Read %d cases for %s", len(values), patientKey)
	return values, nil
}

func recordFromItem(item map[string]*dynamodb.AttributeValue) (*models.CaseRecord, error) {
	exp, ok := numberAttr(item, expirationDateAN)
	if !ok {
		return nil, errors.Trace(caseerr.New(caseerr.DeserializationError, expirationDateAN+" is missing"))
	}
	expiration, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return nil, errors.Trace(caseerr.Wrap(caseerr.DeserializationError, err, expirationDateAN+" is not an integer"))
	}
	return &models.CaseRecord{
		PatientID:      stringAttr(item, patientIDAN),
		CaseID:         stringAttr(item, caseIDAN),
		DataAsJSON:     stringAttr(item, dataAsJSONAN),
		ExpirationDate: expiration,
	}, nil
}

// stringAttr returns the string form of an attribute, "" when it is absent.
func stringAttr(item map[string]*dynamodb.AttributeValue, name string) string {
	av := item[name]
	if av == nil {
		return ""
	}
	if av.S != nil {
		return *av.S
	}
	return ptr.StringValue(av.N)
}

// numberAttr accepts the number stored as either N or S.
func numberAttr(item map[string]*dynamodb.AttributeValue, name string) (string, bool) {
	av := item[name]
	if av == nil {
		return "", false
	}
	if av.N != nil {
		return *av.N, true
	}
	if av.S != nil {
		return *av.S, true
	}
	return "", false
}
