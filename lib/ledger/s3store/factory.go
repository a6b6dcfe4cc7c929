package s3store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/glyphforge/sphinx/lib/ledger"
)

func init() {
	ledger.Register("s3", Factory{})
}

var (
	ErrNoRegion     = errors.New("s3store.Config: no region defined")
	ErrNoBucketName = errors.New("s3store.Config: no bucket name defined")
)

type Config struct {
	Region     string `json:"region"`
	BucketName string `json:"bucketName"`
}

func (c Config) Valid() error {
	var errs []error

	if c.Region == "" {
		errs = append(errs, ErrNoRegion)
	}
	if c.BucketName == "" {
		errs = append(errs, ErrNoBucketName)
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Factory builds an S3-backed store. Tests can inject a mock via Client.
type Factory struct {
	Client S3API
}

func (f Factory) Valid(data json.RawMessage) error {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("%w: %w", ledger.ErrBadConfig, err)
	}
	return cfg.Valid()
}

func (f Factory) Build(ctx context.Context, data json.RawMessage) (ledger.Interface, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrBadConfig, err)
	}
	if err := cfg.Valid(); err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrBadConfig, err)
	}

	if f.Client != nil {
		return &Store{s3: f.Client, bucket: cfg.BucketName}, nil
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("s3store.Factory: can't load AWS config: %w", err)
	}

	return &Store{
		s3:     s3.NewFromConfig(awsCfg),
		bucket: cfg.BucketName,
	}, nil
}
