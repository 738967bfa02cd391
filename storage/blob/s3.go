package blob

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/UltimateTournament/backoff/v4"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/rs/zerolog"

	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

const contentType = "application/octet-stream"

// S3Store keeps objects in one bucket. Transient failures are retried with
// exponential backoff; missing objects and buckets are not.
type S3Store struct {
	bucket         string
	uploader       s3manageriface.UploaderAPI
	downloader     s3manageriface.DownloaderAPI
	maxRetries     uint64
	initialBackoff time.Duration
}

// NewS3Store opens a session for bucket.
func NewS3Store(bucket string, cfg S3Config) (*S3Store, error) {
	s3Config := &aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewEnvCredentials(),
	}
	if cfg.Endpoint != "" {
		s3Config.Endpoint = aws.String(cfg.Endpoint)
		s3Config.S3ForcePathStyle = aws.Bool(true)
	}

	s3Session, err := session.NewSession(s3Config)
	if err != nil {
		return nil, lerrors.New(lerrors.ErrIO).
			Op("s3_session").
			Context("region", cfg.Region).
			Wrap(err).
			Build()
	}
	return newS3Store(bucket, cfg, s3manager.NewUploader(s3Session), s3manager.NewDownloader(s3Session)), nil
}

func newS3Store(bucket string, cfg S3Config, up s3manageriface.UploaderAPI, down s3manageriface.DownloaderAPI) *S3Store {
	s := &S3Store{
		bucket:         bucket,
		uploader:       up,
		downloader:     down,
		maxRetries:     uint64(max(cfg.MaxRetries, 0)),
		initialBackoff: 100 * time.Millisecond,
	}
	if cfg.InitialBackoff > 0 {
		s.initialBackoff = cfg.InitialBackoff
	}
	return s
}

func (s *S3Store) uri(key string) string {
	return Location{Scheme: "s3", Bucket: s.bucket, Key: key}.String()
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	logger := zerolog.Ctx(ctx)
	var out []byte

	start := time.Now()
	err := s.retry(ctx, key, func() error {
		buf := &aws.WriteAtBuffer{}
		_, err := s.downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return s.classify(key, "s3_get", err)
		}
		out = buf.Bytes()
		return nil
	})
	if err != nil {
		return nil, err
	}

	d := time.Since(start)
	logger.Debug().Str("uri", s.uri(key)).Int("bytes", len(out)).Int64("durationNS", d.Nanoseconds()).Msg("downloaded object from s3")
	return out, nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	logger := zerolog.Ctx(ctx)

	start := time.Now()
	err := s.retry(ctx, key, func() error {
		_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return s.classify(key, "s3_put", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	d := time.Since(start)
	logger.Debug().Str("uri", s.uri(key)).Int("bytes", len(data)).Int64("durationNS", d.Nanoseconds()).Msg("uploaded object to s3")
	return nil
}

func (s *S3Store) retry(ctx context.Context, key string, op func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.initialBackoff
	b := backoff.WithContext(backoff.WithMaxRetries(eb, s.maxRetries), ctx)

	return backoff.RetryNotify(op, b, func(err error, wait time.Duration) {
		zerolog.Ctx(ctx).Warn().Err(err).Str("uri", s.uri(key)).Dur("wait", wait).Msg("retrying s3 request")
	})
}

// classify maps SDK errors to ColErrors, marking the ones retrying cannot fix.
func (s *S3Store) classify(key, op string, err error) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
			return backoff.Permanent(lerrors.New(lerrors.ErrFileNotFound).
				Op(op).
				Path(s.uri(key)).
				Wrap(err).
				Build())
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return backoff.Permanent(lerrors.New(lerrors.ErrIO).
				Op(op).
				Path(s.uri(key)).
				Wrap(err).
				Build())
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return backoff.Permanent(err)
	}
	return lerrors.New(lerrors.ErrIO).Op(op).Path(s.uri(key)).Wrap(err).Build()
}
