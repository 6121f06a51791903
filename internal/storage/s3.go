package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/coffeestats/coffee-trade-etl/internal/config"
	"github.com/coffeestats/coffee-trade-etl/internal/logging"
)

var uploadedArtifacts = promauto.NewCounter(prometheus.CounterOpts{
	Name: "coffeetrade_uploaded_artifacts_total",
	Help: "The total number of report artifacts uploaded to S3",
})

// Uploader publishes report artifacts under <prefix>/<runID>/ in one bucket.
type Uploader struct {
	Client s3manageriface.UploaderAPI
	Bucket string
	Prefix string
	RunID  string
}

// NewUploader builds an uploader from the S3 settings of cfg.
func NewUploader(cfg *config.Config, runID string) (*Uploader, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is not configured")
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.AWSRegion)})
	if err != nil {
		return nil, fmt.Errorf("unable to create AWS session: %w", err)
	}
	return &Uploader{
		Client: s3manager.NewUploader(sess),
		Bucket: cfg.S3Bucket,
		Prefix: cfg.S3Prefix,
		RunID:  runID,
	}, nil
}

// ObjectKey is the key of file under prefix for one run.
func ObjectKey(prefix, runID, file string) string {
	return path.Join(strings.Trim(prefix, "/"), runID, filepath.Base(file))
}

// Upload sends the file at p and returns its location.
func (u *Uploader) Upload(ctx context.Context, p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := ObjectKey(u.Prefix, u.RunID, p)
	input := &s3manager.UploadInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(key),
		Body:   f,
		Metadata: map[string]*string{
			"run-id": aws.String(u.RunID),
		},
	}
	if ct := mime.TypeByExtension(filepath.Ext(p)); ct != "" {
		input.ContentType = aws.String(ct)
	}
	out, err := u.Client.UploadWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	uploadedArtifacts.Inc()
	return out.Location, nil
}

// UploadAll uploads every path and stops at the first failure.
func (u *Uploader) UploadAll(ctx context.Context, paths []string) ([]string, error) {
	log := logging.GetLogger()
	locations := make([]string, 0, len(paths))
	for _, p := range paths {
		loc, err := u.Upload(ctx, p)
		if err != nil {
			return locations, err
		}
		log.Debugf("uploaded %s to %s", p, loc)
		locations = append(locations, loc)
	}
	log.Infof("uploaded %d artifacts to s3://%s/%s", len(locations), u.Bucket, ObjectKey(u.Prefix, u.RunID, ""))
	return locations, nil
}
