package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/albertogferrario/ferro/pkg/id"
)

// S3 implements Storage on S3-compatible object stores, including
// MinIO when Endpoint and PathStyle are configured.
type S3 struct {
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       Config
}

var _ Storage = (*S3)(nil)

// New creates an S3 storage from the config.
func New(cfg Config) (*S3, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := s3.New(s3.Options{}, func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})

	return &S3{
		client:    client,
		presigner: s3.NewPresignClient(client),
		cfg:       cfg,
	}, nil
}

func (s *S3) Put(ctx context.Context, r io.Reader, size int64, opts ...PutOption) (*File, error) {
	pc := putConfig{visibility: s.cfg.Visibility}
	for _, opt := range opts {
		opt(&pc)
	}

	contentType := pc.contentType
	var body io.ReadSeeker
	if contentType != "" {
		if rs, ok := r.(io.ReadSeeker); ok {
			body = rs
		} else {
			data, err := io.ReadAll(r)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
			}
			body = bytes.NewReader(data)
		}
	} else {
		contentType, body = sniffReader(r)
	}

	if err := Validate(size, contentType, pc.rules...); err != nil {
		return nil, err
	}

	key := pc.key
	if key == "" {
		key = s.generateKey(pc.tenant, pc.prefix, contentType)
	}

	acl := types.ObjectCannedACLPrivate
	if pc.visibility == PublicRead {
		acl = types.ObjectCannedACLPublicRead
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           acl,
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrUploadFailed)
	}

	return &File{
		Key:         key,
		ContentType: contentType,
		Visibility:  pc.visibility,
		Size:        size,
	}, nil
}

func (s *S3) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrNotFound)
	}
	return out.Body, nil
}

func (s *S3) Head(ctx context.Context, key string) (*File, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrNotFound)
	}
	return &File{
		Key:         key,
		ContentType: aws.ToString(out.ContentType),
		Visibility:  s.cfg.Visibility,
		Size:        aws.ToInt64(out.ContentLength),
	}, nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return wrapS3Error(err, ErrDeleteFailed)
	}
	return nil
}

// Copy duplicates an object within the bucket. S3 preserves the ACL.
func (s *S3) Copy(ctx context.Context, srcKey, dstKey string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.cfg.Bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(s.cfg.Bucket + "/" + srcKey),
	})
	if err != nil {
		return wrapS3Error(err, ErrUploadFailed)
	}
	return nil
}

func (s *S3) URL(ctx context.Context, key string, opts ...URLOption) (string, error) {
	uc := urlConfig{expiry: DefaultURLExpiry}
	for _, opt := range opts {
		opt(&uc)
	}

	if uc.public {
		return s.publicURL(key), nil
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}
	if uc.downloadName != "" {
		input.ResponseContentDisposition = aws.String(fmt.Sprintf("attachment; filename=%q", uc.downloadName))
	}

	signed, err := s.presigner.PresignGetObject(ctx, input, func(po *s3.PresignOptions) {
		po.Expires = uc.expiry
	})
	if err != nil {
		return "", wrapS3Error(err, ErrPresignFailed)
	}
	return signed.URL, nil
}

// generateKey builds {tenant}/{prefix}/{ulid}{ext} from the sanitized
// segments that are present.
func (s *S3) generateKey(tenant, prefix, contentType string) string {
	var parts []string
	if tenant != "" {
		parts = append(parts, sanitizeSegment(tenant))
	}
	if prefix != "" {
		parts = append(parts, sanitizeSegment(prefix))
	}

	ext := ExtFromMIME(contentType)
	if ext == "" {
		ext = ".bin"
	}
	parts = append(parts, id.NewULID()+ext)

	return strings.Join(parts, "/")
}

func (s *S3) publicURL(key string) string {
	if s.cfg.PublicURL != "" {
		return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/" + key
	}
	if s.cfg.Endpoint != "" {
		endpoint := strings.TrimSuffix(s.cfg.Endpoint, "/")
		if s.cfg.PathStyle {
			return endpoint + "/" + s.cfg.Bucket + "/" + key
		}
		return endpoint + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

var unsafeSegmentChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeSegment strips path traversal attempts and characters that
// are unsafe in object keys.
func sanitizeSegment(segment string) string {
	segment = strings.Trim(segment, " /\\")
	segment = strings.ReplaceAll(segment, "..", "")
	return unsafeSegmentChars.ReplaceAllString(segment, "_")
}
