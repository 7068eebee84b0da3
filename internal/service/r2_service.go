package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	cfg "github.com/maheshrc27/marketing-agent/configs"
)

var allowedMediaTypes = map[string]struct{}{
	"jpg":  {},
	"png":  {},
	"webp": {},
	"mp3":  {},
	"mp4":  {},
}

// objectPutter is the part of *s3.Client the media store needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Service hosts generated media on Cloudflare R2.
type R2Service struct {
	config cfg.R2
	client objectPutter
}

func NewR2Service(ctx context.Context, r2 cfg.R2) (*R2Service, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r2.AccessKey, r2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	})
	return &R2Service{config: r2, client: client}, nil
}

// Upload stores data under a random key and returns its public URL.
func (r *R2Service) Upload(ctx context.Context, data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", fmt.Errorf("detecting media type: %w", err)
	}
	if kind == types.Unknown {
		return "", errors.New("unsupported media type")
	}
	if _, ok := allowedMediaTypes[kind.Extension]; !ok {
		return "", fmt.Errorf("media type %s is not allowed", kind.Extension)
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	key := id + "." + kind.Extension

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(kind.MIME.Value),
	})
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return strings.TrimRight(r.config.PublicURL, "/") + "/" + key, nil
}
