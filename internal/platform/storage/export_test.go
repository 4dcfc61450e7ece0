// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectFunc adapts a function to the uploader's client.
type PutObjectFunc func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)

func (f PutObjectFunc) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return f(ctx, params, optFns...)
}

// NewS3UploaderWithClient exposes the client seam to tests.
func NewS3UploaderWithClient(client PutObjectFunc, cfg S3Config) *S3Uploader {
	return newS3Uploader(client, cfg)
}
