package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// maxConcurrentBuckets bounds the per-bucket activity probes.
const maxConcurrentBuckets = 8

// s3ClientFor returns an S3 client bound to region.
type s3ClientFor func(region string) s3Client

// collectBuckets lists every bucket once (S3 is global) and probes each for
// its region and most recent write. A failed probe leaves ActivityKnown
// false for that bucket and is reported through warn; it never drops the
// bucket from the inventory.
func collectBuckets(ctx context.Context, global s3Client, regional s3ClientFor, warn warnFunc) ([]models.AWSS3Bucket, error) {
	out, err := global.ListBuckets(ctx, &s3svc.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("ListBuckets: %w", err)
	}

	buckets := make([]models.AWSS3Bucket, len(out.Buckets))
	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentBuckets)
	for i, b := range out.Buckets {
		buckets[i] = models.AWSS3Bucket{
			Name:      aws.ToString(b.Name),
			CreatedAt: aws.ToTime(b.CreationDate),
		}
		g.Go(func() error {
			if err := probeBucket(ctx, global, regional, &buckets[i]); err != nil {
				warn("s3", "", fmt.Errorf("bucket %s: %w", buckets[i].Name, err))
			}
			return nil
		})
	}
	_ = g.Wait()
	return buckets, nil
}

// maxObjectPages bounds how many ListObjectsV2 pages are read per bucket.
const maxObjectPages = 10

// probeBucket fills Region, ObjectCount, LastWrite and ActivityKnown.
// Listings are in key order, so every page is read before LastWrite is
// trusted. A bucket with more than maxObjectPages pages keeps
// ActivityKnown false.
func probeBucket(ctx context.Context, global s3Client, regional s3ClientFor, b *models.AWSS3Bucket) error {
	loc, err := global.GetBucketLocation(ctx, &s3svc.GetBucketLocationInput{Bucket: aws.String(b.Name)})
	if err != nil {
		return fmt.Errorf("GetBucketLocation: %w", err)
	}
	b.Region = normalizeBucketRegion(loc.LocationConstraint)

	p := s3svc.NewListObjectsV2Paginator(regional(b.Region), &s3svc.ListObjectsV2Input{
		Bucket:  aws.String(b.Name),
		MaxKeys: aws.Int32(1000),
	})

	var (
		latest time.Time
		count  int
	)
	for pages := 0; p.HasMorePages(); pages++ {
		if pages == maxObjectPages {
			b.ObjectCount = count
			b.LastWrite = latest
			return nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("ListObjectsV2: %w", err)
		}
		for _, o := range page.Contents {
			if t := aws.ToTime(o.LastModified); t.After(latest) {
				latest = t
			}
		}
		count += len(page.Contents)
	}
	b.ObjectCount = count
	b.LastWrite = latest
	b.ActivityKnown = true
	return nil
}

// normalizeBucketRegion maps GetBucketLocation's legacy values: an empty
// constraint is us-east-1 and "EU" is eu-west-1.
func normalizeBucketRegion(c s3types.BucketLocationConstraint) string {
	switch c {
	case "":
		return "us-east-1"
	case s3types.BucketLocationConstraintEu:
		return "eu-west-1"
	default:
		return string(c)
	}
}
