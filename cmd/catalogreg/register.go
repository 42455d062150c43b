package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
)

// registrableExts are the object suffixes the keyboard can display.
var registrableExts = []string{".gif", ".png"}

func parseTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// readKeys returns the non-blank lines of r.
func readKeys(r io.Reader) ([]string, error) {
	var keys []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if key := strings.TrimSpace(sc.Text()); key != "" {
			keys = append(keys, key)
		}
	}
	return keys, sc.Err()
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func bucketURL(bucket, region string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", bucket, region)
}

// listBucketKeys pages through every object under prefix.
func listBucketKeys(ctx context.Context, client s3.ListObjectsV2APIClient, bucket, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	var keys []string
	pages := s3.NewListObjectsV2Paginator(client, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// selectNewURLs joins base with every registrable key and drops URLs that are
// already catalogued or repeated. Order follows keys.
func selectNewURLs(base string, keys []string, existing map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(keys))
	var urls []string
	for _, key := range keys {
		if !hasRegistrableExt(key) {
			continue
		}
		url := base + key
		if _, ok := existing[url]; ok {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}
	return urls
}

func hasRegistrableExt(key string) bool {
	for _, ext := range registrableExts {
		if strings.HasSuffix(key, ext) {
			return true
		}
	}
	return false
}

// catalogEntry builds a new row. Text stays empty until someone captions it.
func catalogEntry(url string, tags []string) domain.CatalogEntry {
	return domain.CatalogEntry{URL: url, Tags: append([]string(nil), tags...)}
}
