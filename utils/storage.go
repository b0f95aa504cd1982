package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// localStorageDir is where artifacts land when S3 is not configured.
const localStorageDir = "uploads"

func s3Configured() bool {
	return os.Getenv("AWS_ACCESS_KEY_ID") != "" &&
		os.Getenv("AWS_SECRET_ACCESS_KEY") != "" &&
		os.Getenv("AWS_REGION") != "" &&
		os.Getenv("AWS_S3_BUCKET") != ""
}

func newS3Client() (*s3.S3, string, string, error) {
	region := os.Getenv("AWS_REGION")
	bucket := os.Getenv("AWS_S3_BUCKET")
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
		Credentials: credentials.NewStaticCredentials(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			""),
	})
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to create AWS session: %v", err)
	}
	return s3.New(sess), bucket, region, nil
}

// StoreFile persists data under fileType/fileName and returns a durable
// reference: an S3 URL when AWS is configured, a local path otherwise.
func StoreFile(data []byte, fileName, fileType string) (string, error) {
	key := fileType + "/" + fileName

	if !s3Configured() {
		dir := filepath.Join(localStorageDir, fileType)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create storage dir: %v", err)
		}
		path := filepath.Join(dir, fileName)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write file: %v", err)
		}
		return path, nil
	}

	svc, bucket, region, err := newS3Client()
	if err != nil {
		return "", err
	}
	_, err = svc.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %v", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key), nil
}

// StoreMultipartFile reads an uploaded form file and stores it.
func StoreMultipartFile(file multipart.File, fileName, fileType string) (string, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read file buffer: %v", err)
	}
	return StoreFile(buf.Bytes(), fileName, fileType)
}

// FetchFile reads back an artifact previously written by StoreFile.
func FetchFile(ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, "https://") {
		return os.ReadFile(ref)
	}

	svc, bucket, region, err := newS3Client()
	if err != nil {
		return nil, err
	}
	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", bucket, region)
	key := strings.TrimPrefix(ref, prefix)

	out, err := svc.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file from S3: %v", err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// DeleteFile removes a stored artifact. Best effort cleanup for event
// images replaced on update.
func DeleteFile(ref string) error {
	if !strings.HasPrefix(ref, "https://") {
		return os.Remove(ref)
	}

	svc, bucket, region, err := newS3Client()
	if err != nil {
		return err
	}
	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", bucket, region)
	key := strings.TrimPrefix(ref, prefix)

	_, err = svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %v", err)
	}
	return nil
}
