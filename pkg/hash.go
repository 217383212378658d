package hashlaser

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrInterrupted is returned when a shutdown signal stops a hash or a scan
var ErrInterrupted = errors.New("operation interrupted by shutdown")

// HashAlgorithm represents a hash algorithm configuration
type HashAlgorithm struct {
	Name    string
	Size    int
	NewFunc func() hash.Hash
}

// GetHashAlgorithm returns the hash algorithm configuration for the given name
func GetHashAlgorithm(name string) (*HashAlgorithm, error) {
	switch strings.ToLower(name) {
	case "sha1":
		return &HashAlgorithm{
			Name:    "sha1",
			Size:    HashSizeSHA1,
			NewFunc: func() hash.Hash { return sha1.New() },
		}, nil
	case "sha256":
		return &HashAlgorithm{
			Name:    "sha256",
			Size:    HashSizeSHA256,
			NewFunc: func() hash.Hash { return sha256.New() },
		}, nil
	case "sha512":
		return &HashAlgorithm{
			Name:    "sha512",
			Size:    HashSizeSHA512,
			NewFunc: func() hash.Hash { return sha512.New() },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", name)
	}
}

// HashFile calculates the fingerprint of a file, reading it DefaultChunkSize bytes at a time
func HashFile(filePath string, algorithm *HashAlgorithm) (string, error) {
	return HashFileInterruptible(filePath, algorithm, DefaultChunkSize, nil)
}

// HashFileInterruptible calculates the fingerprint of a file using a bounded read buffer
// and checks for shutdown signals between buffer reads. A nil shutdownChan never fires.
func HashFileInterruptible(filePath string, algorithm *HashAlgorithm, bufferSize int, shutdownChan <-chan struct{}) (string, error) {
	if algorithm == nil {
		return "", fmt.Errorf("no hash algorithm given for %s", filePath)
	}
	if bufferSize <= 0 {
		bufferSize = DefaultChunkSize
	}

	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	// Advisory only, the read loop is correct either way
	if err := unix.Fadvise(int(file.Fd()), 0, 0, unix.FADV_SEQUENTIAL); err != nil && IsDebugEnabled("hash") {
		VerboseLog(3, "fadvise failed for %s: %v", filePath, err)
	}

	hasher := algorithm.NewFunc()
	buffer := make([]byte, bufferSize)

	for {
		select {
		case <-shutdownChan:
			return "", fmt.Errorf("hashing %s: %w", filePath, ErrInterrupted)
		default:
		}

		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read from file %s: %w", filePath, err)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// CompareFiles hashes both files and reports whether their content is identical
func CompareFiles(path1, path2 string, algorithm *HashAlgorithm) (bool, error) {
	hash1, err := HashFile(path1, algorithm)
	if err != nil {
		return false, err
	}
	hash2, err := HashFile(path2, algorithm)
	if err != nil {
		return false, err
	}
	return hash1 == hash2, nil
}
