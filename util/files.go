package util

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
)

// MD5File is the hex digest of a file, logged to identify input corpora
func MD5File(fileName string) (string, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
