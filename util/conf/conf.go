// Package conf reads plain list files: one value per line, blank lines and
// lines starting with '#' ignored.
package conf

import (
	"io"
	"os"
	"strings"
)

type Conf struct {
	Values []string
}

func Read(reader io.Reader) (*Conf, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	retval := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) > 0 && line[0] != '#' {
			retval = append(retval, line)
		}
	}
	return &Conf{retval}, nil
}

func ReadFile(filename string) (*Conf, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file)
}
