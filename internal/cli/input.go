package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// openInput returns a reader over the input text: the named file, or
// stdin when path is empty or "-". The caller closes the returned
// closer.
//
// encodingName selects the input character encoding by IANA name
// ("latin1", "iso-8859-2", "windows-1252", ...). Empty means UTF-8.
// All downstream processing is UTF-8; non-UTF-8 input is transcoded on
// read.
func openInput(path, encodingName string, stdin io.Reader) (io.Reader, io.Closer, error) {
	var r io.Reader
	var c io.Closer

	if path == "" || path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open input file: %w", err)
		}
		r = f
		c = f
	}

	if encodingName != "" && !isUTF8Name(encodingName) {
		enc, err := ianaindex.IANA.Encoding(encodingName)
		if err != nil || enc == nil {
			if c != nil {
				c.Close()
			}
			return nil, nil, fmt.Errorf("unknown input encoding %q", encodingName)
		}
		r = transform.NewReader(r, enc.NewDecoder())
	}

	return r, c, nil
}

func isUTF8Name(name string) bool {
	switch strings.ToLower(name) {
	case "utf8", "utf-8":
		return true
	}
	return false
}

// readLines consumes the reader line by line, stripping the trailing
// newline. Lines keep their order; a final line without a newline is
// still returned.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}
