package carddb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseCodeList reads one card code per line. Anything after the first
// field is ignored, as are blank lines and lines starting with '#'.
func ParseCodeList(r io.Reader) ([]uint32, error) {
	var codes []uint32
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		code, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("code list line %d: %w", n, err)
		}
		codes = append(codes, uint32(code))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read code list: %w", err)
	}
	return codes, nil
}

// ReadCodeList reads a code list file.
func ReadCodeList(path string) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCodeList(f)
}
