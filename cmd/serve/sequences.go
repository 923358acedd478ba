package serve

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ValentinKolb/dKG/lib/grid"
)

// maximum length of a single input line
const maxLineSize = 64 * 1024 * 1024

// threadSequences adds every sequence of path to the table, keeping only the
// k-mers owns selects. Plain files hold one sequence per line; in FASTA files
// the lines of a record are joined. Returns the number of sequences and the
// number of stored k-mers.
func threadSequences(path string, table *grid.GridTable, coverage int, owns func(key uint64) bool) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		record    strings.Builder
		sequences int
		stored    int
	)
	flush := func() error {
		if record.Len() == 0 {
			return nil
		}
		n, err := table.AddSequence(strings.ToUpper(record.String()), coverage, owns)
		if err != nil {
			return err
		}
		sequences++
		stored += n
		record.Reset()
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line[0] == '>':
			if err := flush(); err != nil {
				return sequences, stored, err
			}
		case line[0] == ';':
			// FASTA comment
		default:
			record.WriteString(line)
			if !isFasta(path) {
				if err := flush(); err != nil {
					return sequences, stored, err
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return sequences, stored, fmt.Errorf("reading %s: %v", path, err)
	}
	return sequences, stored, flush()
}

func isFasta(path string) bool {
	for _, ext := range []string{".fa", ".fasta", ".fna", ".ffn"} {
		if strings.HasSuffix(strings.ToLower(path), ext) {
			return true
		}
	}
	return false
}
