// Package taxon reads genome to taxon tables: whitespace separated pairs of
// genome accession and numeric taxon identifier.
//
//	NC_000913.3 511145
//	NC_002695.2 386585
//
// Accessions are mapped into the numeric colour namespace of the graph with
// GenomeIdentifier.
package taxon

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("taxon")

// ColorNamespaceMultiplier bounds genome identifiers
const ColorNamespaceMultiplier uint64 = 10000000000000000

// GenomeIdentifier hashes an accession with sdbm, reduced into the colour namespace
func GenomeIdentifier(accession string) uint64 {
	var h uint64
	for i := 0; i < len(accession); i++ {
		h = uint64(accession[i]) + (h << 6) + (h << 16) - h
	}
	return h % ColorNamespaceMultiplier
}

// Loader streams the pairs of a table file. The file is read twice: Open
// counts the pairs, Next then reads them one by one.
type Loader struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
	size    int
	current int
}

// Open counts the pairs in path and prepares reading them
func Open(path string) (*Loader, error) {
	size, err := countPairs(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not reopen %s: %v", path, err)
	}
	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanWords)

	Logger.Infof("%s contains %d genome to taxon pairs", path, size)
	return &Loader{path: path, file: file, scanner: scanner, size: size}, nil
}

func countPairs(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("file %s is invalid: %v", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanWords)
	words := 0
	for scanner.Scan() {
		words++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("could not read %s: %v", path, err)
	}
	if words%2 != 0 {
		Logger.Warningf("%s has a trailing accession without taxon, ignoring it", path)
	}
	return words / 2, nil
}

// Size returns the number of pairs in the file
func (l *Loader) Size() int {
	return l.size
}

// HasNext reports whether Next returns another pair
func (l *Loader) HasNext() bool {
	return l.current < l.size
}

// Next returns the next pair. The file is closed after the last one.
func (l *Loader) Next() (genome uint64, taxon uint64, err error) {
	if !l.HasNext() {
		return 0, 0, fmt.Errorf("no more pairs in %s", l.path)
	}

	accession, ok := l.word()
	if !ok {
		return 0, 0, fmt.Errorf("%s ended after %d of %d pairs", l.path, l.current, l.size)
	}
	field, ok := l.word()
	if !ok {
		return 0, 0, fmt.Errorf("%s ended after %d of %d pairs", l.path, l.current, l.size)
	}
	taxon, err = strconv.ParseUint(field, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid taxon %q for %s: %v", field, accession, err)
	}

	l.current++
	if l.current == l.size {
		_ = l.Close()
	}
	return GenomeIdentifier(accession), taxon, nil
}

func (l *Loader) word() (string, bool) {
	if l.scanner == nil || !l.scanner.Scan() {
		return "", false
	}
	return l.scanner.Text(), true
}

// Close releases the file; safe to call more than once
func (l *Loader) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.scanner = nil
	return err
}
