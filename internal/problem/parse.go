package problem

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseKnapsack reads an OR-Library style mknap instance:
//
//	n m [optimum]
//	v_1 ... v_n
//	w_1_1 ... w_1_n   (m rows)
//	c_1 ... c_m
//
// Tokens are whitespace separated and may wrap lines freely. The optional
// optimum is recognised when the header line carries a third number.
func ParseKnapsack(name string, r io.Reader) (*Knapsack, error) {
	lines, err := readDataLines(r, "#")
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: mkp %s: empty file", ErrParse, name)
	}
	header := strings.Fields(lines[0])
	if len(header) < 2 || len(header) > 3 {
		return nil, fmt.Errorf("%w: mkp %s: header must be \"n m [optimum]\"", ErrParse, name)
	}
	n, err := strconv.Atoi(header[0])
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%w: mkp %s: item count %q", ErrParse, name, header[0])
	}
	m, err := strconv.Atoi(header[1])
	if err != nil || m <= 0 {
		return nil, fmt.Errorf("%w: mkp %s: constraint count %q", ErrParse, name, header[1])
	}
	optimum := 0.0
	if len(header) == 3 {
		optimum, err = strconv.ParseFloat(header[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: mkp %s: optimum %q", ErrParse, name, header[2])
		}
	}

	tokens := make([]string, 0, n*(m+1)+m)
	for _, line := range lines[1:] {
		tokens = append(tokens, strings.Fields(line)...)
	}
	want := n + n*m + m
	if len(tokens) != want {
		return nil, fmt.Errorf("%w: mkp %s: expected %d numbers after header, got %d", ErrParse, name, want, len(tokens))
	}
	nums := make([]float64, len(tokens))
	for i, tok := range tokens {
		nums[i], err = strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: mkp %s: number %q", ErrParse, name, tok)
		}
	}

	values := nums[:n]
	weights := make([][]float64, m)
	for j := 0; j < m; j++ {
		weights[j] = nums[n+j*n : n+(j+1)*n]
	}
	capacities := nums[n+n*m:]
	return NewKnapsack(name, values, weights, capacities, optimum)
}

// ParseMaxSat reads a DIMACS CNF formula.
func ParseMaxSat(name string, r io.Reader) (*MaxSat, error) {
	lines, err := readDataLines(r, "c")
	if err != nil {
		return nil, err
	}
	variables, declared := -1, -1
	var clauses []Clause
	var current Clause
	for _, line := range lines {
		if strings.HasPrefix(line, "%") {
			break
		}
		if strings.HasPrefix(line, "p") {
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[1] != "cnf" {
				return nil, fmt.Errorf("%w: maxsat %s: bad problem line %q", ErrParse, name, line)
			}
			variables, err = strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("%w: maxsat %s: variable count %q", ErrParse, name, fields[2])
			}
			declared, err = strconv.Atoi(fields[3])
			if err != nil {
				return nil, fmt.Errorf("%w: maxsat %s: clause count %q", ErrParse, name, fields[3])
			}
			continue
		}
		if variables < 0 {
			return nil, fmt.Errorf("%w: maxsat %s: clause before problem line", ErrParse, name)
		}
		for _, tok := range strings.Fields(line) {
			lit, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("%w: maxsat %s: literal %q", ErrParse, name, tok)
			}
			if lit == 0 {
				clauses = append(clauses, current)
				current = nil
				continue
			}
			current = append(current, lit)
		}
	}
	if len(current) > 0 {
		clauses = append(clauses, current)
	}
	if variables < 0 {
		return nil, fmt.Errorf("%w: maxsat %s: missing problem line", ErrParse, name)
	}
	if declared != len(clauses) {
		return nil, fmt.Errorf("%w: maxsat %s: declared %d clauses, found %d", ErrParse, name, declared, len(clauses))
	}
	return NewMaxSat(name, variables, clauses)
}

// ParseIsing reads a spin glass instance: a header "n e" followed by e lines
// "i j w" with 0-based spin indices.
func ParseIsing(name string, r io.Reader) (*Ising, error) {
	lines, err := readDataLines(r, "#", "c ")
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: isg %s: empty file", ErrParse, name)
	}
	header := strings.Fields(lines[0])
	if len(header) != 2 {
		return nil, fmt.Errorf("%w: isg %s: header must be \"n e\"", ErrParse, name)
	}
	spins, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, fmt.Errorf("%w: isg %s: spin count %q", ErrParse, name, header[0])
	}
	count, err := strconv.Atoi(header[1])
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: isg %s: edge count %q", ErrParse, name, header[1])
	}
	if len(lines)-1 != count {
		return nil, fmt.Errorf("%w: isg %s: declared %d edges, found %d", ErrParse, name, count, len(lines)-1)
	}
	edges := make([]Edge, 0, count)
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: isg %s: edge line %q", ErrParse, name, line)
		}
		i, errI := strconv.Atoi(fields[0])
		j, errJ := strconv.Atoi(fields[1])
		w, errW := strconv.ParseFloat(fields[2], 64)
		if errI != nil || errJ != nil || errW != nil {
			return nil, fmt.Errorf("%w: isg %s: edge line %q", ErrParse, name, line)
		}
		edges = append(edges, Edge{I: i, J: j, W: w})
	}
	return NewIsing(name, spins, edges)
}

// readDataLines returns trimmed, non-empty lines that do not start with any
// of the comment prefixes.
func readDataLines(r io.Reader, commentPrefixes ...string) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var lines []string
next:
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		for _, prefix := range commentPrefixes {
			if strings.HasPrefix(line, prefix) {
				continue next
			}
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return lines, nil
}
