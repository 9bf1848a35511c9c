package rawpf

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// maxRawFields is the fixed maximum field count of any raw record
// (transformer records, at 17). Lines are split into a fixed-size buffer so
// the hot decode path allocates nothing per record.
const maxRawFields = 20

type fieldBuf [maxRawFields]string

// Section order of a raw file. Every section after the header is terminated
// by a line whose first field is 0.
var sectionNames = []string{"BUS", "LOAD", "FIXED SHUNT", "GENERATOR", "BRANCH", "TRANSFORMER"}

// Decode parses raw bytes into a Network.
//
// Decode is strict about structure (field counts, numeric fields, section
// terminators) and fails on the first malformed record with its line number;
// semantic checking happens later, when ToCase runs the converted case
// through the validation engine.
func Decode(data []byte) (*Network, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var buf fieldBuf
	network := &Network{}

	line := 0
	if !sc.Scan() {
		return nil, fmt.Errorf("raw decode: missing case identification record")
	}
	line++
	p := parser{line: line}
	p.split(sc.Text(), &buf)
	p.want(6)
	network.CaseID = CaseID{
		IC:     p.int(&buf, 0),
		SBase:  p.float(&buf, 1),
		Rev:    p.int(&buf, 2),
		XfrRat: p.int(&buf, 3),
		NxfRat: p.int(&buf, 4),
		BasFrq: p.float(&buf, 5),
	}
	if p.err != nil {
		return nil, p.err
	}

	section := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if isTerminator(text) {
			section++
			if section >= len(sectionNames) {
				break
			}
			continue
		}
		if section >= len(sectionNames) {
			return nil, fmt.Errorf("raw decode line %d: record after final section", line)
		}

		p := parser{line: line}
		p.split(text, &buf)

		switch sectionNames[section] {
		case "BUS":
			p.want(11)
			network.Buses = append(network.Buses, RawBus{
				I: p.int(&buf, 0), Name: p.str(&buf, 1), BaseKV: p.float(&buf, 2),
				IDE: p.int(&buf, 3), Area: p.int(&buf, 4), Zone: p.int(&buf, 5),
				Owner: p.int(&buf, 6), Vm: p.float(&buf, 7), Va: p.float(&buf, 8),
				NVHi: p.float(&buf, 9), NVLo: p.float(&buf, 10),
			})
		case "LOAD":
			p.want(9)
			network.Loads = append(network.Loads, RawLoad{
				I: p.int(&buf, 0), ID: p.str(&buf, 1), Status: p.int(&buf, 2),
				PL: p.float(&buf, 3), QL: p.float(&buf, 4),
				IP: p.float(&buf, 5), IQ: p.float(&buf, 6),
				YP: p.float(&buf, 7), YQ: p.float(&buf, 8),
			})
		case "FIXED SHUNT":
			p.want(5)
			network.FixedShunts = append(network.FixedShunts, RawFixedShunt{
				I: p.int(&buf, 0), ID: p.str(&buf, 1), Status: p.int(&buf, 2),
				GL: p.float(&buf, 3), BL: p.float(&buf, 4),
			})
		case "GENERATOR":
			p.want(11)
			network.Gens = append(network.Gens, RawGen{
				I: p.int(&buf, 0), ID: p.str(&buf, 1),
				PG: p.float(&buf, 2), QG: p.float(&buf, 3),
				QT: p.float(&buf, 4), QB: p.float(&buf, 5),
				VS: p.float(&buf, 6), MBase: p.float(&buf, 7),
				Stat: p.int(&buf, 8), PT: p.float(&buf, 9), PB: p.float(&buf, 10),
			})
		case "BRANCH":
			p.want(14)
			network.Branches = append(network.Branches, RawBranch{
				I: p.int(&buf, 0), J: p.int(&buf, 1), CKT: p.str(&buf, 2),
				R: p.float(&buf, 3), X: p.float(&buf, 4), B: p.float(&buf, 5),
				RateA: p.float(&buf, 6), RateB: p.float(&buf, 7), RateC: p.float(&buf, 8),
				GI: p.float(&buf, 9), BI: p.float(&buf, 10),
				GJ: p.float(&buf, 11), BJ: p.float(&buf, 12),
				ST: p.int(&buf, 13),
			})
		case "TRANSFORMER":
			p.want(17)
			network.Transformers = append(network.Transformers, RawTransformer{
				I: p.int(&buf, 0), J: p.int(&buf, 1), CKT: p.str(&buf, 2),
				CW: p.int(&buf, 3), CZ: p.int(&buf, 4), Stat: p.int(&buf, 5),
				R12: p.float(&buf, 6), X12: p.float(&buf, 7), SBase12: p.float(&buf, 8),
				WindV1: p.float(&buf, 9), NomV1: p.float(&buf, 10), Ang1: p.float(&buf, 11),
				RatA1: p.float(&buf, 12), RatB1: p.float(&buf, 13), RatC1: p.float(&buf, 14),
				WindV2: p.float(&buf, 15), NomV2: p.float(&buf, 16),
			})
		}
		if p.err != nil {
			return nil, p.err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("raw decode: %w", err)
	}

	return network, nil
}

// Encode serializes a Network back into raw bytes, sections in fixed order,
// each terminated by a "0 / END OF ... DATA" line.
func Encode(n *Network) []byte {
	var sb strings.Builder

	id := n.CaseID
	fmt.Fprintf(&sb, "%d, %s, %d, %d, %d, %s\n",
		id.IC, rawFloat(id.SBase), id.Rev, id.XfrRat, id.NxfRat, rawFloat(id.BasFrq))

	for _, b := range n.Buses {
		fmt.Fprintf(&sb, "%d, '%s', %s, %d, %d, %d, %d, %s, %s, %s, %s\n",
			b.I, b.Name, rawFloat(b.BaseKV), b.IDE, b.Area, b.Zone, b.Owner,
			rawFloat(b.Vm), rawFloat(b.Va), rawFloat(b.NVHi), rawFloat(b.NVLo))
	}
	endSection(&sb, "BUS")

	for _, ld := range n.Loads {
		fmt.Fprintf(&sb, "%d, '%s', %d, %s, %s, %s, %s, %s, %s\n",
			ld.I, ld.ID, ld.Status,
			rawFloat(ld.PL), rawFloat(ld.QL), rawFloat(ld.IP),
			rawFloat(ld.IQ), rawFloat(ld.YP), rawFloat(ld.YQ))
	}
	endSection(&sb, "LOAD")

	for _, fs := range n.FixedShunts {
		fmt.Fprintf(&sb, "%d, '%s', %d, %s, %s\n",
			fs.I, fs.ID, fs.Status, rawFloat(fs.GL), rawFloat(fs.BL))
	}
	endSection(&sb, "FIXED SHUNT")

	for _, g := range n.Gens {
		fmt.Fprintf(&sb, "%d, '%s', %s, %s, %s, %s, %s, %s, %d, %s, %s\n",
			g.I, g.ID, rawFloat(g.PG), rawFloat(g.QG), rawFloat(g.QT), rawFloat(g.QB),
			rawFloat(g.VS), rawFloat(g.MBase), g.Stat, rawFloat(g.PT), rawFloat(g.PB))
	}
	endSection(&sb, "GENERATOR")

	for _, br := range n.Branches {
		fmt.Fprintf(&sb, "%d, %d, '%s', %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %d\n",
			br.I, br.J, br.CKT, rawFloat(br.R), rawFloat(br.X), rawFloat(br.B),
			rawFloat(br.RateA), rawFloat(br.RateB), rawFloat(br.RateC),
			rawFloat(br.GI), rawFloat(br.BI), rawFloat(br.GJ), rawFloat(br.BJ), br.ST)
	}
	endSection(&sb, "BRANCH")

	for _, tr := range n.Transformers {
		fmt.Fprintf(&sb, "%d, %d, '%s', %d, %d, %d, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s\n",
			tr.I, tr.J, tr.CKT, tr.CW, tr.CZ, tr.Stat,
			rawFloat(tr.R12), rawFloat(tr.X12), rawFloat(tr.SBase12),
			rawFloat(tr.WindV1), rawFloat(tr.NomV1), rawFloat(tr.Ang1),
			rawFloat(tr.RatA1), rawFloat(tr.RatB1), rawFloat(tr.RatC1),
			rawFloat(tr.WindV2), rawFloat(tr.NomV2))
	}
	endSection(&sb, "TRANSFORMER")

	return []byte(sb.String())
}

func endSection(sb *strings.Builder, name string) {
	fmt.Fprintf(sb, "0 / END OF %s DATA\n", name)
}

func rawFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// isTerminator reports whether a line ends the current section: its first
// field is a bare 0 (bus numbers are always positive).
func isTerminator(line string) bool {
	if line == "0" {
		return true
	}

	return strings.HasPrefix(line, "0 ") || strings.HasPrefix(line, "0,") || strings.HasPrefix(line, "0/")
}

// parser decodes the typed fields of one raw record, remembering the first
// failure with its line number.
type parser struct {
	line int
	n    int
	err  error
}

func (p *parser) split(line string, buf *fieldBuf) {
	p.n = 0
	for _, field := range strings.Split(line, ",") {
		if p.n >= maxRawFields {
			p.fail("too many fields")
			return
		}
		buf[p.n] = strings.TrimSpace(field)
		p.n++
	}
}

func (p *parser) want(n int) {
	if p.err == nil && p.n != n {
		p.fail(fmt.Sprintf("expected %d fields, got %d", n, p.n))
	}
}

func (p *parser) fail(reason string) {
	if p.err == nil {
		p.err = fmt.Errorf("raw decode line %d: %s", p.line, reason)
	}
}

func (p *parser) int(buf *fieldBuf, i int) int {
	if p.err != nil || i >= p.n {
		return 0
	}
	v, err := strconv.Atoi(buf[i])
	if err != nil {
		p.fail(fmt.Sprintf("field %d: not an integer: %q", i+1, buf[i]))
		return 0
	}

	return v
}

func (p *parser) float(buf *fieldBuf, i int) float64 {
	if p.err != nil || i >= p.n {
		return 0
	}
	v, err := strconv.ParseFloat(buf[i], 64)
	if err != nil {
		p.fail(fmt.Sprintf("field %d: not a number: %q", i+1, buf[i]))
		return 0
	}

	return v
}

func (p *parser) str(buf *fieldBuf, i int) string {
	if p.err != nil || i >= p.n {
		return ""
	}

	return strings.Trim(buf[i], `'" `)
}
