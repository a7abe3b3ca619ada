package scan

import (
	"fmt"
	"regexp"
	"strings"
)

// BlockKind identifies the top-level declaration type.
type BlockKind string

const (
	KindResource  BlockKind = "resource"
	KindData      BlockKind = "data"
	KindProvider  BlockKind = "provider"
	KindVariable  BlockKind = "variable"
	KindOutput    BlockKind = "output"
	KindLocals    BlockKind = "locals"
	KindTerraform BlockKind = "terraform"
)

// Block is a top-level declaration and its brace-delimited body. Bodies
// preserve file order; line numbers are recovered from StartLine plus the
// body index. Blocks are created once by ExtractBlocks and read-only after.
type Block struct {
	Kind BlockKind
	// Type is the dotted identifier used in diagnostics, e.g.
	// "resource.aws_instance.web", "provider.aws", "locals".
	Type string
	// StartLine is the 1-based line number of the header line.
	StartLine int
	// Body holds the lines between the header and the closing brace,
	// excluding both. Single-line blocks have an empty body.
	Body []string
}

// label matches a double-quoted, single-quoted, or bare identifier label.
const label = `(?:"([^"]+)"|'([^']+)'|([a-zA-Z_][a-zA-Z0-9_]*))`

var (
	twoLabelHeader = regexp.MustCompile(`^(resource|data)\s+` + label + `\s+` + label + `\s*\{`)
	oneLabelHeader = regexp.MustCompile(`^(provider|variable|output)\s+` + label + `\s*\{`)
	bareHeader     = regexp.MustCompile(`^(locals|terraform)\s*\{`)
)

// matchedLabel collapses the three alternation groups of a label into the
// one that matched.
func matchedLabel(groups []string, offset int) string {
	for i := 0; i < 3; i++ {
		if groups[offset+i] != "" {
			return groups[offset+i]
		}
	}
	return ""
}

// ExtractBlocks finds top-level declarations in comment-stripped lines and
// slices out their bodies by brace counting. The counter is naive: braces
// inside quoted strings on header or body lines are counted too. That is
// rare in practice and degrades to a shorter or longer body, never a crash.
func ExtractBlocks(lines []string) []Block {
	var blocks []Block

	for i := 0; i < len(lines); {
		trimmed := strings.TrimSpace(lines[i])

		blk, ok := matchHeader(trimmed)
		if !ok {
			i++
			continue
		}
		blk.StartLine = i + 1

		if strings.Contains(trimmed, "{") && strings.Contains(trimmed, "}") {
			// Single-line block, e.g. `locals { }`.
			blocks = append(blocks, blk)
			i++
			continue
		}

		braces := 1
		i++
		for i < len(lines) && braces > 0 {
			line := lines[i]
			blk.Body = append(blk.Body, line)
			c := Count(line)
			braces += c.OpenBraces - c.CloseBraces
			i++
		}

		if n := len(blk.Body); n > 0 && strings.TrimSpace(blk.Body[n-1]) == "}" {
			blk.Body = blk.Body[:n-1]
		}

		blocks = append(blocks, blk)
	}

	return blocks
}

func matchHeader(trimmed string) (Block, bool) {
	if m := twoLabelHeader.FindStringSubmatch(trimmed); m != nil {
		kind := BlockKind(m[1])
		typeName := matchedLabel(m, 2)
		name := matchedLabel(m, 5)
		return Block{Kind: kind, Type: fmt.Sprintf("%s.%s.%s", kind, typeName, name)}, true
	}
	if m := oneLabelHeader.FindStringSubmatch(trimmed); m != nil {
		kind := BlockKind(m[1])
		name := matchedLabel(m, 2)
		return Block{Kind: kind, Type: fmt.Sprintf("%s.%s", kind, name)}, true
	}
	if m := bareHeader.FindStringSubmatch(trimmed); m != nil {
		kind := BlockKind(m[1])
		return Block{Kind: kind, Type: string(kind)}, true
	}
	return Block{}, false
}
