// Package diagnostics represent utiltiy methods for diagnostics messages and the
// records the migration engine produces for constructs it could not migrate
package diagnostics

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
)

// Fatal prints a fatal error message and exits if err is not nil
func Fatal(msg string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Fatal: %s: %v\n", msg, err)
	os.Exit(1)
}

// Location is a 1-based source range inside a file
type Location struct {
	File      string
	Line      int
	Column    int
	EndLine   int
	EndColumn int
	Start     int
	End       int
}

func (l Location) String() string {
	return fmt.Sprintf("[%d:%d]", l.Line, l.Column)
}

// Unsupported records one construct that could not be migrated
type Unsupported struct {
	Info     string
	Location Location
	NodeText string
}

func (u Unsupported) String() string {
	return fmt.Sprintf("%s at %s for %s", u.Info, u.Location, firstLine(u.NodeText))
}

func firstLine(text string) string {
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		return text[:idx] + " ..."
	}
	return text
}

// NewUnsupported builds a record for node in file
func NewUnsupported(file string, node *csharp.Node, info string) Unsupported {
	span := node.Location()
	return Unsupported{
		Info: info,
		Location: Location{
			File:      file,
			Line:      span.StartPoint.Line,
			Column:    span.StartPoint.Column,
			EndLine:   span.EndPoint.Line,
			EndColumn: span.EndPoint.Column,
			Start:     span.Start,
			End:       span.End,
		},
		NodeText: node.Text(),
	}
}

// Collector accumulates unsupported construct records. Records are never removed.
type Collector struct {
	items []Unsupported
}

func (c *Collector) Add(u Unsupported) {
	c.items = append(c.items, u)
}

func (c *Collector) Len() int {
	return len(c.items)
}

// Items returns the records in the order they were added
func (c *Collector) Items() []Unsupported {
	result := make([]Unsupported, len(c.items))
	copy(result, c.items)
	return result
}

// Sorted returns the records ordered by file and position
func (c *Collector) Sorted() []Unsupported {
	result := c.Items()
	SortByLocation(result)
	return result
}

// SortByLocation orders records by file, then start offset
func SortByLocation(items []Unsupported) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Location, items[j].Location
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}
