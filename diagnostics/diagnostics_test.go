package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnsupportedString(t *testing.T) {
	u := Unsupported{
		Info:     "Attribute is not supported",
		Location: Location{File: "A.cs", Line: 3, Column: 6},
		NodeText: "Order(1)",
	}
	assert.Equal(t, "Attribute is not supported at [3:6] for Order(1)", u.String())

	u.NodeText = "Assert.That(x,\n    Is.Ordered)"
	assert.Equal(t, "Attribute is not supported at [3:6] for Assert.That(x, ...", u.String())
}

func TestCollectorSorted(t *testing.T) {
	c := &Collector{}
	c.Add(Unsupported{Info: "third", Location: Location{File: "B.cs", Line: 1, Column: 1}})
	c.Add(Unsupported{Info: "second", Location: Location{File: "A.cs", Line: 4, Column: 9}})
	c.Add(Unsupported{Info: "first", Location: Location{File: "A.cs", Line: 4, Column: 2}})

	assert.Equal(t, 3, c.Len())
	var order []string
	for _, u := range c.Sorted() {
		order = append(order, u.Info)
	}
	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.Equal(t, "third", c.Items()[0].Info, "insertion order is kept")
}
