package core_test

import (
	"fmt"

	"github.com/katalvlaran/meridian/core"
)

func ExampleArena_AllocateEdge() {
	a := core.NewArena(core.WithVertexCapacity(4), core.WithEdgeCapacity(4))

	src, _ := a.AllocateVertex(0)
	dst, _ := a.AllocateVertex(0)
	slot, _ := a.AllocateEdge(src, dst)

	e, _ := a.Edge(slot)
	fmt.Println(e.Src == src, e.Dst == dst)
	// Output: true true
}
