// Package nodes provides the built-in blueprint node kinds.
//
// Every kind is a schema.NodeTypeSchema whose Behavior is a plain function.
// Apart from locating the ON_START node, the engine treats kinds only
// through their schema: exec ports, value ports and an optional LoopSpec.
package nodes
